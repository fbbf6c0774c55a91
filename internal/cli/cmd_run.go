package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weavehq/weave/internal/brainstorm"
	"github.com/weavehq/weave/internal/config"
	"github.com/weavehq/weave/internal/hooks"
	"github.com/weavehq/weave/internal/phase"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/tui"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [request]",
		Short: "Run the pipeline for a request from its current phase to completion or pause",
		Long: `run takes a raw feature request (or resumes an existing one, by the same
request text), and drives it through intake, audit, decompose, and the
execute/verify loop until every task is done and integration has run, or
the pipeline pauses (blocked_reason set) for human attention.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(strings.Join(args, " "))
		},
	}
	return cmd
}

func runPipeline(rawRequest string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	st, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	s, err := loadOrCreateState(st, rawRequest)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	if err := runIntake(s, cfg); err != nil {
		return err
	}
	if err := runAudit(s, cfg); err != nil {
		return err
	}
	if err := runDecompose(s, cfg); err != nil {
		return err
	}

	if err := saveState(st, s); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if s.BlockedReason != nil {
		return reportAndPause(s)
	}

	orc := buildOrchestrator(cfg, st, logger)
	if err := orc.Run(context.Background(), s); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	if err := saveState(st, s); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	fmt.Print(tui.RenderStatus(s))
	if s.BlockedReason != nil {
		stderrf("paused: %s\n", *s.BlockedReason)
	}
	return nil
}

func reportAndPause(s *state.ProjectState) error {
	fmt.Print(tui.RenderStatus(s))
	stderrf("paused: %s\n", *s.BlockedReason)
	return nil
}

func runIntake(s *state.ProjectState, cfg *config.Config) error {
	if s.Phase != state.PhaseIntake {
		return nil
	}
	vocab, err := loadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return err
	}
	if err := phase.Intake(s, vocab); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	return nil
}

func runAudit(s *state.ProjectState, cfg *config.Config) error {
	if s.Phase != state.PhaseAudit {
		return nil
	}
	registry, branches, err := loadRegistries(cfg)
	if err != nil {
		return err
	}
	if err := phase.Audit(s, branches, registry, phase.ExtensionHints{}); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	hooks.RunAIReview(s, "after_audit", hooks.DefaultChecks())
	return nil
}

func runDecompose(s *state.ProjectState, cfg *config.Config) error {
	if s.Phase != state.PhaseDecompose {
		return nil
	}
	registry, _, err := loadRegistries(cfg)
	if err != nil {
		return err
	}
	if err := phase.Decompose(s, registry, phase.ComponentLayers{}); err != nil {
		return fmt.Errorf("decompose: %w", err)
	}

	opts := brainstorm.Options{Mode: cfg.BrainstormMode, Config: cfg.BrainstormConfig}
	if opts.Mode == brainstorm.ModeInteractive {
		opts.Input = tui.RiskDecisionInput()
	}
	if _, err := hooks.RunBrainstorm(s, "after_decompose", brainstorm.DefaultChecks(), opts); err != nil {
		return fmt.Errorf("brainstorm: %w", err)
	}
	return nil
}
