package cli

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weavehq/weave/internal/backend"
	"github.com/weavehq/weave/internal/capability"
	"github.com/weavehq/weave/internal/config"
	"github.com/weavehq/weave/internal/gate"
	"github.com/weavehq/weave/internal/hooks"
	"github.com/weavehq/weave/internal/metrics"
	"github.com/weavehq/weave/internal/orchestrator"
	"github.com/weavehq/weave/internal/phase"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/storage"
	"github.com/weavehq/weave/internal/task"
	"github.com/weavehq/weave/internal/tui"
)

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Automation == config.ProfileManual {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openStorage(cfg *config.Config) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		return storage.NewSQLiteBackend(cfg.StorageDir + "/weave.db")
	default:
		return storage.NewFileBackend(cfg.StorageDir)
	}
}

// stateKey derives the storage key for the single project this CLI
// invocation operates on: the raw request text, which doubles as a human
// readable project id since weave manages one ProjectState per request.
func stateKey(rawRequest string) string {
	return rawRequest
}

func loadOrCreateState(st storage.Backend, rawRequest string) (*state.ProjectState, error) {
	key := stateKey(rawRequest)
	exists, err := st.Exists(key)
	if err != nil {
		return nil, fmt.Errorf("check existing state: %w", err)
	}
	if exists {
		return st.Load(key)
	}
	return state.New(rawRequest), nil
}

func saveState(st storage.Backend, s *state.ProjectState) error {
	return st.Save(stateKey(s.RawRequest), s)
}

// fixtureVocabulary is the on-disk shape of the vocabulary fixture
// (curated domain/method/validation term lists, §4.1), kept separate from
// phase.Vocabulary so only the CLI's fixture loader depends on yaml tags.
type fixtureVocabulary struct {
	Domain     []string `yaml:"domain"`
	Method     []string `yaml:"method"`
	Validation []string `yaml:"validation"`
}

func loadVocabulary(path string) (phase.Vocabulary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return phase.Vocabulary{}, nil
	}
	if err != nil {
		return phase.Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	var fx fixtureVocabulary
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return phase.Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	return phase.Vocabulary{Domain: fx.Domain, Method: fx.Method, Validation: fx.Validation}, nil
}

func loadRegistries(cfg *config.Config) (capability.Registry, capability.BranchRegistry, error) {
	registry, err := capability.LoadFileRegistry(cfg.CapabilityRegistryPath)
	if err != nil {
		if os.IsNotExist(err) {
			registry = capability.NewFileRegistry(capability.FileRegistryFixture{})
		} else {
			return nil, nil, fmt.Errorf("load capability registry: %w", err)
		}
	}
	branches, err := capability.LoadFileBranchRegistry(cfg.BranchRegistryPath)
	if err != nil {
		if os.IsNotExist(err) {
			branches = capability.NewFileBranchRegistry(nil)
		} else {
			return nil, nil, fmt.Errorf("load branch registry: %w", err)
		}
	}
	return registry, branches, nil
}

func gateCommands(cfg *config.Config) map[task.GateKind]string {
	out := make(map[task.GateKind]string, len(cfg.GateCommands))
	for k, v := range cfg.GateCommands {
		out[task.GateKind(k)] = v
	}
	return out
}

func buildOrchestrator(cfg *config.Config, st storage.Backend, logger *slog.Logger) *orchestrator.Orchestrator {
	backends := orchestrator.Backends{
		Specialist: &backend.ExecSpecialist{Command: cfg.SpecialistCommand},
		Reviewer:   &backend.ExecReviewer{Command: cfg.ReviewerCommand},
		Gates: &gate.RunnerRegistry{Runner: &backend.ShellGateRunner{
			Commands: gateCommands(cfg),
			WorkDir:  cfg.WorkDir,
		}},
		IntegrationRunner: &backend.ShellIntegrationRunner{Command: cfg.IntegrationCommand, WorkDir: cfg.WorkDir},
	}

	oc := &orchestrator.Config{
		MaxRevisions:          cfg.MaxRevisions,
		MaxGateRetries:        cfg.MaxGateRetries,
		MaxIntegrationRetries: cfg.MaxIntegrationRetries,
		PollInterval:          cfg.PollInterval,
		RetryAttempts:         3,
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(nil)
	}

	h := orchestrator.Hooks{AfterTaskComplete: hooks.DefaultChecks()}
	if cfg.Automation != config.ProfileAutonomous && tui.IsInteractive() {
		h.HumanCheck = tui.ApprovalDecisionInput("task complete, approve?")
	}

	return orchestrator.New(oc, backends, h, st, m, logger)
}
