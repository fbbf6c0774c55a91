package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weavehq/weave/internal/brainstorm"
	"github.com/weavehq/weave/internal/hooks"
	"github.com/weavehq/weave/internal/tui"
)

func newBrainstormCmd() *cobra.Command {
	var promptPath, responsePath string

	cmd := &cobra.Command{
		Use:   "brainstorm [request]",
		Short: "Resolve tasks flagged by brainstorm's risk checks",
		Long: `brainstorm re-evaluates every risk check against the request's current
task graph and resolves whatever it flags. With no --prompt-file/
--response-file, it runs interactively over the terminal; with both set,
it writes a prompt file once and applies a response file on a later
invocation (file mode, for driving weave from another tool).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawRequest := strings.Join(args, " ")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := loadOrCreateState(st, rawRequest)
			if err != nil {
				return fmt.Errorf("load state: %w", err)
			}

			opts := brainstorm.Options{Config: cfg.BrainstormConfig}
			switch {
			case promptPath != "" && responsePath != "":
				opts.Mode = brainstorm.ModeFile
				opts.PromptPath = promptPath
				opts.ResponsePath = responsePath
			default:
				opts.Mode = brainstorm.ModeInteractive
				opts.Input = tui.RiskDecisionInput()
			}

			result, err := hooks.RunBrainstorm(s, "brainstorm", brainstorm.DefaultChecks(), opts)
			if err != nil {
				return fmt.Errorf("brainstorm: %w", err)
			}
			if err := saveState(st, s); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
			if result == brainstorm.RunUnresolved {
				fmt.Println("unresolved; a prompt file was (re)written, or a response file is still missing")
				return nil
			}
			fmt.Println("resolved")
			return nil
		},
	}

	cmd.Flags().StringVar(&promptPath, "prompt-file", "", "path to write the brainstorm prompt (file mode)")
	cmd.Flags().StringVar(&responsePath, "response-file", "", "path to read the brainstorm response from (file mode)")
	return cmd
}
