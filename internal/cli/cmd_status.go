package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weavehq/weave/internal/tui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [request]",
		Short: "Show the current phase and task states for a request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := loadOrCreateState(st, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("load state: %w", err)
			}
			fmt.Print(tui.RenderStatus(s))
			return nil
		},
	}
}
