package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/tui"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [request]",
		Short: "Live-refreshing status view; falls back to a single dump when not a tty",
		Args:  cobra.MinimumNArgs(1),
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

			load := func() (*state.ProjectState, error) {
				return loadOrCreateState(st, rawRequest)
			}

			if !tui.IsInteractive() {
				s, err := load()
				if err != nil {
					return err
				}
				fmt.Print(tui.RenderStatus(s))
				return nil
			}

			return tui.NewWatchModel(load).Run()
		},
	}
}
