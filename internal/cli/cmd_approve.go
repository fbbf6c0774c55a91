package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/weavehq/weave/internal/review"
)

func newApproveCmd() *cobra.Command {
	var reject bool
	var feedback string

	cmd := &cobra.Command{
		Use:   "approve [request]",
		Short: "Clear a paused request's blocked_reason so the next run can resume",
		Long: `approve clears blocked_reason for a request paused by a human_check hook,
a revision/gate-retry exhaustion, or a reviewer pause decision. Run 'weave
run' again afterward to resume the execute/verify loop from where it left
off. --reject instead records a rejected human_check decision and leaves
the task failed.`,
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
			if s.BlockedReason == nil {
				stderrf("nothing is blocked for this request\n")
				return nil
			}

			if reject {
				stderrf("rejected: %s\n", *s.BlockedReason)
				if feedback != "" {
					stderrf("feedback: %s\n", feedback)
				}
				s.RecordHumanApproval(review.HumanApproval{HookName: "human_check", Approved: false, Feedback: feedback, Timestamp: time.Now()})
				if t, ok := s.TaskByID(s.CurrentTaskID); ok {
					s.FailTask(t)
				}
				s.ClearBlocked()
				return saveState(st, s)
			}

			s.ClearBlocked()
			if err := saveState(st, s); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
			fmt.Println("unblocked; run 'weave run' to resume")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reject, "reject", false, "reject instead of approve")
	cmd.Flags().StringVar(&feedback, "feedback", "", "feedback to record with a rejection")
	return cmd
}
