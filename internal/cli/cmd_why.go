package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newWhyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "why [request] [task-id]",
		Short: "Explain a task's current state: gates, reviews, and human decisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawRequest, taskID := args[0], args[1]
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

			t, found := s.TaskByID(taskID)
			if !found {
				return fmt.Errorf("no task %s in this request", taskID)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "task %s: %s\n", t.ID, t.Title)
			fmt.Fprintf(&b, "  status: %s\n", t.Status)
			if len(t.Dependencies) > 0 {
				fmt.Fprintf(&b, "  depends on: %s\n", strings.Join(t.Dependencies, ", "))
			}
			if t.DeferTrigger != nil {
				fmt.Fprintf(&b, "  deferred: %s\n", *t.DeferTrigger)
			}

			gates := s.GateResultsForTask(taskID)
			if len(gates) == 0 {
				b.WriteString("  gates: none run yet\n")
			} else {
				b.WriteString("  gates:\n")
				for _, g := range gates {
					fmt.Fprintf(&b, "    %s: %s\n", g.Kind, g.Status)
				}
			}

			var decisions []string
			for _, d := range s.HumanDecisions {
				if d.TaskID == taskID {
					line := fmt.Sprintf("    %s", d.Kind)
					if d.Feedback != "" {
						line += ": " + d.Feedback
					}
					decisions = append(decisions, line)
				}
			}
			if len(decisions) == 0 {
				b.WriteString("  reviewer decisions: none\n")
			} else {
				b.WriteString("  reviewer decisions:\n")
				for _, d := range decisions {
					b.WriteString(d + "\n")
				}
			}

			var brainstorms []string
			for _, bs := range s.BrainstormResults {
				if bs.TaskID == taskID {
					brainstorms = append(brainstorms, fmt.Sprintf("    %s -> %s (%s)", bs.Question, bs.Answer, bs.ActionTaken))
				}
			}
			if len(brainstorms) > 0 {
				b.WriteString("  brainstorm decisions:\n")
				for _, line := range brainstorms {
					b.WriteString(line + "\n")
				}
			}

			if s.BlockedReason != nil && s.CurrentTaskID == taskID {
				fmt.Fprintf(&b, "  currently blocking the request: %s\n", *s.BlockedReason)
			}

			fmt.Print(b.String())
			return nil
		},
	}
}
