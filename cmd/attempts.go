package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/physiktrainer/physiktrainer/internal/store"
)

func newAttemptsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "Review logged wrong answers",
	}

	var opts store.QueryOpts
	list := &cobra.Command{
		Use:   "list",
		Short: "List logged wrong answers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rt.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			logs, err := st.AttemptRepo().List(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(out, "No attempts logged.")
				return nil
			}
			fmt.Fprintf(out, "%-5s  %-16s  %-8s  %s\n", "ID", "Timestamp", "Exercise", "Answer")
			fmt.Fprintln(out, strings.Repeat("─", 60))
			for _, a := range logs {
				fmt.Fprintf(out, "%-5d  %-16s  %-8s  %s\n",
					a.ID, a.CreatedAt.Local().Format("2006-01-02 15:04"), a.ExerciseID, a.Text)
			}
			return nil
		},
	}
	list.Flags().StringVar(&opts.ExerciseID, "exercise", "", "Only attempts for this exercise id")
	list.Flags().IntVar(&opts.Limit, "limit", 50, "Maximum number of rows (0 = all)")

	dismiss := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Remove a reviewed attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			st, err := rt.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.AttemptRepo().Dismiss(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attempt %d dismissed\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, dismiss)
	return cmd
}
