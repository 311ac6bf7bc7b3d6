package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/physiktrainer/physiktrainer/internal/progress"
)

func newResetCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete a learner's progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			learner, err := learnerFlag(cmd, rt)
			if err != nil {
				return err
			}
			st, err := rt.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := progress.NewTracker(st.MasteryRepo()).Reset(cmd.Context(), learner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d Einträge von %s gelöscht\n", n, learner)
			return nil
		},
	}
	cmd.Flags().String("learner", "", "Learner id (default from config)")
	return cmd
}
