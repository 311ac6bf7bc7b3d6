package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/physiktrainer/physiktrainer/internal/grading"
)

var errBankIssues = errors.New("bank has issues")

func newCheckCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the exercise bank for broken answer rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, err := rt.loadBank()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var n int
			for _, ex := range bank.All() {
				for _, issue := range grading.CheckExercise(ex) {
					fmt.Fprintln(out, issue)
					n++
				}
			}
			if n > 0 {
				return fmt.Errorf("%w: %d found in %d exercises", errBankIssues, n, bank.Len())
			}
			fmt.Fprintf(out, "%d exercises OK (bank %s)\n", bank.Len(), bank.Version)
			return nil
		},
	}
}
