package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/physiktrainer/physiktrainer/internal/progress"
	"github.com/physiktrainer/physiktrainer/internal/store"
	"github.com/physiktrainer/physiktrainer/internal/ui/components"
)

var errNoLearner = errors.New("no learner given (use --learner or set learner in the config)")

// learnerFlag returns --learner or the configured default.
func learnerFlag(cmd *cobra.Command, rt *runtime) (string, error) {
	learner, _ := cmd.Flags().GetString("learner")
	if !cmd.Flags().Changed("learner") {
		learner = rt.cfg.Learner
	}
	if learner == "" {
		return "", errNoLearner
	}
	return learner, nil
}

func newStatsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a learner's progress per box",
		RunE: func(cmd *cobra.Command, args []string) error {
			learner, err := learnerFlag(cmd, rt)
			if err != nil {
				return err
			}
			showEvents, _ := cmd.Flags().GetInt("events")

			bank, err := rt.loadBank()
			if err != nil {
				return err
			}
			st, err := rt.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			counts, err := progress.NewTracker(st.MasteryRepo()).Counts(ctx, learner)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total := bank.Len()
			seen := 0
			for _, b := range []progress.Box{progress.BoxLearning, progress.BoxKnown, progress.BoxMastered} {
				seen += counts[b]
			}
			fmt.Fprintf(out, "Lernstand von %s (%d Aufgaben)\n\n", learner, total)
			rows := []struct {
				box   progress.Box
				count int
			}{
				{progress.BoxUnseen, max(total-seen, 0)},
				{progress.BoxLearning, counts[progress.BoxLearning]},
				{progress.BoxKnown, counts[progress.BoxKnown]},
				{progress.BoxMastered, counts[progress.BoxMastered]},
			}
			for _, r := range rows {
				label := fmt.Sprintf("Box %d %-9s %3d", int(r.box), r.box, r.count)
				fmt.Fprintln(out, components.NewProgressBar(label, r.count, total, 60).View())
			}

			if showEvents > 0 {
				events, err := st.MasteryRepo().Events(ctx, learner, store.QueryOpts{})
				if err != nil {
					return err
				}
				if len(events) > showEvents {
					events = events[len(events)-showEvents:]
				}
				fmt.Fprintln(out)
				for _, e := range events {
					fmt.Fprintf(out, "%6d  %s  %-8s  %d -> %d  %s\n",
						e.Sequence, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.ExerciseID, int(e.From), int(e.To), e.Trigger)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("learner", "", "Learner id (default from config)")
	cmd.Flags().Int("events", 0, "Also list the last N box changes")
	return cmd
}
