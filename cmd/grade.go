package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/physiktrainer/physiktrainer/internal/grading"
	"github.com/physiktrainer/physiktrainer/internal/ui/theme"
)

func newGradeCmd(rt *runtime) *cobra.Command {
	var (
		learner string
		picture string
		choice  int
	)
	cmd := &cobra.Command{
		Use:   "grade <exercise-id> [answer...]",
		Short: "Grade one answer",
		Long: "Grade one answer against an exercise and record the result.\n\n" +
			"Picture exercises take --picture, choice exercises take --choice\n" +
			"(0 is the correct answer, 1.. the options in position order) or the\n" +
			"answer text.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("learner") {
				learner = rt.cfg.Learner
			}

			bank, err := rt.loadBank()
			if err != nil {
				return err
			}
			ex, err := bank.Get(args[0])
			if err != nil {
				return err
			}
			st, err := rt.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sub := grading.Submission{Text: strings.Join(args[1:], " "), PictureID: picture}
			if cmd.Flags().Changed("choice") {
				sub = grading.Choice(choice)
			}

			// A single grading call is its own run: the expected picture
			// comes straight from the exercise.
			var state grading.SessionState
			if p, ok := ex.CorrectPicture(); ok {
				state.SetCorrectPicture(p.ID)
			}

			res := rt.newService(st).Submit(cmd.Context(), learner, ex, sub, &state)

			out := cmd.OutOrStdout()
			switch {
			case res.Invalid:
				fmt.Fprintln(out, theme.Almost.Render("ungültig"))
			case res.Correct:
				fmt.Fprintln(out, theme.Correct.Render("richtig"))
			default:
				fmt.Fprintln(out, theme.Incorrect.Render("falsch"))
			}
			fmt.Fprintln(out, res.Hint)
			if tr := res.Transition; tr.Changed() {
				fmt.Fprintf(out, "Box %d -> %d\n", int(tr.From), int(tr.To))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&learner, "learner", "", "Learner id whose progress is updated (default from config)")
	cmd.Flags().StringVar(&picture, "picture", "", "Picture id for picture exercises")
	cmd.Flags().IntVar(&choice, "choice", 0, "Choice index for choice exercises")
	return cmd
}
