package cmd

import (
	"github.com/spf13/cobra"

	"github.com/physiktrainer/physiktrainer/internal/app"
)

type playFlags struct {
	learner string
	topic   string
	limit   int
}

func newPlayCmd(rt *runtime) *cobra.Command {
	var f playFlags
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start an interactive quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("learner") {
				f.learner = rt.cfg.Learner
			}
			return runPlay(cmd, rt, f)
		},
	}
	cmd.Flags().StringVar(&f.learner, "learner", "", "Learner id; empty plays as guest without saving progress (default from config)")
	cmd.Flags().StringVar(&f.topic, "topic", "", "Start with this topic instead of the topic picker")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of exercises per run (0 = all)")
	return cmd
}

// runPlay opens the store, builds the quiz service and launches the TUI.
func runPlay(cmd *cobra.Command, rt *runtime, f playFlags) error {
	bank, err := rt.loadBank()
	if err != nil {
		return err
	}
	st, err := rt.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return app.Run(app.Options{
		Ctx:     cmd.Context(),
		Service: rt.newService(st),
		Bank:    bank,
		Learner: f.learner,
		Topic:   f.topic,
		Limit:   f.limit,
	})
}
