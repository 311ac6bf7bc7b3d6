// Package cmd implements the physiktrainer command line.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/physiktrainer/physiktrainer/internal/config"
	"github.com/physiktrainer/physiktrainer/internal/exercise"
	"github.com/physiktrainer/physiktrainer/internal/grading"
	"github.com/physiktrainer/physiktrainer/internal/logging"
	"github.com/physiktrainer/physiktrainer/internal/progress"
	"github.com/physiktrainer/physiktrainer/internal/quiz"
	"github.com/physiktrainer/physiktrainer/internal/store"
)

// runtime carries what the subcommands share: flags, config and logger.
type runtime struct {
	configPath string
	dbPath     string
	bankPath   string

	cfg config.Config
	log *zap.Logger
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "physiktrainer",
		Short: "Physics exercise trainer",
		Long: "physiktrainer asks physics exercises in the terminal, grades typed answers\n" +
			"against per-exercise answer rules and tracks each learner's progress.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, rt, playFlags{learner: rt.cfg.Learner})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rt.configPath, "config", "", "Config file (default ./physiktrainer.yaml or the user config dir)")
	pf.StringVar(&rt.dbPath, "db", "", "Path to SQLite database file (overrides db.path and PHYSIK_DB)")
	pf.StringVar(&rt.bankPath, "bank", "", "Exercise bank JSON file (default: bundled demo bank)")

	root.AddCommand(
		newPlayCmd(rt),
		newGradeCmd(rt),
		newCheckCmd(rt),
		newStatsCmd(rt),
		newResetCmd(rt),
		newAttemptsCmd(rt),
		newVersionCmd(),
	)
	return root
}

// load reads the config, applies flag overrides and builds the logger.
func (rt *runtime) load(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	if rt.dbPath != "" {
		cfg.DB.Driver = store.DriverSQLite
		cfg.DB.DSN = ""
		cfg.DB.Path = rt.dbPath
	}
	if rt.bankPath != "" {
		cfg.Bank.Path = rt.bankPath
	}
	rt.cfg = cfg

	log, err := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	rt.log = log.With(zap.String("cmd", cmd.Name()))
	return nil
}

// openStore connects to the configured database. A SQLite database without
// an explicit path lives in the XDG data directory.
func (rt *runtime) openStore() (*store.Store, error) {
	db := rt.cfg.DB
	dsn := db.DataSource()
	switch {
	case dsn == "":
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		dsn = p
	case db.DSN == "" && !strings.HasPrefix(dsn, "file:"):
		if err := store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create DB dir: %w", err)
		}
	}

	st, err := store.OpenDriver(db.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.log.Debug("store opened", zap.String("driver", db.Driver), zap.String("dialect", st.Dialect()))
	return st, nil
}

// loadBank returns the configured bank or the bundled demo bank.
func (rt *runtime) loadBank() (*exercise.Bank, error) {
	if rt.cfg.Bank.Path == "" {
		return exercise.DemoBank()
	}
	b, err := exercise.LoadBank(rt.cfg.Bank.Path)
	if err != nil {
		return nil, err
	}
	rt.log.Debug("bank loaded", zap.String("path", rt.cfg.Bank.Path), zap.String("version", b.Version), zap.Int("exercises", b.Len()))
	return b, nil
}

func (rt *runtime) newGrader() *grading.Grader {
	g := rt.cfg.Grading
	return grading.NewGrader(
		grading.WithThresholds(g.TightThreshold, g.LooseThreshold),
		grading.WithRuleCacheSize(g.RuleCacheSize),
	)
}

// newService wires grading, progress and the attempt log to st.
func (rt *runtime) newService(st *store.Store) *quiz.Service {
	return quiz.NewService(rt.newGrader(), progress.NewTracker(st.MasteryRepo()), st.AttemptRepo(), rt.log)
}
