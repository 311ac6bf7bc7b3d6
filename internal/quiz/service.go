// Package quiz composes grading, progress tracking and the attempt log, and
// sequences exercises through a quiz run.
package quiz

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/physiktrainer/physiktrainer/internal/exercise"
	"github.com/physiktrainer/physiktrainer/internal/grading"
	"github.com/physiktrainer/physiktrainer/internal/progress"
	"github.com/physiktrainer/physiktrainer/internal/store"
)

// Result is the outcome of one submission.
type Result struct {
	grading.Verdict

	// Transition is the box change caused by the verdict. It is zero when
	// progress was skipped or could not be saved.
	Transition progress.Transition

	// Logged reports whether the answer was added to the attempt log.
	Logged bool
}

// Service grades submissions and records their side effects.
type Service struct {
	grader   *grading.Grader
	tracker  *progress.Tracker
	attempts store.AttemptRepo
	log      *zap.Logger
}

// NewService wires a Service. tracker and attempts may be nil, which
// disables the respective side effect. A nil logger discards output.
func NewService(g *grading.Grader, tracker *progress.Tracker, attempts store.AttemptRepo, log *zap.Logger) *Service {
	if g == nil {
		g = grading.NewGrader()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{grader: g, tracker: tracker, attempts: attempts, log: log}
}

// Grader returns the grader used by the service.
func (s *Service) Grader() *grading.Grader { return s.grader }

// Tracker returns the progress tracker, nil if progress is disabled.
func (s *Service) Tracker() *progress.Tracker { return s.tracker }

// Submit grades sub against ex, moves the learner's box and logs wrong
// free-text answers. Without a learner id nothing is written. Persistence failures are logged and never change the
// verdict.
func (s *Service) Submit(ctx context.Context, learnerID string, ex *exercise.Exercise, sub grading.Submission, state *grading.SessionState) Result {
	v := s.grader.Grade(ex, sub, state)
	res := Result{Verdict: v}
	if ex == nil {
		return res
	}

	log := s.log.With(zap.String("exercise", ex.ID), zap.String("learner", learnerID))
	log.Debug("graded",
		zap.Bool("correct", v.Correct),
		zap.Bool("invalid", v.Invalid),
		zap.Bool("fuzzy", v.Fuzzy),
		zap.Stringer("shape", v.Shape),
	)

	if s.tracker != nil {
		tr, err := s.tracker.Apply(ctx, learnerID, ex.ID, v)
		switch {
		case errors.Is(err, progress.ErrSkipped):
		case err != nil:
			log.Warn("save progress failed", zap.Error(err))
		default:
			res.Transition = tr
		}
	}

	if s.attempts != nil && learnerID != "" && !v.Correct && !v.Invalid && v.Shape.FreeText() && sub.ChoiceIndex == nil {
		logged, err := s.attempts.Record(ctx, ex.ID, sub.Text)
		if err != nil {
			log.Warn("save attempt failed", zap.Error(err))
		}
		res.Logged = logged
	}
	return res
}
