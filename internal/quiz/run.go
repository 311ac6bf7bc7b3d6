package quiz

import (
	"context"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/physiktrainer/physiktrainer/internal/exercise"
	"github.com/physiktrainer/physiktrainer/internal/grading"
	"github.com/physiktrainer/physiktrainer/internal/progress"
	"github.com/physiktrainer/physiktrainer/internal/typecode"
)

var (
	// ErrDone is returned when the run has no current exercise.
	ErrDone = errors.New("quiz run finished")
	// ErrAnswered is returned when the current exercise was already graded
	// and the run waits for Advance.
	ErrAnswered = errors.New("exercise already answered")
)

// Summary counts the outcomes of a run.
type Summary struct {
	Answered int
	Correct  int
	// Invalid counts submissions that had to be asked again.
	Invalid int

	Outcomes []Outcome
}

// Outcome is the graded result of one exercise in a run.
type Outcome struct {
	ExerciseID string
	Correct    bool
	Fuzzy      bool
}

// Accuracy returns the share of correct answers, 0 when nothing was answered.
func (s Summary) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}

// Run steps one learner through a list of exercises. It owns the
// SessionState the grader reads. A Run is not safe for concurrent use.
type Run struct {
	ID      string
	Learner string

	svc       *Service
	exercises []*exercise.Exercise
	pos       int
	answered  bool
	state     grading.SessionState
	rng       *rand.Rand

	// order maps a shown choice number to an index of Exercise.Choices().
	order    []int
	pictures []exercise.Picture

	summary Summary
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithSeed makes choice and picture shuffling deterministic.
func WithSeed(seed1, seed2 uint64) RunOption {
	return func(r *Run) { r.rng = rand.New(rand.NewPCG(seed1, seed2)) }
}

// NewRun starts a run over exercises in the given order.
func NewRun(svc *Service, learnerID string, exercises []*exercise.Exercise, opts ...RunOption) *Run {
	id := uuid.New()
	r := &Run{
		ID:        id.String(),
		Learner:   learnerID,
		svc:       svc,
		exercises: slices.Clone(exercises),
		rng:       rand.New(rand.NewPCG(binary.BigEndian.Uint64(id[:8]), binary.BigEndian.Uint64(id[8:]))),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.present()
	return r
}

// present prepares the session state for the current exercise.
func (r *Run) present() {
	r.answered = false
	r.order = nil
	r.pictures = nil
	r.state.ClearCorrectPicture()

	ex, ok := r.Current()
	if !ok {
		return
	}
	switch r.Shape() {
	case typecode.ShapePicture:
		if p, ok := ex.CorrectPicture(); ok {
			r.state.SetCorrectPicture(p.ID)
		}
		r.pictures = slices.Clone(ex.Pictures)
		r.rng.Shuffle(len(r.pictures), func(i, j int) {
			r.pictures[i], r.pictures[j] = r.pictures[j], r.pictures[i]
		})
	case typecode.ShapeChoice:
		r.order = r.rng.Perm(len(ex.Choices()))
	}
}

// Current returns the exercise being asked.
func (r *Run) Current() (*exercise.Exercise, bool) {
	if r.pos >= len(r.exercises) {
		return nil, false
	}
	return r.exercises[r.pos], true
}

// Shape returns the answer shape of the current exercise.
func (r *Run) Shape() typecode.Shape {
	ex, ok := r.Current()
	if !ok {
		return typecode.ShapeExpression
	}
	return r.svc.Grader().Rule(ex.TypeCode).Shape
}

// Position returns the 1-based number of the current exercise and the total.
func (r *Run) Position() (int, int) {
	return min(r.pos+1, len(r.exercises)), len(r.exercises)
}

// Choices returns the current choice list in the order shown to the learner.
func (r *Run) Choices() []string {
	ex, ok := r.Current()
	if !ok || r.order == nil {
		return nil
	}
	all := ex.Choices()
	shown := make([]string, len(r.order))
	for i, idx := range r.order {
		shown[i] = all[idx]
	}
	return shown
}

// Pictures returns the current pictures in the order shown to the learner.
func (r *Run) Pictures() []exercise.Picture {
	return r.pictures
}

// Answered reports whether the current exercise was graded.
func (r *Run) Answered() bool { return r.answered }

// Done reports whether every exercise was answered.
func (r *Run) Done() bool { return r.pos >= len(r.exercises) }

// Summary returns the counts so far.
func (r *Run) Summary() Summary {
	sum := r.summary
	sum.Outcomes = slices.Clone(r.summary.Outcomes)
	return sum
}

// Submit grades sub for the current exercise. An invalid verdict keeps the
// exercise open so the learner can answer again.
func (r *Run) Submit(ctx context.Context, sub grading.Submission) (Result, error) {
	ex, ok := r.Current()
	if !ok {
		return Result{}, ErrDone
	}
	if r.answered {
		return Result{}, ErrAnswered
	}

	res := r.svc.Submit(ctx, r.Learner, ex, sub, &r.state)
	if res.Invalid {
		r.summary.Invalid++
		return res, nil
	}
	r.answered = true
	r.summary.Answered++
	if res.Correct {
		r.summary.Correct++
	}
	r.summary.Outcomes = append(r.summary.Outcomes, Outcome{ExerciseID: ex.ID, Correct: res.Correct, Fuzzy: res.Fuzzy})
	return res, nil
}

// SubmitChoice grades the shown choice number (0-based). Numbers outside the
// shown list are graded invalid.
func (r *Run) SubmitChoice(ctx context.Context, shown int) (Result, error) {
	idx := -1
	if shown >= 0 && shown < len(r.order) {
		idx = r.order[shown]
	}
	return r.Submit(ctx, grading.Choice(idx))
}

// SubmitPicture grades the picture with the given id.
func (r *Run) SubmitPicture(ctx context.Context, pictureID string) (Result, error) {
	return r.Submit(ctx, grading.Submission{PictureID: pictureID})
}

// Advance moves to the next exercise. It reports false when the run is over.
func (r *Run) Advance() bool {
	if r.Done() {
		return false
	}
	r.pos++
	r.present()
	return !r.Done()
}

// Order sorts exercises for a learner so the lowest boxes come first, keeping
// the catalog order within a box. limit > 0 truncates the result. Without a
// tracker the input order is kept.
func Order(ctx context.Context, tracker *progress.Tracker, learnerID string, exercises []*exercise.Exercise, limit int) ([]*exercise.Exercise, error) {
	out := slices.Clone(exercises)
	if tracker != nil && learnerID != "" {
		boxes := make(map[string]progress.Box, len(out))
		for _, ex := range out {
			b, err := tracker.Box(ctx, learnerID, ex.ID)
			if err != nil {
				return nil, err
			}
			boxes[ex.ID] = b
		}
		slices.SortStableFunc(out, func(a, b *exercise.Exercise) int {
			return int(boxes[a.ID]) - int(boxes[b.ID])
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
