package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/physiktrainer/physiktrainer/internal/grading"
)

// ErrSkipped is returned by Tracker.Apply when the verdict does not affect
// progress: the learner is anonymous or the submission was invalid.
var ErrSkipped = errors.New("progress unchanged")

// Record is a stored box. Only boxes above BoxUnseen are stored.
type Record struct {
	Key
	Box       Box
	UpdatedAt time.Time
}

// Repo persists mastery records.
type Repo interface {
	// Transition reads the current box of k, stores fn's result and returns
	// the change. The read-modify-write must be atomic per key. Storing
	// BoxUnseen deletes the record.
	Transition(ctx context.Context, k Key, trigger string, fn func(Box) Box) (Transition, error)

	// Get returns the current box of k, BoxUnseen if there is no record.
	Get(ctx context.Context, k Key) (Box, error)

	// List returns a learner's records ordered by exercise id.
	List(ctx context.Context, learnerID string) ([]Record, error)

	// Reset deletes every record of a learner and returns how many there were.
	Reset(ctx context.Context, learnerID string) (int, error)
}

// Tracker applies verdicts to a Repo.
type Tracker struct {
	repo Repo
}

func NewTracker(repo Repo) *Tracker {
	return &Tracker{repo: repo}
}

// Apply moves learnerID's box for exerciseID according to v.
func (t *Tracker) Apply(ctx context.Context, learnerID, exerciseID string, v grading.Verdict) (Transition, error) {
	if learnerID == "" || v.Invalid {
		return Transition{}, ErrSkipped
	}

	trigger := TriggerIncorrect
	if v.Correct {
		trigger = TriggerCorrect
	}
	tr, err := t.repo.Transition(ctx, Key{LearnerID: learnerID, ExerciseID: exerciseID}, trigger, func(b Box) Box {
		return Next(b, v.Correct)
	})
	if err != nil {
		return Transition{}, fmt.Errorf("apply progress %s/%s: %w", learnerID, exerciseID, err)
	}
	return tr, nil
}

// Counts returns how many of a learner's exercises sit in each box above
// BoxUnseen.
func (t *Tracker) Counts(ctx context.Context, learnerID string) (map[Box]int, error) {
	recs, err := t.repo.List(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	counts := make(map[Box]int, 3)
	for _, r := range recs {
		counts[r.Box]++
	}
	return counts, nil
}

// Reset forgets all progress of a learner.
func (t *Tracker) Reset(ctx context.Context, learnerID string) (int, error) {
	return t.repo.Reset(ctx, learnerID)
}

// Box returns the current box of one exercise.
func (t *Tracker) Box(ctx context.Context, learnerID, exerciseID string) (Box, error) {
	return t.repo.Get(ctx, Key{LearnerID: learnerID, ExerciseID: exerciseID})
}
