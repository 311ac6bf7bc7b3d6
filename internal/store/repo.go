package store

import (
	"context"
	"errors"
	"time"

	"github.com/physiktrainer/physiktrainer/internal/progress"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit      int    // max results (0 = unlimited)
	After      int64  // id or sequence > After
	ExerciseID string // only rows for this exercise
}

// AttemptLog is a wrong free-text answer kept for curation.
type AttemptLog struct {
	ID         int64
	ExerciseID string
	Text       string
	CreatedAt  time.Time
}

// AttemptRepo stores wrong free-text answers.
type AttemptRepo interface {
	// Record stores text for exerciseID unless the same pair is already
	// logged. It reports whether a new row was written.
	Record(ctx context.Context, exerciseID, text string) (bool, error)

	// List returns logged attempts, newest first.
	List(ctx context.Context, opts QueryOpts) ([]AttemptLog, error)

	// Dismiss deletes one logged attempt.
	Dismiss(ctx context.Context, id int64) error
}

// MasteryEvent is an audit row of a box change.
type MasteryEvent struct {
	ID       int64
	Sequence int64
	progress.Transition
	CreatedAt time.Time
}

// MasteryRepo is the database-backed progress.Repo.
type MasteryRepo interface {
	progress.Repo

	// Events returns a learner's box changes in sequence order.
	Events(ctx context.Context, learnerID string, opts QueryOpts) ([]MasteryEvent, error)
}
