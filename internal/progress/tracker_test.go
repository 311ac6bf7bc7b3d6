package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/physiktrainer/physiktrainer/internal/grading"
)

var (
	right = grading.Verdict{Correct: true}
	wrong = grading.Verdict{}
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    Box
		correct bool
		want    Box
	}{
		{BoxUnseen, true, BoxLearning},
		{BoxLearning, true, BoxKnown},
		{BoxKnown, true, BoxMastered},
		{BoxMastered, true, BoxMastered},
		{BoxUnseen, false, BoxUnseen},
		{BoxLearning, false, BoxUnseen},
		{BoxMastered, false, BoxUnseen},
		{Box(0), true, BoxLearning},
		{Box(9), true, BoxMastered},
	}

	for _, tc := range tests {
		got := Next(tc.from, tc.correct)
		if got != tc.want {
			t.Errorf("Next(%v, %v) = %v, want %v", tc.from, tc.correct, got, tc.want)
		}
	}
}

func TestTracker_Apply(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	tr := NewTracker(repo)

	box := func() Box {
		b, err := tr.Box(ctx, "anna", "W001")
		require.NoError(t, err)
		return b
	}

	assert.Equal(t, BoxUnseen, box())

	got, err := tr.Apply(ctx, "anna", "W001", right)
	require.NoError(t, err)
	assert.Equal(t, Transition{Key: Key{"anna", "W001"}, From: BoxUnseen, To: BoxLearning, Trigger: TriggerCorrect}, got)
	assert.Equal(t, BoxLearning, box())

	_, err = tr.Apply(ctx, "anna", "W001", right)
	require.NoError(t, err)
	assert.Equal(t, BoxKnown, box())

	for range 3 {
		_, err = tr.Apply(ctx, "anna", "W001", right)
		require.NoError(t, err)
	}
	assert.Equal(t, BoxMastered, box())

	got, err = tr.Apply(ctx, "anna", "W001", wrong)
	require.NoError(t, err)
	assert.Equal(t, BoxMastered, got.From)
	assert.Equal(t, BoxUnseen, got.To)
	assert.Equal(t, TriggerIncorrect, got.Trigger)
	assert.Equal(t, BoxUnseen, box())

	recs, err := repo.List(ctx, "anna")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTracker_ApplySkips(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	tr := NewTracker(repo)

	_, err := tr.Apply(ctx, "", "W001", right)
	assert.ErrorIs(t, err, ErrSkipped)

	_, err = tr.Apply(ctx, "anna", "W001", right)
	require.NoError(t, err)

	_, err = tr.Apply(ctx, "anna", "W001", grading.Verdict{Invalid: true})
	assert.ErrorIs(t, err, ErrSkipped)

	b, err := tr.Box(ctx, "anna", "W001")
	require.NoError(t, err)
	assert.Equal(t, BoxLearning, b)
}

func TestTracker_WrongOnUnseenIsNoChange(t *testing.T) {
	repo := NewMemoryRepo()
	got, err := NewTracker(repo).Apply(context.Background(), "anna", "W001", wrong)
	require.NoError(t, err)
	assert.False(t, got.Changed())
	assert.Empty(t, repo.Events())
}

func TestTracker_CountsAndReset(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	tr := NewTracker(repo)

	apply := func(learner, ex string, n int) {
		for range n {
			_, err := tr.Apply(ctx, learner, ex, right)
			require.NoError(t, err)
		}
	}
	apply("anna", "A", 1)
	apply("anna", "B", 1)
	apply("anna", "C", 3)
	apply("ben", "A", 2)

	counts, err := tr.Counts(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, map[Box]int{BoxLearning: 2, BoxMastered: 1}, counts)

	recs, err := repo.List(ctx, "anna")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "A", recs[0].ExerciseID)
	assert.Equal(t, "C", recs[2].ExerciseID)

	n, err := tr.Reset(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	counts, err = tr.Counts(ctx, "anna")
	require.NoError(t, err)
	assert.Empty(t, counts)

	b, err := tr.Box(ctx, "ben", "A")
	require.NoError(t, err)
	assert.Equal(t, BoxKnown, b)

	var resets int
	for _, e := range repo.Events() {
		if e.Trigger == TriggerReset {
			resets++
		}
	}
	assert.Equal(t, 3, resets)
}

func TestTracker_ConcurrentCorrectAnswers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	tr := NewTracker(repo)

	var eg errgroup.Group
	for range 3 {
		eg.Go(func() error {
			_, err := tr.Apply(ctx, "anna", "W001", right)
			return err
		})
	}
	require.NoError(t, eg.Wait())

	b, err := tr.Box(ctx, "anna", "W001")
	require.NoError(t, err)
	assert.Equal(t, BoxMastered, b)

	// Every change starts where the previous one ended.
	events := repo.Events()
	require.Len(t, events, 3)
	for i := 1; i < len(events); i++ {
		assert.Equal(t, events[i-1].To, events[i].From)
	}
}

func TestBox_String(t *testing.T) {
	assert.Equal(t, "unseen", BoxUnseen.String())
	assert.Equal(t, "mastered", BoxMastered.String())
	assert.Equal(t, "Box(7)", Box(7).String())
	assert.True(t, BoxKnown.Valid())
	assert.False(t, Box(0).Valid())
}
