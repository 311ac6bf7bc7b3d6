package grading

import (
	"sort"

	"github.com/physiktrainer/physiktrainer/internal/exercise"
)

// SlotResolver maps slot numbers to exercise text. Slot 1 is the canonical
// answer; slot n >= 2 is the (n-2)-th option in position order.
type SlotResolver struct {
	answer  string
	options []exercise.Option
}

// NewSlotResolver returns a resolver over ex. Options are read in position
// order regardless of their order in the slice.
func NewSlotResolver(ex *exercise.Exercise) SlotResolver {
	if ex == nil {
		return SlotResolver{}
	}
	opts := ex.Options
	less := func(i, j int) bool { return opts[i].Position < opts[j].Position }
	if !sort.SliceIsSorted(opts, less) {
		opts = make([]exercise.Option, len(ex.Options))
		copy(opts, ex.Options)
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].Position < opts[j].Position })
	}
	return SlotResolver{answer: ex.Answer, options: opts}
}

// Resolve returns the text of slot n. Out-of-range slots report false.
func (r SlotResolver) Resolve(n int) (string, bool) {
	switch {
	case n == 1:
		return r.answer, true
	case n < 1 || n-2 >= len(r.options):
		return "", false
	}
	return r.options[n-2].Text, true
}

// Len is the highest resolvable slot.
func (r SlotResolver) Len() int { return len(r.options) + 1 }

// ResolveSlot returns the text slot n of ex refers to.
func ResolveSlot(ex *exercise.Exercise, n int) (string, bool) {
	if ex == nil {
		return "", false
	}
	return NewSlotResolver(ex).Resolve(n)
}
