package typecode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slotSet matches the listed slots and records every call.
type slotSet struct {
	match map[int]string
	calls []int
}

func newSlotSet(slots ...int) *slotSet {
	s := &slotSet{match: map[int]string{}}
	for _, n := range slots {
		s.match[n] = ""
	}
	return s
}

func (s *slotSet) leaf(slot int) (bool, string) {
	s.calls = append(s.calls, slot)
	h, ok := s.match[slot]
	return ok, h
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr  string
		slots []int
		want  bool
	}{
		{"1", []int{1}, true},
		{"1", []int{2}, false},
		{"1o2", []int{2}, true},
		{"1o2", nil, false},
		{"1u3", []int{1, 2, 3}, true},
		{"1u3", []int{1, 3}, false},
		{"3u(4o6)", []int{3, 5}, true},
		{"3u(4o6)", []int{5}, false},
		{"3u(4o6)", []int{3}, false},
		{"(1u2)o(3u4)", []int{3, 4}, true},
		{"(1u2)o(3u4)", []int{1, 4}, false},
		{"6o4", []int{5}, true},
		{"1o", []int{1}, true},
		{"1u", []int{1}, false},
		{"(", []int{1}, false},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s/%v", tc.expr, tc.slots), func(t *testing.T) {
			e, _ := ParseExpr(tc.expr)
			got, _ := Evaluate(e, newSlotSet(tc.slots...).leaf)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_NilAndInvalid(t *testing.T) {
	leaf := newSlotSet(1).leaf
	ok, _ := Evaluate(nil, leaf)
	assert.False(t, ok)
	ok, _ = Evaluate(Invalid{}, leaf)
	assert.False(t, ok)
}

func TestEvaluate_OrRangeShortCircuits(t *testing.T) {
	s := newSlotSet(4, 5)
	s.match[4] = "four"
	ok, hint := Evaluate(Range{From: 2, To: 6, Op: OpOr}, s.leaf)
	assert.True(t, ok)
	assert.Equal(t, "four", hint)
	assert.Equal(t, []int{2, 3, 4}, s.calls)
}

func TestEvaluate_AndRangeStopsOnMiss(t *testing.T) {
	s := newSlotSet(2)
	ok, _ := Evaluate(Range{From: 2, To: 5, Op: OpAnd}, s.leaf)
	assert.False(t, ok)
	assert.Equal(t, []int{2, 3}, s.calls)
}

func TestEvaluate_OrKeepsFirstHint(t *testing.T) {
	s := newSlotSet(1, 2)
	s.match[1] = "first"
	s.match[2] = "second"
	e, err := ParseExpr("(1)o(2)")
	require.NoError(t, err)

	ok, hint := Evaluate(e, s.leaf)
	assert.True(t, ok)
	assert.Equal(t, "first", hint)
	// Every term is evaluated, not only up to the first match.
	assert.Equal(t, []int{1, 2}, s.calls)
}

func TestEvaluate_AndKeepsLastFailingHint(t *testing.T) {
	calls := 0
	leaf := func(slot int) (bool, string) {
		calls++
		switch slot {
		case 1:
			return true, "ok-1"
		case 2:
			return false, "missing-2"
		case 3:
			return false, "missing-3"
		}
		return false, ""
	}
	e, err := ParseExpr("(1)u(2)u(3)")
	require.NoError(t, err)

	ok, hint := Evaluate(e, leaf)
	assert.False(t, ok)
	assert.Equal(t, "missing-3", hint)
	assert.Equal(t, 3, calls)
}

func TestEvaluate_RangeAboveMaxSlot(t *testing.T) {
	s := newSlotSet(MaxSlot)
	ok, _ := Evaluate(Range{From: MaxSlot, To: MaxSlot + 1, Op: OpOr}, s.leaf)
	assert.True(t, ok)

	ok, _ = Evaluate(Range{From: MaxSlot, To: MaxSlot + 1, Op: OpAnd}, s.leaf)
	assert.False(t, ok)
}
