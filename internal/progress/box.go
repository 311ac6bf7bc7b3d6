// Package progress tracks per-learner mastery of exercises with a four-box
// Leitner scheme.
package progress

import "fmt"

// Box is a Leitner box. A learner without a record is in box 1.
type Box int

const (
	BoxUnseen   Box = 1
	BoxLearning Box = 2
	BoxKnown    Box = 3
	BoxMastered Box = 4
)

func (b Box) String() string {
	switch b {
	case BoxUnseen:
		return "unseen"
	case BoxLearning:
		return "learning"
	case BoxKnown:
		return "known"
	case BoxMastered:
		return "mastered"
	default:
		return fmt.Sprintf("Box(%d)", int(b))
	}
}

// Valid reports whether b is one of the four boxes.
func (b Box) Valid() bool {
	return b >= BoxUnseen && b <= BoxMastered
}

// Next returns the box after a graded answer: one up on a correct answer,
// capped at BoxMastered, and back to BoxUnseen on a wrong one.
func Next(b Box, correct bool) Box {
	if !correct {
		return BoxUnseen
	}
	if b < BoxUnseen {
		b = BoxUnseen
	}
	if b >= BoxMastered {
		return BoxMastered
	}
	return b + 1
}

// Trigger values recorded with a transition.
const (
	TriggerCorrect   = "correct"
	TriggerIncorrect = "incorrect"
	TriggerReset     = "reset"
)

// Key identifies one learner's record for one exercise.
type Key struct {
	LearnerID  string
	ExerciseID string
}

// Transition records a box change for display and event logging.
type Transition struct {
	Key
	From    Box
	To      Box
	Trigger string
}

// Changed reports whether the box moved.
func (t Transition) Changed() bool { return t.From != t.To }
