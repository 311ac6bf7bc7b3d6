package grading

import (
	"fmt"
	"strings"

	"github.com/physiktrainer/physiktrainer/internal/exercise"
	"github.com/physiktrainer/physiktrainer/internal/typecode"
)

// Issue is a problem found in an exercise's grading setup.
type Issue struct {
	ExerciseID string
	Message    string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.ExerciseID, i.Message)
}

// CheckExercise reports type-code syntax errors, slot references that do
// not resolve and shape requirements the exercise data does not meet. An
// exercise with issues still grades; the affected parts just never match.
func CheckExercise(ex *exercise.Exercise) []Issue {
	var issues []Issue
	add := func(format string, args ...any) {
		issues = append(issues, Issue{ExerciseID: ex.ID, Message: fmt.Sprintf(format, args...)})
	}

	rule := typecode.ParseRule(ex.TypeCode)
	if rule.Err != nil {
		for _, line := range strings.Split(rule.Err.Error(), "\n") {
			add("type %q: %s", rule.Code, line)
		}
	}

	slots := NewSlotResolver(ex)
	seen := map[int]bool{}
	for _, n := range rule.Slots() {
		if seen[n] {
			continue
		}
		seen[n] = true
		text, ok := slots.Resolve(n)
		switch {
		case !ok:
			add("slot %d does not resolve (highest slot is %d)", n, slots.Len())
		case Normalize(text) == "":
			add("slot %d is empty and never matches", n)
		}
	}

	switch rule.Shape {
	case typecode.ShapePicture:
		if len(ex.Pictures) == 0 {
			add("picture exercise without pictures")
		}
	case typecode.ShapeTrueFalse:
		if _, ok := meaning(ex.Answer); !ok {
			add("answer %q is neither true nor false", ex.Answer)
		}
	case typecode.ShapeChoice:
		if Normalize(ex.Answer) == "" {
			add("choice exercise without an answer")
		}
	case typecode.ShapeNumeric:
		if rule.Count == 0 {
			add("numeric type 0 matches nothing")
		}
	}
	return issues
}
