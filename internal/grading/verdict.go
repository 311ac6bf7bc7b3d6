package grading

import "github.com/physiktrainer/physiktrainer/internal/typecode"

// Submission is one answer from the learner. Which fields matter depends on
// the shape of the exercise.
type Submission struct {
	Text      string
	PictureID string
	// ChoiceIndex is the chosen entry of Exercise.Choices(), 0 being the
	// canonical answer. When nil, Text is compared instead.
	ChoiceIndex *int
}

// Choice returns a Submission selecting choice i.
func Choice(i int) Submission {
	return Submission{ChoiceIndex: &i}
}

// Verdict is the outcome of grading one submission.
type Verdict struct {
	Correct bool
	Hint    string
	// Invalid marks a submission the exercise cannot classify. The learner
	// should be asked again; it is neither right nor wrong.
	Invalid bool

	Shape typecode.Shape
	// Fuzzy is set when only the similarity fallback accepted the answer.
	Fuzzy bool
}

// Graded reports whether the verdict counts as an attempt.
func (v Verdict) Graded() bool { return !v.Invalid }

func correct(hint string) Verdict {
	if hint == "" {
		hint = HintCorrect
	}
	return Verdict{Correct: true, Hint: hint}
}

func incorrect(hint string) Verdict {
	return Verdict{Hint: hint}
}

func invalid(hint string) Verdict {
	return Verdict{Invalid: true, Hint: hint}
}
