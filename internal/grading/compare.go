package grading

import "strings"

// Comparator matches the text of one slot against the learner's answer.
// The hint is only set on a match.
type Comparator interface {
	Compare(slotText, answer string, caseSensitive bool) (bool, string)
}

// StrictComparator matches after whitespace removal, either by substring
// (Contain) or by equality. An empty slot never matches.
type StrictComparator struct {
	Contain bool
}

// Compare reports whether answer contains (or equals) slotText.
func (c StrictComparator) Compare(slotText, answer string, caseSensitive bool) (bool, string) {
	want := Normalize(slotText)
	if want == "" {
		return false, ""
	}
	got := Normalize(answer)
	if !caseSensitive {
		want, got = fold(want), fold(got)
	}
	if c.Contain {
		return strings.Contains(got, want), ""
	}
	return got == want, ""
}

// FuzzyComparator accepts answers whose similarity to the slot reaches
// Threshold. Comparison is always case-insensitive.
type FuzzyComparator struct {
	Threshold float64
}

// containFactor relaxes the threshold when one side contains the other.
const containFactor = 0.9

// Compare reports whether answer is close enough to slotText, returning the
// spelling hint on a match.
func (c FuzzyComparator) Compare(slotText, answer string, _ bool) (bool, string) {
	want := canonical(slotText)
	got := canonical(answer)
	if want == "" || got == "" {
		return false, ""
	}

	ratio := Similarity(want, got)
	if ratio >= c.Threshold {
		return true, HintSpelling
	}
	if (strings.Contains(got, want) || strings.Contains(want, got)) && ratio >= c.Threshold*containFactor {
		return true, HintSpelling
	}

	words := strings.Fields(answer)
	if len(words) < 2 {
		return false, ""
	}
	for _, w := range words {
		if Similarity(want, fold(w)) >= c.Threshold {
			return true, HintSpelling
		}
	}
	return false, ""
}
