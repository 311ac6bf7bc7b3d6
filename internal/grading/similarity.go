package grading

import "github.com/pmezard/go-difflib/difflib"

// Similarity returns the Ratcliff/Obershelp ratio of a and b in [0, 1],
// computed over runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
