// Package grading decides whether a submitted answer satisfies an
// exercise's type code.
package grading

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize removes every whitespace rune from s.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), "")
}

// fold applies Unicode case folding. A Caser keeps state, so one is built
// per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// canonical is the normalized, case-folded form used for loose equality.
func canonical(s string) string {
	return fold(Normalize(s))
}
