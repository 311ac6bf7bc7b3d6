package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"ab", "ab"},
		{" a  b ", "ab"},
		{"a\tb\nc\r\n", "abc"},
		{"schlechter Wärmeleiter", "schlechterWärmeleiter"},
		{" x y", "xy"},
	}

	for _, tc := range tests {
		got := Normalize(tc.in)
		assert.Equal(t, tc.want, got, "Normalize(%q)", tc.in)
		assert.Equal(t, got, Normalize(got), "idempotent for %q", tc.in)
		assert.False(t, strings.ContainsAny(got, " \t\n\r"))
	}

	assert.Equal(t, Normalize(" a  b "), Normalize("ab"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 20.0/21.0, Similarity("thermometer", "termometer"), 1e-9)
	assert.InDelta(t, 10.0/13.0, Similarity("energie", "enegri"), 1e-9)
	// Runes, not bytes.
	assert.InDelta(t, 1.0, Similarity("wärme", "wärme"), 1e-9)
	assert.InDelta(t, 0.8, Similarity("wärme", "warme"), 1e-9)
}

func TestStrictComparator(t *testing.T) {
	tests := []struct {
		name      string
		contain   bool
		slot      string
		answer    string
		sensitive bool
		want      bool
	}{
		{"contain hit", true, "dunkle", "dunkle helle", false, true},
		{"contain ignores spaces", true, "schlechter Wärmeleiter", "ein schlechterWärme leiter", false, true},
		{"contain folds case", true, "Luft", "LUFT isoliert", false, true},
		{"contain respects case", true, "Luft", "LUFT isoliert", true, false},
		{"contain miss", true, "Luft", "Wasser", false, false},
		{"exact hit", false, "dunkle", " dunkle ", false, true},
		{"exact rejects substring", false, "dunkle", "dunkle helle", false, false},
		{"exact respects case", false, "I", "i", true, false},
		{"exact folds", false, "Straße", "STRASSE", false, true},
		{"empty slot never matches", true, "", "anything", false, false},
		{"empty slot vs empty answer", false, " ", "", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, hint := StrictComparator{Contain: tc.contain}.Compare(tc.slot, tc.answer, tc.sensitive)
			assert.Equal(t, tc.want, got)
			assert.Empty(t, hint)
		})
	}
}

func TestFuzzyComparator(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		slot      string
		answer    string
		want      bool
	}{
		{"transposition tight", 0.85, "Thermometer", "Termometer", true},
		{"dropped letters tight", 0.85, "Thermometer", "termomter", true},
		{"loose accepts", 0.70, "Energie", "Enegri", true},
		{"tight rejects", 0.85, "Energie", "Enegri", false},
		{"case ignored", 0.85, "Thermometer", "TERMOMETER", true},
		{"word-wise", 0.85, "Thermometer", "ein Termometer", true},
		{"containment relaxes", 0.70, "Leiter", "Wärmeleiter!", true},
		{"containment not enough", 0.80, "Leiter", "Wärmeleiter!", false},
		{"unrelated", 0.70, "Thermometer", "Waage", false},
		{"empty answer", 0.70, "Ohm", "", false},
		{"empty slot", 0.70, "", "Ohm", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, hint := FuzzyComparator{Threshold: tc.threshold}.Compare(tc.slot, tc.answer, true)
			assert.Equal(t, tc.want, got)
			if tc.want {
				assert.Equal(t, HintSpelling, hint)
			} else {
				assert.Empty(t, hint)
			}
		})
	}
}
