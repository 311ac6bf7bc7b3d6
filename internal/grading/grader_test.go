package grading

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/physiktrainer/physiktrainer/internal/exercise"
	"github.com/physiktrainer/physiktrainer/internal/typecode"
)

func newExercise(code, answer string, options ...string) *exercise.Exercise {
	ex := &exercise.Exercise{ID: "T1", TypeCode: code, Answer: answer}
	for i, o := range options {
		ex.Options = append(ex.Options, exercise.Option{Position: i + 1, Text: o})
	}
	return ex
}

func text(s string) Submission { return Submission{Text: s} }

func TestGrade_Expression(t *testing.T) {
	g := NewGrader()

	ex := newExercise("1o2", "dunkle", "helle")
	assert.True(t, g.Grade(ex, text("dunkle helle"), nil).Correct)
	assert.True(t, g.Grade(ex, text("dunkle"), nil).Correct)
	assert.True(t, g.Grade(ex, text("HELLE"), nil).Correct)

	v := g.Grade(ex, text("grau"), nil)
	assert.False(t, v.Correct)
	assert.False(t, v.Invalid)
	assert.Equal(t, "Leider falsch. Richtige Antwort: dunkle", v.Hint)
	assert.Equal(t, typecode.ShapeExpression, v.Shape)
}

func TestGrade_Range(t *testing.T) {
	g := NewGrader()
	ex := newExercise("3u(4o6)", "Luft isoliert",
		"Daunen", "Luft", "mehr", "isoliert", "schlechter Wärmeleiter")

	assert.True(t, g.Grade(ex, text("Luft isoliert"), nil).Correct)
	assert.True(t, g.Grade(ex, text("Die Luft ist ein schlechter Wärmeleiter"), nil).Correct)
	assert.False(t, g.Grade(ex, text("isoliert"), nil).Correct)
	assert.False(t, g.Grade(ex, text("Luft"), nil).Correct)
}

func TestGrade_OptionsResolveByPosition(t *testing.T) {
	g := NewGrader()
	ex := &exercise.Exercise{
		TypeCode: "(3)",
		Answer:   "x",
		Options: []exercise.Option{
			{Position: 2, Text: "zwei"},
			{Position: 1, Text: "eins"},
		},
	}
	assert.True(t, g.Grade(ex, text("zwei"), nil).Correct)
	assert.False(t, g.Grade(ex, text("eins"), nil).Correct)
}

func TestGrade_OutOfRangeSlot(t *testing.T) {
	g := NewGrader()
	ex := newExercise("1o9", "Kelvin")
	assert.True(t, g.Grade(ex, text("Kelvin"), nil).Correct)

	ex = newExercise("(9)", "Kelvin")
	v := g.Grade(ex, text("Kelvin"), nil)
	assert.False(t, v.Correct)
	assert.False(t, v.Invalid)
}

func TestGrade_MalformedOrEmptyCode(t *testing.T) {
	g := NewGrader()

	for _, code := range []string{"", "  ", "()", "u"} {
		t.Run(fmt.Sprintf("%q", code), func(t *testing.T) {
			v := g.Grade(newExercise(code, "Kelvin"), text("Kelvin"), nil)
			assert.False(t, v.Correct)
			assert.False(t, v.Invalid)
			assert.Contains(t, v.Hint, "Kelvin")
		})
	}

	// A dangling operator only poisons its own factor.
	assert.True(t, g.Grade(newExercise("1o", "Kelvin"), text("Kelvin"), nil).Correct)
}

func TestGrade_Numeric(t *testing.T) {
	g := NewGrader()
	ex := newExercise("2", "dunkle", "helle", "grau")

	tests := []struct {
		in   string
		want bool
	}{
		{"dunkle", true},
		{" dunkle ", true},
		{"Dunkle", true},
		{"helle", true},
		{"dunkle helle", false},
		{"grau", false}, // slot 3 is outside 1..2
		{"", false},
	}
	for _, tc := range tests {
		v := g.Grade(ex, text(tc.in), nil)
		assert.Equal(t, tc.want, v.Correct, "Grade(%q)", tc.in)
		assert.Equal(t, typecode.ShapeNumeric, v.Shape)
	}

	cs := newExercise("X1", "I")
	assert.True(t, g.Grade(cs, text("I"), nil).Correct)
	assert.False(t, g.Grade(cs, text("i"), nil).Correct)
}

func TestGrade_NumericFuzzy(t *testing.T) {
	g := NewGrader()

	v := g.Grade(newExercise("Z1", "Ohm"), text("Om"), nil)
	assert.True(t, v.Correct)
	assert.True(t, v.Fuzzy)
	assert.Equal(t, HintSpelling, v.Hint)

	assert.False(t, g.Grade(newExercise("1", "Ohm"), text("Om"), nil).Correct)
}

func TestGrade_Fuzzy(t *testing.T) {
	g := NewGrader()

	v := g.Grade(newExercise("Y(1)", "Thermometer"), text("Termometer"), nil)
	assert.True(t, v.Correct)
	assert.True(t, v.Fuzzy)
	assert.Contains(t, v.Hint, "Schreibweise")

	v = g.Grade(newExercise("(1)", "Thermometer"), text("Termometer"), nil)
	assert.False(t, v.Correct)
	assert.Contains(t, v.Hint, "Thermometer")

	// Exact answers never report a spelling problem.
	v = g.Grade(newExercise("Y(1)", "Thermometer"), text("Thermometer"), nil)
	assert.True(t, v.Correct)
	assert.False(t, v.Fuzzy)
	assert.Equal(t, HintCorrect, v.Hint)
}

func TestGrade_FuzzyLevels(t *testing.T) {
	g := NewGrader()
	assert.True(t, g.Grade(newExercise("Z(1)", "Energie"), text("Enegri"), nil).Correct)
	assert.False(t, g.Grade(newExercise("Y(1)", "Energie"), text("Enegri"), nil).Correct)
	// Y takes precedence over Z.
	assert.False(t, g.Grade(newExercise("YZ(1)", "Energie"), text("Enegri"), nil).Correct)

	strict := NewGrader(WithThresholds(0.99, 0.95))
	assert.False(t, strict.Grade(newExercise("Y(1)", "Thermometer"), text("Termometer"), nil).Correct)
}

func TestGrade_TwoPart(t *testing.T) {
	g := NewGrader()
	ex := newExercise("2o3e4o6", "Metall; Holz",
		"Metall", "Eisen", "Holz", "Kunststoff", "Styropor")

	tests := []struct {
		in      string
		correct bool
		invalid bool
		hint    string
	}{
		{"Eisen; Styropor", true, false, HintCorrect},
		{"Metall ... Holz", true, false, HintCorrect},
		{"  Eisen ;Kunststoff ", true, false, HintCorrect},
		{"Eisen Holz", false, true, HintTwoPartFormat},
		{"Eisen;", false, true, HintTwoPartFormat},
		{"a; b; c", false, true, HintTwoPartFormat},
		{"Eisen; Glas", false, false, HintSecondPartWrong},
		{"Glas; Holz", false, false, HintFirstPartWrong},
		{"Holz; Eisen", false, false, HintBothPartsWrong},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			v := g.Grade(ex, text(tc.in), nil)
			assert.Equal(t, tc.correct, v.Correct)
			assert.Equal(t, tc.invalid, v.Invalid)
			assert.Contains(t, v.Hint, tc.hint)
			if !tc.correct && !tc.invalid {
				assert.Contains(t, v.Hint, "Metall; Holz")
			}
		})
	}
}

func TestGrade_TwoPartFuzzy(t *testing.T) {
	g := NewGrader()
	ex := newExercise("Y2e3", "Thermometer; Barometer", "Thermometer", "Barometer")

	v := g.Grade(ex, text("Termometer; Barometer"), nil)
	assert.True(t, v.Correct)
	assert.True(t, v.Fuzzy)
	assert.Equal(t, HintSpelling, v.Hint)
}

func TestGrade_TwoPartMalformedCode(t *testing.T) {
	g := NewGrader()
	ex := newExercise("2e3e4", "a; b", "a", "b", "c")
	v := g.Grade(ex, text("a; b"), nil)
	assert.False(t, v.Correct)
	assert.False(t, v.Invalid)
}

func TestGrade_TrueFalse(t *testing.T) {
	g := NewGrader()
	no := newExercise("w", "falsch")
	yes := newExercise("w", "Wahr")

	tests := []struct {
		ex      *exercise.Exercise
		in      string
		correct bool
		invalid bool
	}{
		{no, "nein", true, false},
		{no, "N", true, false},
		{no, "stimmt nicht", true, false},
		{no, "Stimmtnicht", true, false},
		{no, "ja", false, false},
		{no, "quatsch", false, true},
		{no, "", false, true},
		{yes, "j", true, false},
		{yes, "OK", true, false},
		{yes, "stimmt", true, false},
		{yes, "f", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.ex.Answer+"/"+tc.in, func(t *testing.T) {
			v := g.Grade(tc.ex, text(tc.in), nil)
			assert.Equal(t, tc.correct, v.Correct)
			assert.Equal(t, tc.invalid, v.Invalid)
			assert.Equal(t, typecode.ShapeTrueFalse, v.Shape)
		})
	}

	v := g.Grade(no, text("quatsch"), nil)
	assert.Equal(t, HintTrueFalse, v.Hint)

	v = g.Grade(newExercise("w", "vielleicht"), text("ja"), nil)
	assert.False(t, v.Correct)
	assert.False(t, v.Invalid)
}

func TestGrade_Choice(t *testing.T) {
	g := NewGrader()
	ex := newExercise("a", "Kupfer", "Holz", "Luft")

	assert.True(t, g.Grade(ex, Choice(0), nil).Correct)

	v := g.Grade(ex, Choice(2), nil)
	assert.False(t, v.Correct)
	assert.False(t, v.Invalid)
	assert.Contains(t, v.Hint, "Kupfer")

	assert.True(t, g.Grade(ex, Choice(3), nil).Invalid)
	assert.True(t, g.Grade(ex, Choice(-1), nil).Invalid)
	assert.True(t, g.Grade(ex, text("  "), nil).Invalid)

	assert.True(t, g.Grade(ex, text("kupfer"), nil).Correct)
	assert.False(t, g.Grade(ex, text("Holz"), nil).Correct)

	assert.True(t, g.Grade(newExercise("l", "Kupfer", "Holz"), text("Kupfer"), nil).Correct)
	assert.False(t, g.Grade(newExercise("Xa", "Kupfer"), text("kupfer"), nil).Correct)
}

func TestGrade_Picture(t *testing.T) {
	g := NewGrader()
	ex := newExercise("p", "")
	state := &SessionState{}
	state.SetCorrectPicture("sammellinse")

	v := g.Grade(ex, Submission{PictureID: "sammellinse"}, state)
	assert.True(t, v.Correct)
	assert.Equal(t, typecode.ShapePicture, v.Shape)

	v = g.Grade(ex, Submission{PictureID: "zerstreuungslinse"}, state)
	assert.False(t, v.Correct)
	assert.Equal(t, HintWrongPicture, v.Hint)

	assert.True(t, g.Grade(ex, Submission{}, state).Invalid)
	assert.False(t, g.Grade(ex, Submission{PictureID: "sammellinse"}, nil).Correct)

	state.ClearCorrectPicture()
	assert.False(t, g.Grade(ex, Submission{PictureID: "sammellinse"}, state).Correct)
}

func TestGrade_Forbidden(t *testing.T) {
	g := NewGrader()

	ex := newExercise("3f1", "Sieden", "Dampf", "Verdunsten")
	v := g.Grade(ex, text("Verdunsten und Sieden"), nil)
	assert.False(t, v.Correct)
	assert.Contains(t, v.Hint, "„Sieden“")
	assert.NotContains(t, v.Hint, "Richtige Antwort")

	assert.True(t, g.Grade(ex, text("Verdunsten"), nil).Correct)

	ex = newExercise("2f3", "Verdunsten", "verdunst", "sieden")
	ex.Explanation = "Sieden setzt erst bei der Siedetemperatur ein."
	v = g.Grade(ex, text("Verdunsten durch SIEDEN"), nil)
	assert.False(t, v.Correct)
	assert.Contains(t, v.Hint, "„sieden“")
	assert.Contains(t, v.Hint, "Begründung: Sieden setzt erst")
	assert.Contains(t, v.Hint, "Richtige Antwort: Verdunsten")
}

func TestGrade_ForbiddenFirstMatchingSlot(t *testing.T) {
	g := NewGrader()
	ex := newExercise("2f(4)o(3)", "x", "richtig", "eins", "zwei")

	v := g.Grade(ex, text("richtig eins zwei"), nil)
	assert.False(t, v.Correct)
	assert.Contains(t, v.Hint, "„zwei“")

	v = g.Grade(newExercise("2f3o4", "x", "richtig", "eins", "zwei"), text("richtig eins zwei"), nil)
	assert.Contains(t, v.Hint, "„eins“")
}

func TestGrade_NilExercise(t *testing.T) {
	v := NewGrader().Grade(nil, text("x"), nil)
	assert.True(t, v.Invalid)
}

func TestGrader_RuleCache(t *testing.T) {
	g := NewGrader(WithRuleCacheSize(2))
	r1 := g.Rule("1o2")
	r2 := g.Rule("1o2")
	assert.Equal(t, r1.Expr, r2.Expr)
	assert.Equal(t, 1, g.rules.Len())

	g.Rule("3")
	g.Rule("4")
	assert.Equal(t, 2, g.rules.Len())

	uncached := NewGrader(WithRuleCacheSize(0))
	assert.Nil(t, uncached.rules)
	assert.Equal(t, typecode.ShapeNumeric, uncached.Rule("3").Shape)
}

func TestGrader_Concurrent(t *testing.T) {
	g := NewGrader(WithRuleCacheSize(4))
	codes := []string{"1o2", "Y(1)", "2", "3u(4o6)", "w", "a", "2o3e4o6"}

	var eg errgroup.Group
	for i := 0; i < 64; i++ {
		code := codes[i%len(codes)]
		eg.Go(func() error {
			ex := newExercise(code, "dunkle", "helle")
			g.Grade(ex, text("dunkle"), nil)
			return nil
		})
	}
	require.NoError(t, eg.Wait())
}
