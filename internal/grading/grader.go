package grading

import (
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/physiktrainer/physiktrainer/internal/exercise"
	"github.com/physiktrainer/physiktrainer/internal/typecode"
)

const (
	DefaultTightThreshold = 0.85
	DefaultLooseThreshold = 0.70
	DefaultRuleCacheSize  = 512
)

// Grader grades submissions. It is safe for concurrent use; the only shared
// state is the cache of parsed type codes.
type Grader struct {
	tight float64
	loose float64

	mu    sync.Mutex
	rules *lru.Cache // nil disables caching
}

// Option configures a Grader.
type Option func(*Grader)

// WithThresholds sets the similarity thresholds used for Y (tight) and Z
// (loose) type codes.
func WithThresholds(tight, loose float64) Option {
	return func(g *Grader) {
		g.tight = tight
		g.loose = loose
	}
}

// WithRuleCacheSize bounds the number of parsed type codes kept. Zero or a
// negative size disables the cache.
func WithRuleCacheSize(n int) Option {
	return func(g *Grader) {
		if n <= 0 {
			g.rules = nil
			return
		}
		g.rules = lru.New(n)
	}
}

// NewGrader returns a Grader with the default thresholds and cache size.
func NewGrader(opts ...Option) *Grader {
	g := &Grader{
		tight: DefaultTightThreshold,
		loose: DefaultLooseThreshold,
		rules: lru.New(DefaultRuleCacheSize),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rule returns the parsed form of a type code.
func (g *Grader) Rule(code string) typecode.Rule {
	if g.rules == nil {
		return typecode.ParseRule(code)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if v, ok := g.rules.Get(code); ok {
		return v.(typecode.Rule)
	}
	r := typecode.ParseRule(code)
	g.rules.Add(code, r)
	return r
}

// Threshold returns the similarity threshold for a fuzzy level, or 0 when
// fuzzy matching is off.
func (g *Grader) Threshold(level typecode.FuzzyLevel) float64 {
	switch level {
	case typecode.FuzzyTight:
		return g.tight
	case typecode.FuzzyLoose:
		return g.loose
	}
	return 0
}

// Grade evaluates sub against ex. state carries the correct picture of a
// picture-pick exercise and may be nil for every other shape.
//
// Grade performs no I/O and never fails; malformed type codes and slot
// references that do not resolve simply don't match.
func (g *Grader) Grade(ex *exercise.Exercise, sub Submission, state *SessionState) Verdict {
	if ex == nil {
		return invalid("Keine Aufgabe ausgewählt.")
	}

	rule := g.Rule(ex.TypeCode)
	j := judge{
		ex:        ex,
		rule:      rule,
		slots:     NewSlotResolver(ex),
		sub:       sub,
		threshold: g.Threshold(rule.Flags.Fuzzy),
	}

	var v Verdict
	switch rule.Shape {
	case typecode.ShapePicture:
		v = j.picture(state)
	case typecode.ShapeTrueFalse:
		v = j.trueFalse()
	case typecode.ShapeChoice:
		v = j.choice()
	case typecode.ShapeTwoPart:
		v = j.twoPart()
	case typecode.ShapeNumeric:
		v = j.numeric()
	default:
		v = j.expression()
	}
	v.Shape = rule.Shape
	return v
}

// judge holds everything needed to grade a single submission.
type judge struct {
	ex        *exercise.Exercise
	rule      typecode.Rule
	slots     SlotResolver
	sub       Submission
	threshold float64
}

func (j judge) fuzzy() bool { return j.threshold > 0 }

func (j judge) leaf(c Comparator, answer string, caseSensitive bool) typecode.LeafFunc {
	return func(n int) (bool, string) {
		text, ok := j.slots.Resolve(n)
		if !ok {
			return false, ""
		}
		return c.Compare(text, answer, caseSensitive)
	}
}

func (j judge) wrong() Verdict {
	return incorrect(wrongHint(j.ex.Answer))
}

func (j judge) picture(state *SessionState) Verdict {
	id := strings.TrimSpace(j.sub.PictureID)
	if id == "" {
		return invalid(HintPickPicture)
	}
	if state == nil || state.CorrectPictureID == "" {
		return incorrect(withAnswer(HintWrongPicture, j.ex.Answer))
	}
	if id == state.CorrectPictureID {
		return correct("")
	}
	return incorrect(withAnswer(HintWrongPicture, j.ex.Answer))
}

var (
	trueWords  = []string{"w", "wahr", "ja", "j", "richtig", "ok", "stimmt"}
	falseWords = []string{"f", "falsch", "nein", "n", "stimmt nicht"}
)

// meaning classifies s as a true- or false-meaning token.
func meaning(s string) (value, ok bool) {
	k := canonical(s)
	if k == "" {
		return false, false
	}
	for _, w := range trueWords {
		if k == canonical(w) {
			return true, true
		}
	}
	for _, w := range falseWords {
		if k == canonical(w) {
			return false, true
		}
	}
	return false, false
}

func (j judge) trueFalse() Verdict {
	got, ok := meaning(j.sub.Text)
	if !ok {
		return invalid(HintTrueFalse)
	}
	want, ok := meaning(j.ex.Answer)
	if !ok || got != want {
		return j.wrong()
	}
	return correct("")
}

func (j judge) choice() Verdict {
	if j.sub.ChoiceIndex != nil {
		i := *j.sub.ChoiceIndex
		if i < 0 || i > len(j.ex.Options) {
			return invalid(HintPickChoice)
		}
		if i == 0 {
			return correct("")
		}
		return j.wrong()
	}

	got := Normalize(j.sub.Text)
	if got == "" {
		return invalid(HintPickChoice)
	}
	want := Normalize(j.ex.Answer)
	if !j.rule.Flags.CaseSensitive {
		got, want = fold(got), fold(want)
	}
	if want != "" && got == want {
		return correct("")
	}
	return j.wrong()
}

// splitTwoPart splits a two-part answer on ';' or, failing that, on "...".
func splitTwoPart(s string) (string, string, bool) {
	sep := ";"
	if !strings.Contains(s, sep) {
		sep = "..."
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", false
	}
	a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

// part evaluates one side of a two-part answer, strict first.
func (j judge) part(e typecode.Expr, answer string) (ok, fuzzy bool) {
	cs := j.rule.Flags.CaseSensitive
	if ok, _ := typecode.Evaluate(e, j.leaf(StrictComparator{Contain: true}, answer, cs)); ok {
		return true, false
	}
	if !j.fuzzy() {
		return false, false
	}
	ok, _ = typecode.Evaluate(e, j.leaf(FuzzyComparator{Threshold: j.threshold}, answer, cs))
	return ok, ok
}

func (j judge) twoPart() Verdict {
	first, second, ok := splitTwoPart(j.sub.Text)
	if !ok {
		return invalid(HintTwoPartFormat)
	}

	lok, lfuzzy := j.part(j.rule.Left, first)
	rok, rfuzzy := j.part(j.rule.Right, second)

	switch {
	case lok && rok:
		if lfuzzy || rfuzzy {
			v := correct(HintSpelling)
			v.Fuzzy = true
			return v
		}
		return correct("")
	case !lok && !rok:
		return incorrect(withAnswer(HintBothPartsWrong, j.ex.Answer))
	case !lok:
		return incorrect(withAnswer(HintFirstPartWrong, j.ex.Answer))
	default:
		return incorrect(withAnswer(HintSecondPartWrong, j.ex.Answer))
	}
}

func (j judge) numeric() Verdict {
	exact := StrictComparator{Contain: false}
	for n := 1; n <= j.rule.Count; n++ {
		text, ok := j.slots.Resolve(n)
		if !ok {
			continue
		}
		if ok, _ := exact.Compare(text, j.sub.Text, j.rule.Flags.CaseSensitive); ok {
			return correct("")
		}
	}

	if j.fuzzy() {
		fz := FuzzyComparator{Threshold: j.threshold}
		for n := 1; n <= j.rule.Count; n++ {
			text, ok := j.slots.Resolve(n)
			if !ok {
				continue
			}
			if ok, hint := fz.Compare(text, j.sub.Text, false); ok {
				v := correct(hint)
				v.Fuzzy = true
				return v
			}
		}
	}
	return j.wrong()
}

func (j judge) expression() Verdict {
	if j.rule.Forbidden != nil {
		if v, hit := j.forbidden(); hit {
			return v
		}
	}

	cs := j.rule.Flags.CaseSensitive
	if ok, hint := typecode.Evaluate(j.rule.Expr, j.leaf(StrictComparator{Contain: true}, j.sub.Text, cs)); ok {
		return correct(hint)
	}

	if j.fuzzy() {
		ok, hint := typecode.Evaluate(j.rule.Expr, j.leaf(FuzzyComparator{Threshold: j.threshold}, j.sub.Text, cs))
		if ok {
			if hint == "" {
				hint = HintSpelling
			}
			v := correct(hint)
			v.Fuzzy = true
			return v
		}
	}
	return j.wrong()
}

// forbidden vetoes the answer when the forbidden expression matches. The
// hint names the first forbidden slot that occurs in the answer.
func (j judge) forbidden() (Verdict, bool) {
	strict := StrictComparator{Contain: true}
	if hit, _ := typecode.Evaluate(j.rule.Forbidden, j.leaf(strict, j.sub.Text, false)); !hit {
		return Verdict{}, false
	}

	term := ""
	for _, n := range typecode.Slots(j.rule.Forbidden) {
		text, ok := j.slots.Resolve(n)
		if !ok {
			continue
		}
		if ok, _ := strict.Compare(text, j.sub.Text, false); ok {
			term = text
			break
		}
	}
	if term == "" {
		term = strings.TrimSpace(j.sub.Text)
	}
	return incorrect(forbiddenHint(term, j.ex.Explanation, j.ex.Answer)), true
}
