package typecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Shape is the answer shape selected by the letters of a type code.
type Shape int

const (
	ShapeExpression Shape = iota // boolean slot expression, optionally with forbidden terms
	ShapePicture                 // p: pick the correct picture
	ShapeTrueFalse               // w: true/false
	ShapeChoice                  // a or leading l: single choice from a list
	ShapeTwoPart                 // e: two answers separated by ';' or '...'
	ShapeNumeric                 // digits only: exact match against slots 1..N
)

func (s Shape) String() string {
	switch s {
	case ShapeExpression:
		return "expression"
	case ShapePicture:
		return "picture"
	case ShapeTrueFalse:
		return "true-false"
	case ShapeChoice:
		return "choice"
	case ShapeTwoPart:
		return "two-part"
	case ShapeNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// FreeText reports whether answers of this shape are typed by the learner
// rather than selected.
func (s Shape) FreeText() bool {
	switch s {
	case ShapeExpression, ShapeTwoPart, ShapeNumeric:
		return true
	}
	return false
}

// FuzzyLevel selects the similarity tolerance of the fuzzy fallback.
type FuzzyLevel int

const (
	FuzzyOff   FuzzyLevel = iota
	FuzzyTight            // Y
	FuzzyLoose            // Z
)

// Flags are the modifier letters of a type code.
type Flags struct {
	CaseSensitive bool // X
	Fuzzy         FuzzyLevel
}

// Rule is a parsed type code. It is immutable once built and safe to share.
type Rule struct {
	Code     string // trimmed source
	Residual string // Code without flag letters
	Flags    Flags
	Shape    Shape

	// Expr is the slot expression of ShapeExpression (the part before 'f').
	Expr Expr
	// Forbidden is the expression after the first 'f', nil if there is none.
	Forbidden Expr
	// Left and Right are the two halves of ShapeTwoPart.
	Left, Right Expr
	// Count is N of ShapeNumeric.
	Count int

	// Err collects syntax problems. A rule with Err is still gradable;
	// malformed parts evaluate to false.
	Err error
}

var flagStripper = strings.NewReplacer("X", "", "Y", "", "Z", "")

// ParseRule parses a raw type code.
func ParseRule(code string) Rule {
	code = strings.TrimSpace(code)
	r := Rule{Code: code}

	r.Flags.CaseSensitive = strings.Contains(code, "X")
	switch {
	case strings.Contains(code, "Y"):
		r.Flags.Fuzzy = FuzzyTight
	case strings.Contains(code, "Z"):
		r.Flags.Fuzzy = FuzzyLoose
	}

	res := flagStripper.Replace(code)
	r.Residual = res

	switch {
	case strings.Contains(res, "p"):
		r.Shape = ShapePicture
	case strings.Contains(res, "w"):
		r.Shape = ShapeTrueFalse
	case strings.Contains(res, "a") || strings.HasPrefix(res, "l"):
		r.Shape = ShapeChoice
	case strings.Contains(res, "e"):
		r.Shape = ShapeTwoPart
		r.parseTwoPart(res)
	case isDigits(res):
		r.Shape = ShapeNumeric
		r.Count = parseCount(res)
	default:
		r.Shape = ShapeExpression
		r.parseExpression(res)
	}
	return r
}

func (r *Rule) parseTwoPart(res string) {
	if n := strings.Count(res, "e"); n != 1 {
		r.Left, r.Right = Invalid{}, Invalid{}
		r.Err = fmt.Errorf("two-part code needs exactly one 'e', found %d", n)
		return
	}
	left, right, _ := strings.Cut(res, "e")
	var lerr, rerr error
	r.Left, lerr = ParseExpr(left)
	r.Right, rerr = ParseExpr(right)
	r.Err = errors.Join(wrapSide("left", lerr), wrapSide("right", rerr))
}

func (r *Rule) parseExpression(res string) {
	head, forbidden, found := strings.Cut(res, "f")
	var herr, ferr error
	r.Expr, herr = ParseExpr(head)
	if found && forbidden != "" {
		r.Forbidden, ferr = ParseExpr(forbidden)
	}
	r.Err = errors.Join(herr, wrapSide("forbidden", ferr))
}

func wrapSide(side string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", side, err)
}

func parseCount(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil || n > MaxSlot {
		return MaxSlot
	}
	return n
}

// FuzzyEnabled reports whether the rule carries Y or Z.
func (r Rule) FuzzyEnabled() bool {
	return r.Flags.Fuzzy != FuzzyOff
}

// Slots returns every slot the rule refers to, in source order.
func (r Rule) Slots() []int {
	switch r.Shape {
	case ShapeNumeric:
		out := make([]int, r.Count)
		for i := range out {
			out[i] = i + 1
		}
		return out
	case ShapeTwoPart:
		return append(Slots(r.Left), Slots(r.Right)...)
	case ShapeExpression:
		return append(Slots(r.Expr), Slots(r.Forbidden)...)
	}
	return nil
}
