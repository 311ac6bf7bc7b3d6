package typecode

import (
	"fmt"
	"strings"
)

// MaxSlot is the highest slot number an expression can address. Larger
// numbers are kept in the AST but never resolve.
const MaxSlot = 999

// Op is a boolean connective.
type Op int

const (
	OpOr Op = iota
	OpAnd
)

func (o Op) String() string {
	if o == OpAnd {
		return "u"
	}
	return "o"
}

// Expr is a node of a parsed grading expression.
type Expr interface {
	fmt.Stringer
	exprNode()
}

// Or is true if any term is true.
type Or struct {
	Terms []Expr
}

// And is true if every factor is true.
type And struct {
	Factors []Expr
}

// Leaf compares a single slot.
type Leaf struct {
	Slot int
}

// Range compares every slot in [From, To]; Op decides whether one match
// (OpOr) or all matches (OpAnd) are required.
type Range struct {
	From, To int
	Op       Op
}

// Invalid stands in for a factor the parser could not read. It is always false.
type Invalid struct{}

func (Or) exprNode()      {}
func (And) exprNode()     {}
func (Leaf) exprNode()    {}
func (Range) exprNode()   {}
func (Invalid) exprNode() {}

func (e Or) String() string  { return joinExprs(e.Terms, "o") }
func (e And) String() string { return joinExprs(e.Factors, "u") }

func (e Leaf) String() string { return fmt.Sprintf("%d", e.Slot) }

func (e Range) String() string { return fmt.Sprintf("[%d%s%d]", e.From, e.Op, e.To) }

func (Invalid) String() string { return "?" }

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Bounds returns the range limits in ascending order.
func (e Range) Bounds() (lo, hi int) {
	if e.From <= e.To {
		return e.From, e.To
	}
	return e.To, e.From
}

// Slots lists the slot numbers referenced by e in source order, with ranges
// expanded. Duplicates are kept.
func Slots(e Expr) []int {
	var out []int
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case Or:
			for _, t := range n.Terms {
				walk(t)
			}
		case And:
			for _, f := range n.Factors {
				walk(f)
			}
		case Leaf:
			out = append(out, n.Slot)
		case Range:
			lo, hi := n.Bounds()
			if hi > MaxSlot {
				hi = MaxSlot
			}
			for s := lo; s <= hi; s++ {
				out = append(out, s)
			}
		}
	}
	if e != nil {
		walk(e)
	}
	return out
}
