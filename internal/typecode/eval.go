package typecode

// LeafFunc compares one slot against the learner's answer. The hint is
// optional and only meaningful on a match.
type LeafFunc func(slot int) (ok bool, hint string)

// Evaluate walks e and combines the leaf results.
//
// Every term of an Or and every factor of an And is evaluated. An Or keeps
// the first hint of a true term; an And keeps the last non-empty hint, taken
// from the failing factors when the And is false. An Or range stops at the
// first matching slot.
func Evaluate(e Expr, leaf LeafFunc) (bool, string) {
	switch n := e.(type) {
	case Leaf:
		return leaf(n.Slot)

	case Range:
		return evaluateRange(n, leaf)

	case Or:
		ok, hint := false, ""
		for _, t := range n.Terms {
			tok, th := Evaluate(t, leaf)
			if !tok {
				continue
			}
			if hint == "" {
				hint = th
			}
			ok = true
		}
		return ok, hint

	case And:
		ok := true
		var passHint, failHint string
		for _, f := range n.Factors {
			fok, fh := Evaluate(f, leaf)
			if !fok {
				ok = false
				if fh != "" {
					failHint = fh
				}
				continue
			}
			if fh != "" {
				passHint = fh
			}
		}
		if ok {
			return true, passHint
		}
		return false, failHint
	}

	// Invalid and nil.
	return false, ""
}

func evaluateRange(r Range, leaf LeafFunc) (bool, string) {
	lo, hi := r.Bounds()
	if hi > MaxSlot {
		if r.Op == OpAnd {
			return false, ""
		}
		hi = MaxSlot
	}

	if r.Op == OpOr {
		for s := lo; s <= hi; s++ {
			if ok, hint := leaf(s); ok {
				return true, hint
			}
		}
		return false, ""
	}

	hint := ""
	for s := lo; s <= hi; s++ {
		ok, h := leaf(s)
		if !ok {
			return false, h
		}
		if h != "" {
			hint = h
		}
	}
	return true, hint
}
