package implicit

import (
	"math/big"
	"strconv"
)

// maxPasses bounds the number of rewriting passes. Every rule shrinks the tree
// or moves numbers leftward, so a fixpoint is reached long before this.
const maxPasses = 64

// Simplify returns an equivalent expression with literal arithmetic folded and
// trivial identities removed. The result has the same real roots as e at
// every point where e is defined. e is not modified.
func (e *Expr) Simplify() *Expr {
	n := e.n
	for i := 0; i < maxPasses; i++ {
		m := simplify(n)
		if m.equal(n) {
			break
		}
		n = m
	}
	return newExpr(n)
}

// simplify performs one bottom-up rewriting pass. It never modifies n.
func simplify(n *node) *node {
	if n == nil {
		return nil
	}
	m := &node{kind: n.kind, name: n.name, fn: n.fn, left: simplify(n.left), right: simplify(n.right)}
	if n.kind == nodeArg {
		return m
	}
	if !m.canonicalNum() && m.literal() {
		if v, err := m.value(); err == nil {
			if r, ok := numnode(v); ok {
				return r
			}
		}
	}
	return rewrite(m)
}

// rewrite applies identity rules at the root of n, whose children are
// already simplified.
func rewrite(n *node) *node {
	l, r := n.left, n.right
	switch n.kind {
	case nodeNop:
		return l
	case nodeNeg:
		if l.kind == nodeNeg {
			return l.left
		}
		if l.isZero() {
			return l
		}
	case nodeAdd:
		switch {
		case r.isZero():
			return l
		case l.isZero():
			return r
		case r.kind == nodeNeg:
			return &node{kind: nodeSub, left: l, right: r.left}
		case l.kind == nodeNeg:
			return &node{kind: nodeSub, left: r, right: l.left}
		case l.equal(r):
			return &node{kind: nodeMul, left: number(2), right: l}
		}
	case nodeSub:
		switch {
		case r.isZero():
			return l
		case l.isZero():
			return &node{kind: nodeNeg, left: r}
		case r.kind == nodeNeg:
			return &node{kind: nodeAdd, left: l, right: r.left}
		case l.equal(r) && l.total():
			return number(0)
		}
	case nodeMul:
		switch {
		case l.isOne():
			return r
		case r.isOne():
			return l
		case l.isNegOne():
			return &node{kind: nodeNeg, left: r}
		case r.isNegOne():
			return &node{kind: nodeNeg, left: l}
		case (l.isZero() && r.total()) || (r.isZero() && l.total()):
			return number(0)
		case r.canonicalNum() && !l.canonicalNum():
			// x 2 -> 2 x
			return &node{kind: nodeMul, left: r, right: l}
		case l.canonicalNum() && r.kind == nodeMul && r.left.canonicalNum():
			// 2 (3 x) -> 6 x
			k := &node{kind: nodeMul, left: l, right: r.left}
			if v, err := k.value(); err == nil {
				if k, ok := numnode(v); ok {
					return &node{kind: nodeMul, left: k, right: r.right}
				}
			}
		case !l.canonicalNum() && r.kind == nodeMul && r.left.canonicalNum():
			// x (2 y) -> 2 (x y)
			return &node{kind: nodeMul, left: r.left, right: &node{kind: nodeMul, left: l, right: r.right}}
		case l.kind == nodeMul && l.left.canonicalNum() && !r.canonicalNum():
			// (2 x) y -> 2 (x y)
			return &node{kind: nodeMul, left: l.left, right: &node{kind: nodeMul, left: l.right, right: r}}
		}
	case nodeDiv:
		if r.isOne() {
			return l
		}
	case nodePow:
		switch {
		case r.isOne():
			return l
		case r.isZero() && l.total():
			return number(1)
		}
	}
	return n
}

// number creates a literal node for a small integer.
func number(k int) *node {
	if k < 0 {
		return &node{kind: nodeNeg, left: number(-k)}
	}
	return &node{kind: nodeNum, name: strconv.Itoa(k)}
}

// canonicalNum reports whether n is a finite literal or its negation.
func (n *node) canonicalNum() bool {
	if n == nil {
		return false
	}
	if n.kind == nodeNeg {
		n = n.left
	}
	return n.isNum() && !isInfText(n.name)
}

// numcmp compares a canonical number to k. ok is false if n is not one.
func (n *node) numcmp(k int64) (c int, ok bool) {
	if !n.canonicalNum() {
		return 0, false
	}
	var v *big.Float
	if n.kind == nodeNeg {
		v = numval(n.left.name)
		v.Neg(v)
	} else {
		v = numval(n.name)
	}
	return v.Cmp(new(big.Float).SetInt64(k)), true
}

func (n *node) isZero() bool {
	c, ok := n.numcmp(0)
	return ok && c == 0
}

func (n *node) isOne() bool {
	c, ok := n.numcmp(1)
	return ok && c == 0
}

func (n *node) isNegOne() bool {
	c, ok := n.numcmp(-1)
	return ok && c == 0
}

// total reports whether n is a polynomial in the variables and named
// constants, so that it is finite wherever its variables are.
func (n *node) total() bool {
	switch n.kind {
	case nodeNum:
		return !isInfText(n.name)
	case nodeName:
		return true
	case nodeCall:
		return n.right == nil
	case nodeNeg, nodeNop:
		return n.left.total()
	case nodeAdd, nodeSub, nodeMul:
		return n.left.total() && n.right.total()
	case nodePow:
		if !n.right.isNum() || isInfText(n.right.name) {
			return false
		}
		v := numval(n.right.name)
		return v.IsInt() && n.left.total()
	default:
		return false
	}
}
