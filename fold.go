package implicit

import (
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// foldPrec is the precision of constant folding. Results are rounded to
// float64 afterward, so this only needs to absorb intermediate error.
const foldPrec = 192

// maxIntPow is the largest integer exponent folded by repeated squaring.
const maxIntPow = 4096

// literal reports whether the tree contains only numeric literals and calls
// with arguments. Named constants (niladic calls) are not literal, so pi and
// e stay symbolic.
func (n *node) literal() bool {
	ok := true
	n.walk(func(m *node) {
		switch m.kind {
		case nodeName:
			ok = false
		case nodeCall:
			if m.right == nil {
				ok = false
			}
		case nodeNum:
			if isInfText(m.name) {
				ok = false
			}
		}
	})
	return ok
}

// numval parses a numeric literal.
func numval(text string) *big.Float {
	if isInfText(text) {
		return new(big.Float).SetPrec(foldPrec).SetInf(false)
	}
	x, _, err := big.ParseFloat(text, 10, foldPrec, big.ToNearestEven)
	if err != nil {
		panic("implicit: invalid numeric literal " + strconv.Quote(text))
	}
	return x
}

func isInfText(text string) bool {
	return text == "∞" || isInf(text)
}

// value folds a literal tree, converting NaN panics from package big into
// errors.
func (n *node) value() (v *big.Float, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if nan, ok := r.(big.ErrNaN); ok {
			v, err = nil, &DomainError{X: new(big.Float), Func: nan.Error()}
			return
		}
		panic(r)
	}()
	return n.fold()
}

// fold evaluates a literal tree to arbitrary precision. The error is a
// *DomainError if any operation leaves the finite reals.
func (n *node) fold() (*big.Float, error) {
	switch n.kind {
	case nodeNum:
		return numval(n.name), nil
	case nodeCall:
		f, ok := n.fn.(Folder)
		if !ok {
			return nil, &DomainError{X: new(big.Float), Func: n.name}
		}
		var args []*big.Float
		for _, a := range n.args() {
			x, err := a.fold()
			if err != nil {
				return nil, err
			}
			args = append(args, x)
		}
		r := new(big.Float).SetPrec(foldPrec)
		if err := f.Fold(r, args); err != nil {
			if de, _ := err.(*DomainError); de != nil && de.Func == "" {
				de.Func = n.name
			}
			return nil, err
		}
		return r, nil
	case nodeNeg:
		x, err := n.left.fold()
		if err != nil {
			return nil, err
		}
		return x.Neg(x), nil
	case nodeNop:
		return n.left.fold()
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		l, err := n.left.fold()
		if err != nil {
			return nil, err
		}
		r, err := n.right.fold()
		if err != nil {
			return nil, err
		}
		switch n.kind {
		case nodeAdd:
			l.Add(l, r)
		case nodeSub:
			l.Sub(l, r)
		case nodeMul:
			l.Mul(l, r)
		case nodeDiv:
			// Division by zero is left to the evaluator, which reports it
			// per point instead of rejecting the whole expression.
			if r.Sign() == 0 {
				return nil, &DomainError{X: r, Arg: 2, Func: "/"}
			}
			l.Quo(l, r)
		case nodePow:
			if err := foldPow(l, l, r); err != nil {
				return nil, err
			}
		}
		return l, nil
	default:
		panic("implicit: cannot fold " + n.kind.String())
	}
}

// foldPow sets z = x^y. Integer exponents are exact up to rounding, including
// for negative bases. Other exponents require a positive base.
func foldPow(z, x, y *big.Float) error {
	if y.IsInt() {
		k, acc := y.Int64()
		if acc == big.Exact && -maxIntPow <= k && k <= maxIntPow {
			if x.Sign() == 0 && k < 0 {
				return &DomainError{X: x, Arg: 1, Func: "^"}
			}
			intPow(z, x, k)
			return nil
		}
	}
	if x.Sign() <= 0 {
		return &DomainError{X: x, Arg: 1, Func: "^"}
	}
	// Keep the result within a few times the float64 exponent range.
	xf, _ := x.Float64()
	yf, _ := y.Float64()
	if math.Abs(yf*math.Log2(xf)) > 4*1024 {
		return &DomainError{X: y, Arg: 2, Func: "^"}
	}
	bigfloat.Pow(z, x, y)
	return nil
}

// intPow sets z = x^k by repeated squaring.
func intPow(z, x *big.Float, k int64) {
	neg := k < 0
	if neg {
		k = -k
	}
	b := new(big.Float).SetPrec(foldPrec).Set(x)
	r := new(big.Float).SetPrec(foldPrec).SetInt64(1)
	for ; k > 0; k >>= 1 {
		if k&1 != 0 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
	}
	if neg {
		r.Quo(new(big.Float).SetPrec(foldPrec).SetInt64(1), r)
	}
	z.Set(r)
}

// numnode creates the canonical tree for a folded value: a literal, or the
// negation of one. The second result is false if the value does not survive
// rounding to a finite float64.
func numnode(x *big.Float) (*node, bool) {
	if x.IsInf() {
		return nil, false
	}
	f, _ := x.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) || (f == 0 && x.Sign() != 0) {
		return nil, false
	}
	return floatnode(f), true
}

// floatnode creates the canonical tree for a finite float64.
func floatnode(f float64) *node {
	n := &node{kind: nodeNum, name: strconv.FormatFloat(math.Abs(f), 'g', -1, 64)}
	if f < 0 {
		n = &node{kind: nodeNeg, left: n}
	}
	return n
}
