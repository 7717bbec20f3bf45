package implicit

import (
	"math"
	"math/cmplx"
	"strconv"
)

// Program is a compiled expression which evaluates every point of a sample
// set in one call. A Program is immutable and safe for concurrent use.
type Program struct {
	code  []instr
	depth int
	names []string
}

type instr struct {
	op nodeKind
	// name is the variable for nodeName.
	name string
	// val is the value for nodeNum.
	val complex128
	fn  Func
	// nargs is the argument count for nodeCall.
	nargs int
}

// Compile translates the expression into a Program.
func (e *Expr) Compile() *Program {
	p := Program{names: e.Vars()}
	d := 0
	e.n.compile(&p, &d)
	if d != 1 {
		panic("implicit: inconsistent stack: " + strconv.Itoa(d) + " items (bad AST?)")
	}
	return &p
}

func (p *Program) emit(in instr, d *int, delta int) {
	p.code = append(p.code, in)
	*d += delta
	if *d > p.depth {
		p.depth = *d
	}
}

func (n *node) compile(p *Program, d *int) {
	switch n.kind {
	case nodeNum:
		p.emit(instr{op: nodeNum, val: complex(litval(n.name), 0)}, d, 1)
	case nodeName:
		p.emit(instr{op: nodeName, name: n.name}, d, 1)
	case nodeCall:
		args := n.args()
		for _, a := range args {
			a.compile(p, d)
		}
		p.emit(instr{op: nodeCall, fn: n.fn, nargs: len(args)}, d, 1-len(args))
	case nodeNeg:
		n.left.compile(p, d)
		p.emit(instr{op: nodeNeg}, d, 0)
	case nodeNop:
		n.left.compile(p, d)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		n.left.compile(p, d)
		n.right.compile(p, d)
		p.emit(instr{op: n.kind}, d, -1)
	default:
		panic("implicit: cannot compile " + n.kind.String())
	}
}

// litval converts a numeric literal to float64.
func litval(text string) float64 {
	if isInfText(text) {
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Out of range literals give ±Inf or 0 along with the error.
		if ne, _ := err.(*strconv.NumError); ne == nil || ne.Err != strconv.ErrRange {
			panic("implicit: invalid numeric literal " + strconv.Quote(text))
		}
	}
	return f
}

// Vars returns the variables the program reads, sorted.
func (p *Program) Vars() []string {
	return append(([]string)(nil), p.names...)
}

// Eval evaluates the program at the points (x[i], y[i]) with the parameter t.
// The result has one element per point and is owned by the caller. Panics if
// x and y have different lengths.
func (p *Program) Eval(x, y []float64, t float64) []complex128 {
	if len(x) != len(y) {
		panic("implicit: Eval with " + strconv.Itoa(len(x)) + " x but " + strconv.Itoa(len(y)) + " y")
	}
	m := machine{n: len(x), stack: make([][]complex128, 0, p.depth)}
	for _, in := range p.code {
		switch in.op {
		case nodeNum:
			v := m.push()
			for i := range v {
				v[i] = in.val
			}
		case nodeName:
			v := m.push()
			switch in.name {
			case "x":
				for i, z := range x {
					v[i] = complex(z, 0)
				}
			case "y":
				for i, z := range y {
					v[i] = complex(z, 0)
				}
			case "t":
				for i := range v {
					v[i] = complex(t, 0)
				}
			default:
				panic("implicit: unknown variable " + strconv.Quote(in.name))
			}
		case nodeCall:
			k := len(m.stack) - in.nargs
			out := m.alloc()
			in.fn.Call(out, m.stack[k:])
			m.free = append(m.free, m.stack[k:]...)
			m.stack = append(m.stack[:k], out)
		case nodeNeg:
			v := m.top()
			for i := range v {
				v[i] = -v[i]
			}
		case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
			r := m.pop()
			l := m.top()
			binary(in.op, l, r)
		default:
			panic("implicit: invalid instruction " + in.op.String())
		}
	}
	if len(m.stack) != 1 {
		panic("implicit: inconsistent stack: " + strconv.Itoa(len(m.stack)) + " items (bad program?)")
	}
	return m.stack[0]
}

// machine is the evaluation state of one call to Program.Eval.
type machine struct {
	n     int
	stack [][]complex128
	// free holds vectors popped from the stack for reuse.
	free [][]complex128
}

// push ensures a settable vector on the stack. Its contents are arbitrary.
func (m *machine) push() []complex128 {
	v := m.alloc()
	m.stack = append(m.stack, v)
	return v
}

func (m *machine) pop() []complex128 {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.free = append(m.free, v)
	return v
}

func (m *machine) top() []complex128 {
	return m.stack[len(m.stack)-1]
}

func (m *machine) alloc() []complex128 {
	if k := len(m.free); k > 0 {
		v := m.free[k-1]
		m.free = m.free[:k-1]
		return v
	}
	return make([]complex128, m.n)
}

// binary sets l = l op r elementwise. Where both operands are real, the
// operation uses float64 arithmetic as in package math, so a negative base
// with a non-integer exponent is NaN rather than a complex root. Complex
// arithmetic applies only to operands which are already complex.
func binary(op nodeKind, l, r []complex128) {
	for i, b := range r {
		a := l[i]
		if imag(a) == 0 && imag(b) == 0 {
			l[i] = complex(realop(op, real(a), real(b)), 0)
			continue
		}
		switch op {
		case nodeAdd:
			l[i] = a + b
		case nodeSub:
			l[i] = a - b
		case nodeMul:
			l[i] = a * b
		case nodeDiv:
			l[i] = a / b
		case nodePow:
			l[i] = cmplx.Pow(a, b)
		}
	}
}

func realop(op nodeKind, a, b float64) float64 {
	switch op {
	case nodeAdd:
		return a + b
	case nodeSub:
		return a - b
	case nodeMul:
		return a * b
	case nodeDiv:
		return a / b
	case nodePow:
		return math.Pow(a, b)
	}
	panic("implicit: invalid binary operator " + op.String())
}
