package implicit

import (
	"strings"
)

// LaTeX renders the expression as typeset math, suitable for display inside
// math delimiters.
func (e *Expr) LaTeX() string {
	var b strings.Builder
	e.n.latex(&b)
	return b.String()
}

// latexOps maps functions with their own LaTeX operator to it.
var latexOps = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`,
	"sec": `\sec`, "csc": `\csc`, "cot": `\cot`,
	"asin": `\arcsin`, "acos": `\arccos`, "atan": `\arctan`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`,
	"exp": `\exp`, "ln": `\ln`, "log": `\log`,
}

// latexPrec gives the binding strength of a node when printed. Operands that
// bind more loosely than their operator need brackets.
func latexPrec(n *node) int {
	switch n.kind {
	case nodeAdd, nodeSub:
		return 1
	case nodeNeg:
		return 2
	case nodeMul, nodeDiv:
		return 3
	case nodePow:
		return 4
	case nodeNop:
		return latexPrec(n.left)
	default:
		return 5
	}
}

func (n *node) latexIn(b *strings.Builder, min int) {
	if latexPrec(n) >= min {
		n.latex(b)
		return
	}
	b.WriteString(`\left(`)
	n.latex(b)
	b.WriteString(`\right)`)
}

func (n *node) latex(b *strings.Builder) {
	switch n.kind {
	case nodeNum:
		if isInfText(n.name) {
			b.WriteString(`\infty`)
			return
		}
		mant, exp, ok := strings.Cut(strings.ToLower(n.name), "e")
		b.WriteString(mant)
		if ok {
			b.WriteString(` \times 10^{`)
			b.WriteString(strings.TrimPrefix(exp, "+"))
			b.WriteByte('}')
		}
	case nodeName:
		b.WriteString(n.name)
	case nodeCall:
		n.latexCall(b)
	case nodeNeg:
		b.WriteByte('-')
		n.left.latexIn(b, 3)
	case nodeNop:
		n.left.latex(b)
	case nodeAdd:
		n.left.latexIn(b, 1)
		b.WriteString(" + ")
		n.right.latexIn(b, 2)
	case nodeSub:
		n.left.latexIn(b, 1)
		b.WriteString(" - ")
		n.right.latexIn(b, 2)
	case nodeMul:
		n.left.latexIn(b, 3)
		if n.left.canonicalNum() && n.left.kind == nodeNum && !n.right.startsNumeric() {
			b.WriteByte(' ')
		} else {
			b.WriteString(` \cdot `)
		}
		n.right.latexIn(b, 3)
	case nodeDiv:
		b.WriteString(`\frac{`)
		n.left.latex(b)
		b.WriteString(`}{`)
		n.right.latex(b)
		b.WriteByte('}')
	case nodePow:
		n.left.latexIn(b, 5)
		b.WriteString("^{")
		n.right.latex(b)
		b.WriteByte('}')
	default:
		panic("implicit: invalid node kind " + n.kind.String())
	}
}

// startsNumeric reports whether the printed form of n begins with a digit or
// sign, in which case juxtaposition would read as a different number.
func (n *node) startsNumeric() bool {
	switch n.kind {
	case nodeNum, nodeNeg:
		return true
	case nodeMul, nodePow, nodeAdd, nodeSub:
		return n.left.startsNumeric()
	case nodeNop:
		return n.left.startsNumeric()
	}
	return false
}

func (n *node) latexCall(b *strings.Builder) {
	args := n.args()
	switch {
	case len(args) == 0 && (n.name == "pi" || n.name == "π"):
		b.WriteString(`\pi`)
		return
	case len(args) == 0:
		b.WriteString(n.name)
		return
	case n.name == "sqrt" && len(args) == 1:
		b.WriteString(`\sqrt{`)
		args[0].latex(b)
		b.WriteByte('}')
		return
	case n.name == "abs" && len(args) == 1:
		b.WriteString(`\left|`)
		args[0].latex(b)
		b.WriteString(`\right|`)
		return
	case n.name == "log" && len(args) == 2:
		b.WriteString(`\log_{`)
		args[1].latex(b)
		b.WriteString(`}\left(`)
		args[0].latex(b)
		b.WriteString(`\right)`)
		return
	}
	if op, ok := latexOps[n.name]; ok {
		b.WriteString(op)
	} else {
		b.WriteString(`\operatorname{`)
		b.WriteString(n.name)
		b.WriteByte('}')
	}
	b.WriteString(`\left(`)
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.latex(b)
	}
	b.WriteString(`\right)`)
}
