package implicit

import (
	"math"
	"math/big"
	"math/cmplx"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function of complex arguments, applied elementwise over vectors.
type Func interface {
	// Call evaluates the function at every point. args holds one vector per
	// argument, each with the same length as out. Call must set every
	// element of out and must not retain args or out. args has a length for
	// which CanCall returned true.
	Call(out []complex128, args [][]complex128)

	// CanCall returns whether the function can be called with n arguments.
	// This controls how the expression parser handles instances of this
	// function:
	//
	// 	1.	If a bracketed list of n > 0 expressions follows a function, the
	//		parser treats it as an argument list if CanCall(n). (If n is 1 and
	//		!CanCall(1) and CanCall(0), then the list is a multiplication;
	//		otherwise, it is rejected.)
	//
	// 	2.	If a bare term follows a function and CanCall(1), then the parser
	//		treats the term as an argument to the function. E.g., "exp x" is
	//		parsed as "exp(x)". (If !CanCall(1), then it is a multiplication.)
	CanCall(n int) bool
}

// Folder is implemented by functions which can be computed to arbitrary
// precision. The simplifier uses it to fold calls whose arguments are all
// numeric literals. Fold must set r to the real result, or return an error
// (usually a DomainError) if the result is not a finite real number.
type Folder interface {
	Fold(r *big.Float, args []*big.Float) error
}

var globalfuncs = map[string]Func{
	"exp": realMonadic{c: cmplx.Exp, r: math.Exp, fold: bigExp, fdom: bigExpDomain},
	"ln":  realMonadic{c: cmplx.Log, r: math.Log, fold: bigLn, fdom: bigPositive},
	"log": logFunc{},
	"sqrt": realMonadic{c: cmplx.Sqrt, r: math.Sqrt, fold: (*big.Float).Sqrt, fdom: bigNonnegative},
	"abs": realMonadic{c: func(z complex128) complex128 { return complex(cmplx.Abs(z), 0) }, r: math.Abs,
		fold: (*big.Float).Abs},

	"sin": realMonadic{c: cmplx.Sin, r: math.Sin},
	"cos": realMonadic{c: cmplx.Cos, r: math.Cos},
	"tan": realMonadic{c: cmplx.Tan, r: math.Tan},
	"sec": realMonadic{c: func(z complex128) complex128 { return 1 / cmplx.Cos(z) },
		r: func(x float64) float64 { return 1 / math.Cos(x) }},
	"csc": realMonadic{c: func(z complex128) complex128 { return 1 / cmplx.Sin(z) },
		r: func(x float64) float64 { return 1 / math.Sin(x) }},
	"cot": realMonadic{c: cmplx.Cot,
		r: func(x float64) float64 { return 1 / math.Tan(x) }},
	"asin":  realMonadic{c: cmplx.Asin, r: math.Asin},
	"acos":  realMonadic{c: cmplx.Acos, r: math.Acos},
	"atan":  realMonadic{c: cmplx.Atan, r: math.Atan},
	"sinh":  realMonadic{c: cmplx.Sinh, r: math.Sinh},
	"cosh":  realMonadic{c: cmplx.Cosh, r: math.Cosh},
	"tanh":  realMonadic{c: cmplx.Tanh, r: math.Tanh},
	"asinh": realMonadic{c: cmplx.Asinh, r: math.Asinh},
	"acosh": realMonadic{c: cmplx.Acosh, r: math.Acosh},
	"atanh": realMonadic{c: cmplx.Atanh, r: math.Atanh},
	"atan2": atan2Func{},

	// constants
	"pi": Niladic(math.Pi),
	"π":  Niladic(math.Pi),
	"e":  Niladic(math.E),
}

// defaultFuncsDisabled returns a functions map that disables every default
// function when passed to ParseFuncs.
func defaultFuncsDisabled() map[string]Func {
	m := make(map[string]Func, len(globalfuncs))
	for k := range globalfuncs {
		m[k] = nil
	}
	return m
}

func bigPositive(x *big.Float) bool { return x.Sign() > 0 && !x.IsInf() }
func bigNonnegative(x *big.Float) bool {
	return x.Sign() >= 0 && !x.IsInf()
}

// bigExpDomain bounds folded exponentials to those representable as float64.
func bigExpDomain(x *big.Float) bool {
	return new(big.Float).Abs(x).Cmp(big.NewFloat(700)) <= 0
}

func bigExp(out, in *big.Float) *big.Float {
	return bigfloat.Exp(out, in)
}

func bigLn(out, in *big.Float) *big.Float {
	return bigfloat.Log(out, in)
}

// realMonadic is a function of one variable with a real path. Real arguments
// go through r, which gives NaN outside the real domain as package math does;
// c handles arguments which are already complex.
type realMonadic struct {
	c func(complex128) complex128
	r func(float64) float64
	// fold computes the function to arbitrary precision, or nil if it can't.
	fold func(out, in *big.Float) *big.Float
	// fdom is the domain of fold. nil means all finite reals.
	fdom func(*big.Float) bool
}

func (m realMonadic) Call(out []complex128, args [][]complex128) {
	for i, z := range args[0] {
		if imag(z) == 0 {
			out[i] = complex(m.r(real(z)), 0)
			continue
		}
		out[i] = m.c(z)
	}
}

func (m realMonadic) CanCall(n int) bool {
	return n == 1
}

func (m realMonadic) Fold(r *big.Float, args []*big.Float) error {
	x := args[0]
	if m.fold == nil || x.IsInf() || (m.fdom != nil && !m.fdom(x)) {
		return &DomainError{X: x, Arg: 1}
	}
	m.fold(r, x)
	return nil
}

type monadic struct {
	f func(complex128) complex128
}

func (m monadic) Call(out []complex128, args [][]complex128) {
	for i, z := range args[0] {
		out[i] = m.f(z)
	}
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one complex variable into a Func.
func Monadic(f func(complex128) complex128) Func {
	return monadic{f}
}

type niladic struct {
	v complex128
}

func (n niladic) Call(out []complex128, args [][]complex128) {
	for i := range out {
		out[i] = n.v
	}
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic creates a Func of no arguments, i.e. a named constant.
func Niladic(v complex128) Func {
	return niladic{v}
}

// logFunc is the base 10 logarithm with one argument, or the logarithm of its
// first argument to the base of its second with two. Like ln, it is NaN for
// real arguments outside the positive reals.
type logFunc struct{}

func (logFunc) Call(out []complex128, args [][]complex128) {
	for i, z := range args[0] {
		if len(args) == 1 {
			if imag(z) == 0 {
				out[i] = complex(math.Log10(real(z)), 0)
				continue
			}
			out[i] = cmplx.Log10(z)
			continue
		}
		b := args[1][i]
		if imag(z) == 0 && imag(b) == 0 {
			out[i] = complex(math.Log(real(z))/math.Log(real(b)), 0)
			continue
		}
		out[i] = cmplx.Log(z) / cmplx.Log(b)
	}
}

func (logFunc) CanCall(n int) bool {
	return n == 1 || n == 2
}

func (logFunc) Fold(r *big.Float, args []*big.Float) error {
	for i, x := range args {
		if !bigPositive(x) {
			return &DomainError{X: x, Arg: i + 1, Func: "log"}
		}
	}
	base := new(big.Float).SetPrec(r.Prec()).SetInt64(10)
	if len(args) == 2 {
		base.Set(args[1])
	}
	if base.Cmp(new(big.Float).SetInt64(1)) == 0 {
		return &DomainError{X: base, Arg: 2, Func: "log"}
	}
	bigfloat.Log(r, args[0])
	bigfloat.Log(base, base)
	r.Quo(r, base)
	return nil
}

type atan2Func struct{}

func (atan2Func) Call(out []complex128, args [][]complex128) {
	for i := range out {
		out[i] = complex(math.Atan2(real(args[0][i]), real(args[1][i])), 0)
	}
}

func (atan2Func) CanCall(n int) bool {
	return n == 2
}

// DomainError is an error returned when a function is folded on arguments
// outside its real domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}
