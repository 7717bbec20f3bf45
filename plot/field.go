package plot

import (
	"math"

	"github.com/zephyrtronium/implicit"
)

// Field holds the values of a relation at every point of a grid for one value
// of the parameter.
type Field struct {
	Grid *Grid
	T    float64
	// Values holds the real part of the relation at each grid point in
	// row-major order. Non-finite values mark points where the relation is
	// undefined.
	Values []float64
	// Complex counts points whose non-zero imaginary part was discarded.
	Complex int
	// Finite counts points with finite values.
	Finite int
}

// At returns the value at column i and row j.
func (f *Field) At(i, j int) float64 {
	return f.Values[j*f.Grid.Cols+i]
}

// Evaluate runs a compiled relation over the grid with parameter t. Complex
// results are reduced to their real parts. Points outside the relation's real
// domain are NaN, and a field with no finite points is still a field with no
// curve. The error is an *EvalError if the relation is infinite at every grid
// point, as for a division by zero.
func Evaluate(p *implicit.Program, g *Grid, t float64) (*Field, error) {
	x, y := g.Points()
	z := p.Eval(x, y, t)
	f := Field{Grid: g, T: t, Values: x}
	nan := 0
	for k, v := range z {
		re := real(v)
		f.Values[k] = re
		if imag(v) != 0 && !math.IsNaN(imag(v)) {
			f.Complex++
		}
		switch {
		case math.IsNaN(re):
			nan++
		case !math.IsInf(re, 0):
			f.Finite++
		}
	}
	if f.Finite == 0 && nan == 0 && len(z) > 0 {
		return nil, &EvalError{T: t, Msg: "relation is infinite at every grid point"}
	}
	return &f, nil
}

// Range returns the least and greatest finite values of the field.
func (f *Field) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.Values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
