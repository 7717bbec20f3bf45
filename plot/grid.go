package plot

import (
	"fmt"
	"math"
)

// Grid is a rectangular lattice of sample points over a domain. Point k of
// the grid, in row-major order, is (X[k%Cols], Y[k/Cols]).
type Grid struct {
	Domain Domain
	Rows   int
	Cols   int
	// X holds the Cols column coordinates, ascending.
	X []float64
	// Y holds the Rows row coordinates, ascending.
	Y []float64
}

// NewGrid creates a grid with resolution columns. The number of rows follows
// the aspect ratio of the domain, so that cells are square.
func NewGrid(d Domain, resolution int) (*Grid, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if resolution < 2 || resolution > MaxResolution {
		return nil, &DomainError{Field: "resolution", Msg: fmt.Sprintf("must be between 2 and %d", MaxResolution)}
	}
	rows := Rows(d, resolution)
	g := Grid{
		Domain: d,
		Rows:   rows,
		Cols:   resolution,
		X:      Linspace(d.XMin, d.XMax, resolution),
		Y:      Linspace(d.YMin, d.YMax, rows),
	}
	return &g, nil
}

// Rows is the number of grid rows for a domain sampled with cols columns:
// cols scaled by the ratio of the y range to the x range, rounded and clamped
// to [1, MaxRows].
func Rows(d Domain, cols int) int {
	r := math.Round(float64(cols) * (d.YMax - d.YMin) / (d.XMax - d.XMin))
	switch {
	case !(r >= 1):
		return 1
	case r > MaxRows:
		return MaxRows
	}
	return int(r)
}

// Len is the number of sample points.
func (g *Grid) Len() int {
	return g.Rows * g.Cols
}

// Points expands the grid into coordinate vectors with one element per point
// in row-major order.
func (g *Grid) Points() (x, y []float64) {
	n := g.Len()
	x = make([]float64, n)
	y = make([]float64, n)
	for j, yj := range g.Y {
		row := j * g.Cols
		copy(x[row:row+g.Cols], g.X)
		for i := range g.Cols {
			y[row+i] = yj
		}
	}
	return x, y
}

// Linspace returns n evenly spaced values from lo to hi inclusive. With n == 1
// the result is lo alone.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	v := make([]float64, n)
	if n == 1 {
		v[0] = lo
		return v
	}
	d := (hi - lo) / float64(n-1)
	for i := range v {
		v[i] = lo + float64(i)*d
	}
	v[n-1] = hi
	return v
}
