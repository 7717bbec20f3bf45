// Package plot samples implicit relations over rectangular grids and extracts
// their zero sets as polylines.
//
// The pipeline for one frame is NewGrid, Evaluate, then Contours. Render runs
// all of it, and Animate runs it once per value of a parameter sweep. Nothing
// in this package keeps state between calls; every frame is computed from the
// program, the grid, and t alone.
package plot

import (
	"math"

	"github.com/zephyrtronium/implicit"
)

// Default context levels.
var (
	StaticLevels    = Linspace(-10, 10, 21)
	AnimationLevels = Linspace(-5, 5, 11)
)

// NoCurveHint suggests what to change when a plot has no zero contour.
const NoCurveHint = `No curve was found at level 0. The relation may have no real solutions in this domain for this value of t, or the resolution may be too coarse to see it.
Try:
  - raising the resolution
  - widening or moving the x and y ranges
  - choosing another value of t
  - checking the equation`

// Plot is one evaluated frame.
type Plot struct {
	Field *Field
	// Zero holds the polylines where the relation is zero.
	Zero []Polyline
	// Context holds contours at other levels, drawn as a visual aid.
	Context []ContourSet
}

// Render evaluates the program over the grid at t and extracts the zero set
// and a contour set for each of levels.
func Render(p *implicit.Program, g *Grid, t float64, levels []float64) (*Plot, error) {
	f, err := Evaluate(p, g, t)
	if err != nil {
		return nil, err
	}
	r := Plot{Field: f, Zero: ZeroContours(f)}
	for _, l := range levels {
		r.Context = append(r.Context, ContourSet{Level: l, Lines: Contours(f, l)})
	}
	return &r, nil
}

// NoCurve reports whether the frame has an empty zero set. This is an
// ordinary outcome, distinct from an evaluation failure.
func (p *Plot) NoCurve() bool {
	return len(p.Zero) == 0
}

// Primary returns the first zero polyline, or nil if there is none.
func (p *Plot) Primary() Polyline {
	if p.NoCurve() {
		return nil
	}
	return p.Zero[0]
}

// Metrics summarizes a polyline.
type Metrics struct {
	Points int     `json:"points"`
	XMin   float64 `json:"x_min"`
	XMax   float64 `json:"x_max"`
	YMin   float64 `json:"y_min"`
	YMax   float64 `json:"y_max"`
}

// Summarize counts the points of a polyline and finds its bounding box. The
// bounds are NaN for an empty polyline.
func Summarize(p Polyline) Metrics {
	if len(p) == 0 {
		nan := math.NaN()
		return Metrics{XMin: nan, XMax: nan, YMin: nan, YMax: nan}
	}
	m := Metrics{Points: len(p), XMin: p[0].X, XMax: p[0].X, YMin: p[0].Y, YMax: p[0].Y}
	for _, q := range p[1:] {
		m.XMin = min(m.XMin, q.X)
		m.XMax = max(m.XMax, q.X)
		m.YMin = min(m.YMin, q.Y)
		m.YMax = max(m.YMax, q.Y)
	}
	return m
}
