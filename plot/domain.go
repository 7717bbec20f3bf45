package plot

import (
	"errors"
	"fmt"
	"math"
)

// Limits on the work a single request may ask for.
const (
	// MaxResolution is the largest number of grid columns.
	MaxResolution = 600
	// MaxRows is the largest number of grid rows, reached by domains four
	// times taller than they are wide.
	MaxRows = 2400
	// MaxFrames is the largest number of parameter values in a sweep.
	MaxFrames = 10000
)

// Resolutions are the grid densities offered to users.
var Resolutions = []int{100, 200, 300, 400, 500, 600}

// ErrDomain is matched by every *DomainError under errors.Is.
var ErrDomain = errors.New("plot: invalid domain")

// DomainError describes bounds or steps that cannot be plotted.
type DomainError struct {
	// Field names the offending input, e.g. "x_max" or "t_step".
	Field string
	// Msg describes the problem.
	Msg string
}

func (err *DomainError) Error() string {
	return "plot: invalid " + err.Field + ": " + err.Msg
}

func (err *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// EvalError reports that an expression produced no finite value anywhere on
// the grid.
type EvalError struct {
	// T is the parameter value of the failed evaluation.
	T float64
	// Msg describes the failure.
	Msg string
}

func (err *EvalError) Error() string {
	return fmt.Sprintf("plot: cannot evaluate at t=%g: %s", err.T, err.Msg)
}

// Domain is the rectangle over which a relation is sampled.
type Domain struct {
	XMin float64 `json:"x_min" yaml:"x_min" mapstructure:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max" mapstructure:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min" mapstructure:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max" mapstructure:"y_max"`
}

// DefaultDomain is [-10, 10] on both axes.
var DefaultDomain = Domain{XMin: -10, XMax: 10, YMin: -10, YMax: 10}

// Validate returns a *DomainError if either axis is empty, reversed, or not
// finite.
func (d Domain) Validate() error {
	for _, v := range []struct {
		name string
		x    float64
	}{{"x_min", d.XMin}, {"x_max", d.XMax}, {"y_min", d.YMin}, {"y_max", d.YMax}} {
		if math.IsInf(v.x, 0) || math.IsNaN(v.x) {
			return &DomainError{Field: v.name, Msg: "must be finite"}
		}
	}
	if d.XMax <= d.XMin {
		return &DomainError{Field: "x_max", Msg: "must be greater than x_min"}
	}
	if d.YMax <= d.YMin {
		return &DomainError{Field: "y_max", Msg: "must be greater than y_min"}
	}
	if math.IsInf(d.XMax-d.XMin, 0) || math.IsInf(d.YMax-d.YMin, 0) {
		return &DomainError{Field: "domain", Msg: "range overflows"}
	}
	return nil
}

// ParameterRange is a sweep of t from Min to Max in increments of Step.
type ParameterRange struct {
	Min  float64 `json:"t_min" yaml:"t_min" mapstructure:"t_min"`
	Max  float64 `json:"t_max" yaml:"t_max" mapstructure:"t_max"`
	Step float64 `json:"t_step" yaml:"t_step" mapstructure:"t_step"`
}

// DefaultParameterRange is t from 0 to 10 by 0.5.
var DefaultParameterRange = ParameterRange{Min: 0, Max: 10, Step: 0.5}

// Validate returns a *DomainError if the range is reversed, the step is not
// positive, or the sweep would exceed MaxFrames values.
func (r ParameterRange) Validate() error {
	for _, v := range []struct {
		name string
		x    float64
	}{{"t_min", r.Min}, {"t_max", r.Max}, {"t_step", r.Step}} {
		if math.IsInf(v.x, 0) || math.IsNaN(v.x) {
			return &DomainError{Field: v.name, Msg: "must be finite"}
		}
	}
	if r.Max < r.Min {
		return &DomainError{Field: "t_max", Msg: "must not be less than t_min"}
	}
	if r.Step <= 0 {
		return &DomainError{Field: "t_step", Msg: "must be positive"}
	}
	if n := (r.Max - r.Min) / r.Step; n >= MaxFrames {
		return &DomainError{Field: "t_step", Msg: fmt.Sprintf("sweep has more than %d values", MaxFrames)}
	}
	return nil
}

// count is the number of values in the sweep. The range must be valid.
func (r ParameterRange) count() int {
	q := (r.Max - r.Min) / r.Step
	n := math.Floor(q)
	// Include Max when it is a step boundary up to rounding.
	if q-n > 1-1e-9*math.Max(1, q) {
		n++
	}
	return int(n) + 1
}

// Values lists the parameter values of the sweep in ascending order. Max is
// included when it lies on a step boundary. The range must be valid.
func (r ParameterRange) Values() []float64 {
	n := r.count()
	v := make([]float64, n)
	for i := range v {
		v[i] = r.Min + float64(i)*r.Step
	}
	// Snap the last value so that accumulated rounding cannot pass Max.
	if v[n-1] > r.Max {
		v[n-1] = r.Max
	}
	return v
}

// Initial is the starting value of a single-frame plot: the midpoint of the
// range snapped to the nearest step value. The range must be valid.
func (r ParameterRange) Initial() float64 {
	mid := (r.Min + r.Max) / 2
	k := math.Round((mid - r.Min) / r.Step)
	t := r.Min + k*r.Step
	if t > r.Max {
		t -= r.Step
	}
	if t < r.Min {
		t = r.Min
	}
	return t
}

// Contains reports whether t lies within the range.
func (r ParameterRange) Contains(t float64) bool {
	return r.Min <= t && t <= r.Max
}
