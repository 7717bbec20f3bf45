package plot

import (
	"time"

	"github.com/zephyrtronium/implicit"
)

// AnimateOptions controls a parameter sweep.
type AnimateOptions struct {
	// Delay is the pause after each frame is delivered.
	Delay time.Duration
	// Levels are the context contour levels for each frame. Nil means none.
	Levels []float64
}

// Frame is one step of a sweep.
type Frame struct {
	// Index is the position of T within the sweep.
	Index int
	T     float64
	// Plot is the rendered frame, or nil if Err is set.
	Plot *Plot
	// Err is the evaluation failure for this frame, if any.
	Err error
}

// sleep is replaced in tests.
var sleep = time.Sleep

// Animate renders the program at each value of r in ascending order, passing
// each frame to the callback before pausing for the delay. Frames are
// independent: one whose evaluation fails is delivered with Err set and the
// sweep continues. The sweep stops early, between frames, if the callback
// returns false. The error is non-nil only if r is invalid.
func Animate(p *implicit.Program, g *Grid, r ParameterRange, opts AnimateOptions, frame func(*Frame) bool) error {
	if err := r.Validate(); err != nil {
		return err
	}
	ts := r.Values()
	for i, t := range ts {
		f := Frame{Index: i, T: t}
		f.Plot, f.Err = Render(p, g, t, opts.Levels)
		if !frame(&f) {
			return nil
		}
		if opts.Delay > 0 && i+1 < len(ts) {
			sleep(opts.Delay)
		}
	}
	return nil
}
