// Package session holds the state one user builds up between actions: the
// last valid equation and the last static plot.
package session

import (
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zephyrtronium/implicit"
	"github.com/zephyrtronium/implicit/plot"
)

var (
	// ErrNotValidated is returned when plotting before any equation has
	// been validated.
	ErrNotValidated = errors.New("session: no valid equation")
	// ErrNothingToExport is returned when there is no curve to export.
	ErrNothingToExport = errors.New("session: no curve to export")
)

// State is a snapshot of a session.
type State struct {
	// Equation is the text of the last valid equation.
	Equation string
	// Expr is the parsed form of Equation.
	Expr *implicit.Expr
	// Valid is whether Expr is usable.
	Valid bool
	// LastPlot is the most recent static plot.
	LastPlot *plot.Plot
	// T is the parameter value of LastPlot.
	T float64
}

// Session is the state of one user. It is safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	state State
	prog  *implicit.Program
	log   *zap.Logger
	// touched is the time of the last action.
	touched time.Time
}

// New creates an empty session.
func New(log *zap.Logger) *Session {
	return &Session{log: log, touched: time.Now()}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Touched returns the time of the last action on the session.
func (s *Session) Touched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Validate parses raw. On success it becomes the session's equation and
// clears the last plot; on failure the previous equation is kept.
func (s *Session) Validate(raw string) (*implicit.Expr, error) {
	ex, err := implicit.ParseEquation(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	if err != nil {
		s.log.Info("equation rejected", zap.String("equation", raw), zap.Error(err))
		return nil, err
	}
	s.log.Info("equation accepted", zap.String("equation", raw), zap.Stringer("expr", ex))
	s.state = State{Equation: raw, Expr: ex, Valid: true}
	s.prog = ex.Compile()
	return ex, nil
}

// Program returns the compiled form of the session's equation.
func (s *Session) Program() (*implicit.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Valid {
		return nil, ErrNotValidated
	}
	return s.prog, nil
}

// renderPlot is replaced in tests.
var renderPlot = plot.Render

// Plot renders the session's equation and records the result as the last
// plot. A failed render leaves the last plot unchanged, as does one whose
// equation was replaced while it rendered.
func (s *Session) Plot(d plot.Domain, resolution int, t float64, levels []float64) (*plot.Plot, error) {
	p, err := s.Program()
	if err != nil {
		return nil, err
	}
	g, err := plot.NewGrid(d, resolution)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	r, err := renderPlot(p, g, t, levels)
	elapsed := time.Since(start)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	if err != nil {
		s.log.Warn("plot failed", zap.Float64("t", t), zap.Error(err))
		return nil, err
	}
	s.log.Debug("plotted",
		zap.Float64("t", t),
		zap.Int("resolution", resolution),
		zap.Int("lines", len(r.Zero)),
		zap.Duration("elapsed", elapsed),
	)
	if s.prog != p {
		s.log.Info("equation changed during plot, not recording it", zap.Float64("t", t))
		return r, nil
	}
	s.state.LastPlot = r
	s.state.T = t
	return r, nil
}

// Export writes the primary zero polyline of the last plot as CSV and returns
// the suggested file name.
func (s *Session) Export(w io.Writer) (string, error) {
	s.mu.Lock()
	p, t := s.state.LastPlot, s.state.T
	s.mu.Unlock()
	if p == nil || p.NoCurve() {
		return "", ErrNothingToExport
	}
	if err := plot.WriteCSV(w, p.Primary()); err != nil {
		return "", err
	}
	return plot.ExportName(t), nil
}

// Reset clears the session.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.prog = nil
	s.touched = time.Now()
}
