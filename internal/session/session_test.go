package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zephyrtronium/implicit"
	"github.com/zephyrtronium/implicit/plot"
)

func TestValidateKeepsPrevious(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	assert.False(t, s.State().Valid)

	ex, err := s.Validate("x^2 + y^2 = 25")
	require.NoError(t, err)
	st := s.State()
	assert.True(t, st.Valid)
	assert.Equal(t, "x^2 + y^2 = 25", st.Equation)
	assert.Same(t, ex, st.Expr)

	_, err = s.Validate("x + q")
	var ie *implicit.InvalidError
	require.ErrorAs(t, err, &ie)
	st = s.State()
	assert.True(t, st.Valid)
	assert.Equal(t, "x^2 + y^2 = 25", st.Equation)

	_, err = s.Validate("   ")
	assert.ErrorIs(t, err, implicit.ErrEmpty)
	assert.True(t, s.State().Valid)
}

func TestPlotRequiresValidation(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	p, err := s.Plot(plot.DefaultDomain, 100, 0, nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrNotValidated)
}

func TestPlotAndExport(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	_, err := s.Export(&strings.Builder{})
	assert.ErrorIs(t, err, ErrNothingToExport)

	_, err = s.Validate("x^2 + y^2 - t^2")
	require.NoError(t, err)
	p, err := s.Plot(plot.DefaultDomain, 100, 5, plot.StaticLevels)
	require.NoError(t, err)
	require.False(t, p.NoCurve())
	st := s.State()
	assert.Same(t, p, st.LastPlot)
	assert.Equal(t, 5.0, st.T)

	var b strings.Builder
	name, err := s.Export(&b)
	require.NoError(t, err)
	assert.Equal(t, "curve_t=5.00.csv", name)
	got, err := plot.ReadCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, p.Primary(), got)
}

func TestPlotErrorsKeepLastPlot(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	_, err := s.Validate("x - t")
	require.NoError(t, err)
	first, err := s.Plot(plot.DefaultDomain, 100, 1, nil)
	require.NoError(t, err)

	_, err = s.Plot(plot.Domain{XMin: 1, XMax: 0, YMin: 0, YMax: 1}, 100, 2, nil)
	assert.ErrorIs(t, err, plot.ErrDomain)
	assert.Same(t, first, s.State().LastPlot)

	_, err = s.Validate("x/0 + t")
	require.NoError(t, err)
	_, err = s.Plot(plot.DefaultDomain, 100, 2, nil)
	var ee *plot.EvalError
	assert.ErrorAs(t, err, &ee)
	assert.Nil(t, s.State().LastPlot)
}

func TestExportNoCurve(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	_, err := s.Validate("x^2 + y^2 + 1")
	require.NoError(t, err)
	p, err := s.Plot(plot.DefaultDomain, 100, 0, nil)
	require.NoError(t, err)
	assert.True(t, p.NoCurve())
	_, err = s.Export(&strings.Builder{})
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestReset(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	_, err := s.Validate("x = y")
	require.NoError(t, err)
	_, err = s.Plot(plot.DefaultDomain, 100, 0, nil)
	require.NoError(t, err)
	s.Reset()
	assert.Equal(t, State{}, s.State())
	_, err = s.Program()
	assert.ErrorIs(t, err, ErrNotValidated)
}

func TestPlotDropsReplacedEquation(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	_, err := s.Validate("x^2 + y^2 = 4")
	require.NoError(t, err)
	// The equation changes while the plot renders.
	renderPlot = func(p *implicit.Program, g *plot.Grid, tv float64, levels []float64) (*plot.Plot, error) {
		_, err := s.Validate("x = 1")
		require.NoError(t, err)
		return plot.Render(p, g, tv, levels)
	}
	t.Cleanup(func() { renderPlot = plot.Render })

	p, err := s.Plot(plot.DefaultDomain, 100, 0, nil)
	require.NoError(t, err)
	assert.False(t, p.NoCurve())
	st := s.State()
	assert.Equal(t, "x = 1", st.Equation)
	assert.Nil(t, st.LastPlot)
	_, err = s.Export(&strings.Builder{})
	assert.ErrorIs(t, err, ErrNothingToExport)
}
