package render

import (
	"os"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/implicit"
	"github.com/zephyrtronium/implicit/plot"
)

func circle(t *testing.T, levels []float64) *plot.Plot {
	t.Helper()
	ex, err := implicit.ParseEquation("x^2 + y^2 = 25")
	require.NoError(t, err)
	g, err := plot.NewGrid(plot.DefaultDomain, 200)
	require.NoError(t, err)
	p, err := plot.Render(ex.Compile(), g, 0, levels)
	require.NoError(t, err)
	return p
}

func TestFit(t *testing.T) {
	cases := []struct {
		name       string
		d          plot.Domain
		maxW, maxH int
		w, h       int
	}{
		{"square", plot.DefaultDomain, 80, 40, 80, 40},
		{"square short", plot.DefaultDomain, 80, 20, 40, 20},
		{"tall", plot.Domain{XMin: 0, XMax: 1, YMin: 0, YMax: 2}, 80, 40, 40, 40},
		{"wide", plot.Domain{XMin: 0, XMax: 4, YMin: 0, YMax: 1}, 80, 40, 80, 10},
		{"degenerate", plot.Domain{XMin: 0, XMax: 1e6, YMin: 0, YMax: 1}, 80, 40, 80, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, h := Fit(c.d, c.maxW, c.maxH)
			assert.Equal(t, c.w, w)
			assert.Equal(t, c.h, h)
		})
	}
}

func TestNearest(t *testing.T) {
	assert.Equal(t, 0, nearest(-1, -1, 1, 5))
	assert.Equal(t, 4, nearest(1, -1, 1, 5))
	assert.Equal(t, 2, nearest(0.1, -1, 1, 5))
	assert.Equal(t, 0, nearest(-3, -1, 1, 5))
	assert.Equal(t, 4, nearest(3, -1, 1, 5))
	assert.Equal(t, 0, nearest(0.5, 0, 1, 1))
}

func TestDrawAscii(t *testing.T) {
	c := NewCanvas(40, 20, termenv.Ascii)
	out := c.Draw(circle(t, nil))
	assert.NotContains(t, out, "\x1b[")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 20)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 40)
	}
	// The y axis is column 20 and the x axis is row 10.
	assert.Equal(t, byte('+'), lines[10][20])
	assert.Equal(t, byte('|'), lines[0][20])
	assert.Equal(t, byte(' '), lines[0][0])
	// Inside the circle the relation is negative.
	assert.Equal(t, byte('.'), lines[7][22])
	assert.Contains(t, out, "#")
	// The curve reaches x = ±5, columns 10 and 30.
	assert.Contains(t, []byte{lines[10][9], lines[10][10]}, byte('#'))
	assert.Contains(t, []byte{lines[10][29], lines[10][30]}, byte('#'))
}

func TestDrawContext(t *testing.T) {
	p := circle(t, plot.StaticLevels)
	c := NewCanvas(40, 20, termenv.Ascii)
	assert.Contains(t, c.Draw(p), ":")
	c.Context = false
	assert.NotContains(t, c.Draw(p), ":")
}

func TestDrawColor(t *testing.T) {
	c := NewCanvas(40, 20, termenv.TrueColor)
	out := c.Draw(circle(t, nil))
	assert.Contains(t, out, "\x1b[")
	assert.Len(t, strings.Split(out, "\n"), 20)
}

func TestStatus(t *testing.T) {
	s := Status(circle(t, nil), termenv.Ascii)
	assert.Contains(t, s, "t = 0.00")
	assert.Contains(t, s, "points")
	assert.Contains(t, s, "x in [-5.00, 5.00]")

	ex, err := implicit.ParseEquation("x^2 + y^2 + 1")
	require.NoError(t, err)
	g, err := plot.NewGrid(plot.DefaultDomain, 100)
	require.NoError(t, err)
	p, err := plot.Render(ex.Compile(), g, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "t = 2.00: no curve", Status(p, termenv.Ascii))
}

func TestSizeFallback(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	w, h := Size(f, 72, 30)
	assert.Equal(t, 72, w)
	assert.Equal(t, 30, h)
	assert.Equal(t, termenv.Ascii, Profile(f, "auto"))
	assert.Equal(t, termenv.Ascii, Profile(f, "never"))
	assert.NotEqual(t, termenv.Ascii, Profile(f, "always"))
}

func TestExamplesParse(t *testing.T) {
	for _, e := range Examples {
		_, err := implicit.ParseEquation(e.Equation)
		assert.NoError(t, err, "%s: %s", e.Name, e.Equation)
	}
}

func TestGuide(t *testing.T) {
	md := GuideMarkdown()
	for _, e := range Examples {
		assert.Contains(t, md, e.Equation)
	}
	out, err := Guide("notty", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Implicit curves")
	assert.Contains(t, out, "Lemniscate")
}
