// Package render draws plots as text for terminals.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/muesli/termenv"

	"github.com/zephyrtronium/implicit/plot"
)

// Glyphs. Shading marks the sign of the field; the zero contour is drawn over
// everything else.
const (
	glyphNeg     = '.'
	glyphPos     = ' '
	glyphContext = ':'
	glyphZero    = '#'
	glyphAxisX   = '-'
	glyphAxisY   = '|'
	glyphOrigin  = '+'
)

// Colours, roughly the ends of a red-blue diverging map.
const (
	colorNeg     = "#4393c3"
	colorPos     = "#d6604d"
	colorContext = "#8a8a8a"
	colorZero    = "#1b9e77"
	colorAxis    = "#bababa"
)

// Canvas rasterizes plots onto a grid of character cells.
type Canvas struct {
	// W and H are the size in cells.
	W, H int
	// Profile selects the colour escapes. Ascii draws plain text.
	Profile termenv.Profile
	// Context enables drawing context contours.
	Context bool

	cells  []rune
	colors []string
	d      plot.Domain
}

// NewCanvas creates a canvas of w by h cells.
func NewCanvas(w, h int, profile termenv.Profile) *Canvas {
	return &Canvas{W: max(w, 1), H: max(h, 1), Profile: profile, Context: true}
}

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2

// Fit returns the largest canvas within maxW by maxH cells whose shape matches
// the domain.
func Fit(d plot.Domain, maxW, maxH int) (w, h int) {
	ratio := (d.YMax - d.YMin) / (d.XMax - d.XMin) / cellAspect
	w = maxW
	h = int(math.Round(float64(w) * ratio))
	if h > maxH {
		h = maxH
		w = int(math.Round(float64(h) / ratio))
	}
	return max(w, 1), max(h, 1)
}

// Draw renders a plot and returns it as lines of text.
func (c *Canvas) Draw(p *plot.Plot) string {
	c.d = p.Field.Grid.Domain
	c.cells = make([]rune, c.W*c.H)
	c.colors = make([]string, c.W*c.H)
	c.shade(p.Field)
	c.axes()
	if c.Context {
		for _, cs := range p.Context {
			for _, l := range cs.Lines {
				c.line(l, glyphContext, colorContext)
			}
		}
	}
	for _, l := range p.Zero {
		c.line(l, glyphZero, colorZero)
	}
	return c.String()
}

// shade marks each cell by the sign of the nearest sample.
func (c *Canvas) shade(f *plot.Field) {
	g := f.Grid
	for r := range c.H {
		y := c.d.YMax - (float64(r)+0.5)/float64(c.H)*(c.d.YMax-c.d.YMin)
		j := nearest(y, c.d.YMin, c.d.YMax, g.Rows)
		for col := range c.W {
			x := c.d.XMin + (float64(col)+0.5)/float64(c.W)*(c.d.XMax-c.d.XMin)
			i := nearest(x, c.d.XMin, c.d.XMax, g.Cols)
			k := r*c.W + col
			switch v := f.At(i, j); {
			case v < 0:
				c.cells[k], c.colors[k] = glyphNeg, colorNeg
			default:
				// Positive, zero, and undefined points are left blank.
				c.cells[k], c.colors[k] = glyphPos, colorPos
			}
		}
	}
}

// nearest is the index of the sample nearest to v among n samples spanning
// [lo, hi].
func nearest(v, lo, hi float64, n int) int {
	if n <= 1 {
		return 0
	}
	k := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	return min(max(k, 0), n-1)
}

// cell maps a point to canvas coordinates. ok is false outside the canvas.
func (c *Canvas) cell(q plot.Point) (col, row int, ok bool) {
	fc := (q.X - c.d.XMin) / (c.d.XMax - c.d.XMin) * float64(c.W)
	fr := (c.d.YMax - q.Y) / (c.d.YMax - c.d.YMin) * float64(c.H)
	col = min(int(math.Floor(fc)), c.W-1)
	row = min(int(math.Floor(fr)), c.H-1)
	return col, row, col >= 0 && row >= 0 && fc <= float64(c.W) && fr <= float64(c.H)
}

func (c *Canvas) set(col, row int, g rune, color string) {
	if col < 0 || row < 0 || col >= c.W || row >= c.H {
		return
	}
	k := row*c.W + col
	c.cells[k], c.colors[k] = g, color
}

func (c *Canvas) axes() {
	col, _, okx := c.cell(plot.Point{X: 0, Y: c.d.YMax})
	_, row, oky := c.cell(plot.Point{X: c.d.XMin, Y: 0})
	if okx {
		for r := range c.H {
			c.set(col, r, glyphAxisY, colorAxis)
		}
	}
	if oky {
		for x := range c.W {
			c.set(x, row, glyphAxisX, colorAxis)
		}
	}
	if okx && oky {
		c.set(col, row, glyphOrigin, colorAxis)
	}
}

// line draws a polyline, filling the cells between consecutive points.
func (c *Canvas) line(l plot.Polyline, g rune, color string) {
	for k := range l {
		c0, r0, ok0 := c.cell(l[k])
		if ok0 {
			c.set(c0, r0, g, color)
		}
		if k+1 == len(l) {
			break
		}
		c1, r1, ok1 := c.cell(l[k+1])
		if !ok0 || !ok1 {
			continue
		}
		n := max(abs(c1-c0), abs(r1-r0))
		for s := 1; s < n; s++ {
			f := float64(s) / float64(n)
			col := c0 + int(math.Round(f*float64(c1-c0)))
			row := r0 + int(math.Round(f*float64(r1-r0)))
			c.set(col, row, g, color)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// String returns the last drawing.
func (c *Canvas) String() string {
	var b strings.Builder
	for r := range c.H {
		if r > 0 {
			b.WriteByte('\n')
		}
		row := c.cells[r*c.W : (r+1)*c.W]
		if c.Profile == termenv.Ascii {
			b.WriteString(strings.TrimRight(string(row), " "))
			continue
		}
		// Group runs of one colour into a single escape sequence.
		for i := 0; i < len(row); {
			j := i + 1
			for j < len(row) && c.colors[r*c.W+j] == c.colors[r*c.W+i] {
				j++
			}
			s := c.Profile.String(string(row[i:j])).Foreground(c.Profile.Color(c.colors[r*c.W+i]))
			if c.colors[r*c.W+i] == colorZero {
				s = s.Bold()
			}
			b.WriteString(s.String())
			i = j
		}
	}
	return b.String()
}

// Status formats a one-line summary of a frame.
func Status(p *plot.Plot, profile termenv.Profile) string {
	if p.NoCurve() {
		return profile.String(fmt.Sprintf("t = %.2f: no curve", p.Field.T)).Foreground(profile.Color("#fdae61")).String()
	}
	m := plot.Summarize(p.Primary())
	s := fmt.Sprintf("t = %.2f: %d points, x in [%.2f, %.2f], y in [%.2f, %.2f]",
		p.Field.T, m.Points, m.XMin, m.XMax, m.YMin, m.YMax)
	if len(p.Zero) > 1 {
		s += fmt.Sprintf(" (%d pieces)", len(p.Zero))
	}
	if p.Field.Complex > 0 {
		s += fmt.Sprintf(", %d complex values reduced to real parts", p.Field.Complex)
	}
	return profile.String(s).Foreground(profile.Color(colorZero)).String()
}
