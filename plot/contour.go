package plot

import (
	"math"
)

// Point is a location in the plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline is a connected piece of a contour. A closed loop repeats its first
// point at the end.
type Polyline []Point

// Closed reports whether the polyline is a loop.
func (p Polyline) Closed() bool {
	return len(p) > 2 && p[0] == p[len(p)-1]
}

// ContourSet is the contour of a field at one level.
type ContourSet struct {
	Level float64    `json:"level"`
	Lines []Polyline `json:"lines"`
}

// ZeroContours extracts the zero set of the field.
func ZeroContours(f *Field) []Polyline {
	return Contours(f, 0)
}

// Contours extracts the polylines along which the field equals level using
// marching squares. A value equal to the level counts as above it. Cells with
// any non-finite corner are skipped, so undefined regions break lines rather
// than producing spurious crossings. Open polylines come first, then closed
// loops, each in the order the scan first meets them. The result is empty if
// the level is never crossed.
func Contours(f *Field, level float64) []Polyline {
	m := marcher{f: f, level: level, adj: make(map[int][]int)}
	m.scan()
	return m.join()
}

// cell edges
const (
	edgeB = iota // bottom, y = Y[j]
	edgeR        // right, x = X[i+1]
	edgeT        // top, y = Y[j+1]
	edgeL        // left, x = X[i]
)

// cellSegments gives the pairs of crossed edges for each corner case that
// does not depend on the centre. Bit 0 is the bottom-left corner, then
// counterclockwise. Saddles 5 and 10 are nil here.
var cellSegments = [16][][2]int{
	1:  {{edgeL, edgeB}},
	2:  {{edgeB, edgeR}},
	3:  {{edgeL, edgeR}},
	4:  {{edgeR, edgeT}},
	6:  {{edgeB, edgeT}},
	7:  {{edgeT, edgeL}},
	8:  {{edgeT, edgeL}},
	9:  {{edgeB, edgeT}},
	11: {{edgeR, edgeT}},
	12: {{edgeL, edgeR}},
	13: {{edgeB, edgeR}},
	14: {{edgeL, edgeB}},
}

// Saddle resolutions. When the centre is above the level, the corners below
// it are cut off; otherwise the corners above it are.
var (
	cutBLTR = [][2]int{{edgeL, edgeB}, {edgeR, edgeT}}
	cutBRTL = [][2]int{{edgeB, edgeR}, {edgeT, edgeL}}
)

type segment struct {
	a, b int
}

type marcher struct {
	f     *Field
	level float64
	segs  []segment
	// adj maps an edge key to the segments touching it. Each edge is shared
	// by at most two cells and crossed by at most one segment in each.
	adj map[int][]int
}

func finite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

func (m *marcher) scan() {
	g := m.f.Grid
	for j := 0; j+1 < g.Rows; j++ {
		for i := 0; i+1 < g.Cols; i++ {
			v0 := m.f.At(i, j)
			v1 := m.f.At(i+1, j)
			v2 := m.f.At(i+1, j+1)
			v3 := m.f.At(i, j+1)
			if !finite(v0) || !finite(v1) || !finite(v2) || !finite(v3) {
				continue
			}
			c := 0
			for b, v := range [4]float64{v0, v1, v2, v3} {
				if v >= m.level {
					c |= 1 << b
				}
			}
			segs := cellSegments[c]
			switch c {
			case 5:
				segs = cutBLTR
				if (v0+v1+v2+v3)/4 >= m.level {
					segs = cutBRTL
				}
			case 10:
				segs = cutBRTL
				if (v0+v1+v2+v3)/4 >= m.level {
					segs = cutBLTR
				}
			}
			for _, s := range segs {
				m.add(m.key(i, j, s[0]), m.key(i, j, s[1]))
			}
		}
	}
}

// key identifies a cell edge across the whole grid. Horizontal edges have even
// keys and vertical edges odd ones; each is named by its lower or left end.
func (m *marcher) key(i, j, edge int) int {
	cols := m.f.Grid.Cols
	switch edge {
	case edgeB:
		return 2 * (j*cols + i)
	case edgeR:
		return 2*(j*cols+i+1) + 1
	case edgeT:
		return 2 * ((j+1)*cols + i)
	default:
		return 2*(j*cols+i) + 1
	}
}

func (m *marcher) add(a, b int) {
	k := len(m.segs)
	m.segs = append(m.segs, segment{a, b})
	m.adj[a] = append(m.adj[a], k)
	m.adj[b] = append(m.adj[b], k)
}

// point interpolates the crossing on an edge.
func (m *marcher) point(key int) Point {
	g := m.f.Grid
	k := key / 2
	i, j := k%g.Cols, k/g.Cols
	a := m.f.At(i, j)
	if key%2 == 0 {
		s := m.frac(a, m.f.At(i+1, j))
		return Point{X: g.X[i] + s*(g.X[i+1]-g.X[i]), Y: g.Y[j]}
	}
	s := m.frac(a, m.f.At(i, j+1))
	return Point{X: g.X[i], Y: g.Y[j] + s*(g.Y[j+1]-g.Y[j])}
}

func (m *marcher) frac(a, b float64) float64 {
	if a == b {
		return 0.5
	}
	s := (m.level - a) / (b - a)
	return min(max(s, 0), 1)
}

// join links segments through shared edges into maximal polylines.
func (m *marcher) join() []Polyline {
	used := make([]bool, len(m.segs))
	var r []Polyline
	for k, s := range m.segs {
		for _, e := range [2]int{s.a, s.b} {
			if !used[k] && len(m.adj[e]) == 1 {
				r = append(r, m.trace(k, e, used))
			}
		}
	}
	for k, s := range m.segs {
		if used[k] {
			continue
		}
		p := m.trace(k, s.a, used)
		if p[0] != p[len(p)-1] {
			p = append(p, p[0])
		}
		r = append(r, p)
	}
	return r
}

// trace follows unused segments from segment k, starting at edge e.
func (m *marcher) trace(k, e int, used []bool) Polyline {
	p := Polyline{m.point(e)}
	for {
		used[k] = true
		s := m.segs[k]
		if s.a == e {
			e = s.b
		} else {
			e = s.a
		}
		if q := m.point(e); q != p[len(p)-1] {
			p = append(p, q)
		}
		next := -1
		for _, n := range m.adj[e] {
			if !used[n] {
				next = n
				break
			}
		}
		if next < 0 {
			return p
		}
		k = next
	}
}
