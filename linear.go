package axis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// defaultEpsilonScale is the tolerance, as a fraction of the smallest node
// gap, MapLinear applies when called without one
const defaultEpsilonScale = 1e-5

// IndexRange is a half-open range of axis indices [Start, Stop)
type IndexRange struct {
	Start int
	Stop  int
}

func (r IndexRange) Len() int { return r.Stop - r.Start }

// MapLinear finds the indices of values, a monotonic coordinate vector, that
// match the interval between x and y under ind. It never wraps. bounds holds
// one cell per value and is only consulted for the non-node modes; nil
// bounds are derived from node midpoints, and any other length fails with
// ErrInvalidBounds. eps <= 0 selects a tolerance of 1e-5 of the smallest node
// gap.
//
// In Bounds mode each cell owns its lower edge but not its upper one (the
// last cell owns both), so a point on a shared edge matches exactly one
// cell. Subset mode treats cells as closed.
func MapLinear(values []float64, bounds [][2]float64, x, y float64, ind Indicator, eps float64) (IndexRange, bool, error) {
	n := len(values)
	if bounds != nil && len(bounds) != n {
		return IndexRange{}, false, fmt.Errorf("%w: %d cells for %d values", ErrInvalidBounds, len(bounds), n)
	}
	if n == 0 {
		return IndexRange{}, false, nil
	}
	if x > y {
		x, y = y, x
		ind = ind.swapped()
	}
	// a single point with an open end is the empty set
	if x == y && (ind.Left == Open || ind.Right == Open) {
		return IndexRange{}, false, nil
	}

	desc := n > 1 && values[0] > values[n-1]
	w := values
	if desc {
		w = reversed(values)
	}
	var cells [][2]float64
	if ind.Mode != Node {
		if bounds == nil {
			bounds = MidpointBounds(values, 1.0)
		}
		cells = ascendingCells(bounds, desc)
	}
	if eps <= 0 {
		eps = defaultEpsilon(w, cells, defaultEpsilonScale)
	}

	m := &matcher{w: w, cells: cells, x: x, y: y, ind: ind, eps: eps}
	s, e, ok := m.resolve()
	if !ok {
		return IndexRange{}, false, nil
	}
	if desc {
		return IndexRange{Start: n - 1 - e, Stop: n - s}, true, nil
	}
	return IndexRange{Start: s, Stop: e + 1}, true, nil
}

// matcher holds one ascending working copy of an axis and a sorted query
type matcher struct {
	w     []float64
	cells [][2]float64
	x, y  float64
	ind   Indicator
	eps   float64
}

// resolve returns the inclusive first and last matching indices
func (m *matcher) resolve() (int, int, bool) {
	n := len(m.w)
	if m.ind.Mode == Node {
		if m.y < m.w[0]-m.eps || m.x > m.w[n-1]+m.eps {
			return 0, 0, false
		}
	} else if m.y < m.cells[0][0]-m.eps || m.x > m.cells[n-1][1]+m.eps {
		return 0, 0, false
	}

	switch m.ind.Mode {
	case Bounds:
		return m.span(Bounds)
	case Subset:
		return m.span(Subset)
	case NodeExtended:
		return m.extended()
	}
	return m.span(Node)
}

// extended pads a node match by one index on each side whose endpoint falls
// strictly between nodes. When no node matches it starts from the cells the
// interval touches instead.
func (m *matcher) extended() (int, int, bool) {
	n := len(m.w)
	s, e, ok := m.span(Node)
	if !ok {
		if s, e, ok = m.span(Bounds); !ok {
			return 0, 0, false
		}
	}
	if s > 0 && m.w[s] > m.x+m.eps {
		s--
	}
	if e < n-1 && m.w[e] < m.y-m.eps {
		e++
	}
	return s, e, true
}

// span locates the first index satisfying the lower-endpoint test and the
// last satisfying the upper-endpoint test. Both tests are monotonic in the
// index, so a located seed only ever needs nudging by a step or two.
func (m *matcher) span(mode Mode) (int, int, bool) {
	n := len(m.w)
	lower, upper := m.tests(mode)
	lowerKeys, upperKeys := m.keys(mode)

	s := Locate(lowerKeys, m.x)
	for s > 0 && lower(s-1) {
		s--
	}
	for s < n && !lower(s) {
		s++
	}

	e := Locate(upperKeys, m.y) - 1
	for e < n-1 && upper(e+1) {
		e++
	}
	for e >= 0 && !upper(e) {
		e--
	}

	if s >= n || e < 0 || s > e {
		return 0, 0, false
	}
	return s, e, true
}

func (m *matcher) keys(mode Mode) (lower, upper []float64) {
	switch mode {
	case Bounds:
		return column(m.cells, 1), column(m.cells, 0)
	case Subset:
		return column(m.cells, 0), column(m.cells, 1)
	}
	return m.w, m.w
}

// tests returns the predicates an index must pass against the lower and
// upper query endpoints. Values within eps of an endpoint count as equal to
// it, which closed endpoints accept and open endpoints reject.
func (m *matcher) tests(mode Mode) (lower, upper func(k int) bool) {
	x, y, eps := m.x, m.y, m.eps
	leftOpen, rightOpen := m.ind.Left == Open, m.ind.Right == Open
	last := len(m.w) - 1

	atLeast := func(v float64) bool {
		if leftOpen {
			return v > x+eps
		}
		return v >= x-eps
	}
	atMost := func(v float64) bool {
		if rightOpen {
			return v < y-eps
		}
		return v <= y+eps
	}

	switch mode {
	case Bounds:
		lower = func(k int) bool {
			hi := m.cells[k][1]
			if k == last && !leftOpen {
				return hi >= x-eps
			}
			return hi > x+eps
		}
		upper = func(k int) bool { return atMost(m.cells[k][0]) }
	case Subset:
		lower = func(k int) bool { return atLeast(m.cells[k][0]) }
		upper = func(k int) bool { return atMost(m.cells[k][1]) }
	default:
		lower = func(k int) bool { return atLeast(m.w[k]) }
		upper = func(k int) bool { return atMost(m.w[k]) }
	}
	return lower, upper
}

// defaultEpsilon scales the smallest gap between neighbouring values, or the
// cell width of a single-valued axis
func defaultEpsilon(w []float64, cells [][2]float64, scale float64) float64 {
	if len(w) < 2 {
		if len(cells) == 1 {
			return scale * (cells[0][1] - cells[0][0])
		}
		return 0
	}
	gaps := make([]float64, len(w)-1)
	for i := range gaps {
		gaps[i] = math.Abs(w[i+1] - w[i])
	}
	return scale * floats.Min(gaps)
}

func reversed(v []float64) []float64 {
	out := append([]float64(nil), v...)
	floats.Reverse(out)
	return out
}

// ascendingCells returns low-high cells in ascending axis order
func ascendingCells(bounds [][2]float64, desc bool) [][2]float64 {
	n := len(bounds)
	out := make([][2]float64, n)
	for i, c := range bounds {
		if c[0] > c[1] {
			c[0], c[1] = c[1], c[0]
		}
		if desc {
			out[n-1-i] = c
		} else {
			out[i] = c
		}
	}
	return out
}

func column(cells [][2]float64, j int) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = c[j]
	}
	return out
}
