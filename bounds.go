package axis

import (
	"fmt"
	"math"
)

// MidpointBounds derives cell bounds from node positions. Interior edges sit
// halfway between neighbouring values and the two outer edges are linear
// extrapolations. A single value gets a cell of the given width centred on
// it. Each returned pair is [low, high].
func MidpointBounds(values []float64, width float64) [][2]float64 {
	return edgesToPairs(midpointEdges(values, width))
}

func midpointEdges(values []float64, width float64) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	edges := make([]float64, n+1)
	if n == 1 {
		edges[0] = values[0] - width/2
		edges[1] = values[0] + width/2
		return edges
	}
	edges[0] = 1.5*values[0] - 0.5*values[1]
	for i := 1; i < n; i++ {
		edges[i] = (values[i-1] + values[i]) / 2
	}
	edges[n] = 1.5*values[n-1] - 0.5*values[n-2]
	return edges
}

func edgesToPairs(edges []float64) [][2]float64 {
	if len(edges) < 2 {
		return nil
	}
	pairs := make([][2]float64, len(edges)-1)
	for i := range pairs {
		lo, hi := edges[i], edges[i+1]
		if lo > hi {
			lo, hi = hi, lo
		}
		pairs[i] = [2]float64{lo, hi}
	}
	return pairs
}

// edgesToBounds converts N+1 edges into N cells
func edgesToBounds(edges []float64, n int) ([][2]float64, error) {
	if len(edges) != n+1 {
		return nil, fmt.Errorf("%w: %d edges for %d values", ErrInvalidBounds, len(edges), n)
	}
	pairs := make([][2]float64, n)
	for i := range pairs {
		pairs[i] = [2]float64{edges[i], edges[i+1]}
	}
	return pairs, nil
}

// ParseBounds reads a flat bounds array that is either an (N,2) array in
// row-major order or N+1 cell edges
func ParseBounds(flat []float64, n int) ([][2]float64, error) {
	switch len(flat) {
	case 2 * n:
		pairs := make([][2]float64, n)
		for i := range pairs {
			pairs[i] = [2]float64{flat[2*i], flat[2*i+1]}
		}
		return pairs, nil
	case n + 1:
		return edgesToBounds(flat, n)
	}
	return nil, fmt.Errorf("%w: %d elements is neither (%d,2) nor (%d,)", ErrInvalidBounds, len(flat), n, n+1)
}

// GenGenericBounds derives bounds from the axis values. Longitude axes in
// degrees whose span lands within tolerance of a full circle are closed to
// exactly 360. Latitude axes are clamped to [-90, 90] when AutoBounds is set.
func (a *Axis) GenGenericBounds(width float64) [][2]float64 {
	edges := midpointEdges(a.values, width)
	n := len(a.values)

	if a.role == RoleLongitude && n > 1 && isAngularUnits(attrString(a.attrs, "units")) {
		closeLongitude(edges, math.Abs(a.values[1]-a.values[0]), a.cfg.LongitudeTolerance)
	}
	if a.role == RoleLatitude && a.cfg.AutoBounds {
		for _, i := range []int{0, 1, n - 1, n} {
			edges[i] = math.Max(-90, math.Min(90, edges[i]))
		}
	}
	return edgesToPairs(edges)
}

// closeLongitude snaps the outer edges so they span exactly one circle when
// they already nearly do, and rounds them to whole degrees when they straddle
// zero and sit within 0.01 of an integer
func closeLongitude(edges []float64, cell, tol float64) {
	n := len(edges) - 1
	span := edges[n] - edges[0]
	if math.Abs(math.Abs(span)-defaultLongitudePeriod) >= math.Min(tol, 0.1*cell) {
		return
	}
	edges[n] = edges[0] + math.Copysign(defaultLongitudePeriod, span)

	nearInt := func(x float64) bool { return math.Abs(x-math.Round(x)) < 0.01 }
	if (nearInt(edges[0]) || nearInt(edges[n])) && edges[0]*edges[n] < 0 {
		edges[0] = math.Round(edges[0])
		edges[n] = math.Round(edges[n])
	}
}

// CellBounds returns the explicit bounds, or bounds generated with unit width
// for singleton axes
func (a *Axis) CellBounds() [][2]float64 {
	if a.bounds != nil {
		return a.Bounds()
	}
	return a.GenGenericBounds(1.0)
}
