package axis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Slice is a strided index range as produced by MapIntervalExt. With Step 1
// it is the half-open range [Start, Stop). With Step -1 it runs from Start
// down to, but excluding, Stop; a Stop of -1 means the run ends at index 0.
// On circular axes Stop may exceed Len: the range continues from index 0.
type Slice struct {
	Start int
	Stop  int
	Step  int
}

// MapIntervalExt maps iv onto the axis. Step is -1 when the interval is given
// in the opposite order to the axis values. Circular axes (or queries with a
// cycle) that are not contained in one period are resolved by extending the
// axis across as many periods as needed; the result then starts inside
// [0, Len) and may stop beyond Len. ok is false when nothing intersects.
func (a *Axis) MapIntervalExt(iv Interval) (Slice, bool, error) {
	n := len(a.values)
	if iv.full {
		return Slice{Start: 0, Stop: n, Step: 1}, true, nil
	}
	iv, err := iv.resolve(a)
	if err != nil {
		return Slice{}, false, err
	}

	x, y, ind := iv.x, iv.y, iv.ind
	desc := a.Descending()
	step := 1
	if (x > y && !desc) || (x < y && desc) {
		step = -1
	}
	if x > y {
		x, y = y, x
		ind = ind.swapped()
	}

	eps := iv.epsilon
	if eps <= 0 {
		eps = a.epsilon()
	}

	period, circular := a.period, a.circular
	if iv.cycle > 0 {
		period, circular = iv.cycle, true
	}

	var (
		r  IndexRange
		ok bool
	)
	if circular && !a.contains(x, y, ind.Mode, eps) {
		if r, ok, err = a.mapWrapped(x, y, ind, eps, period); err != nil {
			return Slice{}, false, err
		}
	} else {
		if r, ok, err = MapLinear(a.values, a.cellsFor(ind.Mode), x, y, ind, eps); err != nil {
			return Slice{}, false, err
		}
	}
	if !ok {
		return Slice{}, false, nil
	}

	if step < 0 {
		return Slice{Start: r.Stop - 1, Stop: r.Start - 1, Step: -1}, true, nil
	}
	return Slice{Start: r.Start, Stop: r.Stop, Step: 1}, true, nil
}

// MapInterval is MapIntervalExt reduced to an ascending half-open range that
// covers at most one full circuit of the axis
func (a *Axis) MapInterval(iv Interval) (IndexRange, bool, error) {
	s, ok, err := a.MapIntervalExt(iv)
	if err != nil || !ok {
		return IndexRange{}, ok, err
	}
	r := IndexRange{Start: s.Start, Stop: s.Stop}
	if s.Step < 0 {
		r = IndexRange{Start: s.Stop + 1, Stop: s.Start + 1}
	}
	if n := len(a.values); r.Stop > r.Start+n {
		r.Stop = r.Start + n
	}
	return r, true, nil
}

// mapWrapped resolves a query against copies of the axis laid end to end,
// one period apart, then folds the result back so it starts in [0, n)
func (a *Axis) mapWrapped(x, y float64, ind Indicator, eps, period float64) (IndexRange, bool, error) {
	n := len(a.values)
	desc := a.Descending()

	w := a.values
	if desc {
		w = reversed(w)
	}
	var cells [][2]float64
	if ind.Mode != Node {
		cells = ascendingCells(a.CellBounds(), desc)
	}

	shift := math.Floor((x - w[0]) / period)
	span := (y - x) / period
	if need := math.Ceil(span) + 1 + math.Abs(shift); need > float64(a.cfg.MaxWrapCycles) {
		return IndexRange{}, false, fmt.Errorf("%w: interval (%g, %g) on axis %q needs %g periods of %g, limit is %d",
			ErrExcessiveWrapCycles, x, y, a.id, need, period, a.cfg.MaxWrapCycles)
	}

	// one extra copy so the upper endpoint never falls in the gap past the
	// last extended node
	copies := int(math.Ceil(span)) + 2
	ext, extCells := extend(w, cells, copies, period)

	xs, ys := x-shift*period, y-shift*period
	a.log.Debug("extending circular axis",
		"axis", a.id, "copies", copies, "shift", shift, "lo", xs, "hi", ys)

	r, ok, err := MapLinear(ext, extCells, xs, ys, ind, eps)
	if err != nil || !ok {
		return IndexRange{}, false, err
	}
	if desc {
		// ascending working index k is original index n-1-k
		r = IndexRange{Start: n - r.Stop, Stop: n - r.Start}
	}
	c := floorDiv(r.Start, n)
	return IndexRange{Start: r.Start - c*n, Stop: r.Stop - c*n}, true, nil
}

// extend concatenates copies of an ascending axis, each shifted one period
// above the last
func extend(w []float64, cells [][2]float64, copies int, period float64) ([]float64, [][2]float64) {
	n := len(w)
	ext := make([]float64, 0, n*copies)
	var extCells [][2]float64
	if cells != nil {
		extCells = make([][2]float64, 0, n*copies)
	}
	for c := 0; c < copies; c++ {
		off := float64(c) * period
		seg := append([]float64(nil), w...)
		floats.AddConst(off, seg)
		ext = append(ext, seg...)
		for _, cell := range cells {
			extCells = append(extCells, [2]float64{cell[0] + off, cell[1] + off})
		}
	}
	return ext, extCells
}

// contains reports whether [x, y] lies within one period of the axis: the
// node range in node mode, the cell range otherwise
func (a *Axis) contains(x, y float64, mode Mode, eps float64) bool {
	n := len(a.values)
	lo, hi := a.values[0], a.values[n-1]
	if mode != Node {
		cells := ascendingCells(a.CellBounds(), a.Descending())
		lo, hi = cells[0][0], cells[n-1][1]
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return x >= lo-eps && y <= hi+eps
}

func (a *Axis) cellsFor(mode Mode) [][2]float64 {
	if mode == Node {
		return nil
	}
	return a.CellBounds()
}

// epsilon is the axis default comparison tolerance
func (a *Axis) epsilon() float64 {
	w := a.values
	if len(w) < 2 {
		return defaultEpsilon(w, a.CellBounds(), a.cfg.EpsilonScale)
	}
	return defaultEpsilon(w, nil, a.cfg.EpsilonScale)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
