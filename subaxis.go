package axis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Piece is one contiguous run of physical indices within a possibly wrapping
// index request. Start and Stop follow the direction of Step, so a
// descending piece ending at index 0 has Stop -1. Cycle counts how many
// periods the piece sits away from the physical axis.
type Piece struct {
	Start int
	Stop  int
	Step  int
	Cycle int
}

// Len is the number of indices the piece selects
func (p Piece) Len() int {
	if p.Step > 0 {
		return (p.Stop - p.Start + p.Step - 1) / p.Step
	}
	return (p.Start - p.Stop - p.Step - 1) / -p.Step
}

// Indices lists the physical indices in request order
func (p Piece) Indices() []int {
	idx := make([]int, 0, p.Len())
	for i := p.Start; (p.Step > 0 && i < p.Stop) || (p.Step < 0 && i > p.Stop); i += p.Step {
		idx = append(idx, i)
	}
	return idx
}

// SplitRange breaks the request start, start+step, ... (stopping before
// stop) on an axis of length n into the fewest contiguous in-bounds pieces,
// in request order. Indices outside [0, n) land in earlier or later cycles.
// A request needing more than maxPieces pieces fails with
// ErrExcessiveWrapCycles before the rest are built; maxPieces <= 0 means no
// limit.
func SplitRange(start, stop, step, n, maxPieces int) ([]Piece, error) {
	if step == 0 {
		return nil, fmt.Errorf("slice step cannot be zero")
	}
	if n <= 0 {
		return nil, fmt.Errorf("cannot split a range over an empty axis")
	}

	remaining := rangeLen(start, stop, step)
	var pieces []Piece
	for k := start; remaining > 0; {
		if maxPieces > 0 && len(pieces) == maxPieces {
			return nil, fmt.Errorf("%w: %d:%d:%d over length %d needs more than %d pieces",
				ErrExcessiveWrapCycles, start, stop, step, n, maxPieces)
		}
		c := floorDiv(k, n)
		idx := k - c*n

		var fit int
		if step > 0 {
			fit = (n-1-idx)/step + 1
		} else {
			fit = idx/-step + 1
		}
		if uint64(fit) > remaining {
			fit = int(remaining)
		}

		last := idx + (fit-1)*step
		stopIdx := last + 1
		if step < 0 {
			stopIdx = last - 1
		}
		pieces = append(pieces, Piece{Start: idx, Stop: stopIdx, Step: step, Cycle: c})
		k += fit * step
		remaining -= uint64(fit)
	}
	return pieces, nil
}

// rangeLen counts start, start+step, ... before stop. The distance is taken
// as unsigned so requests spanning most of the int range do not overflow.
func rangeLen(start, stop, step int) uint64 {
	switch {
	case step > 0 && stop > start:
		return (uint64(stop-start)-1)/uint64(step) + 1
	case step < 0 && stop < start:
		return (uint64(start-stop)-1)/(-uint64(step)) + 1
	}
	return 0
}

// Subaxis materializes the index request start:stop:step as a new axis. When
// the request leaves [0, Len) on a circular axis and wrap is set, the
// coordinates of each further cycle are offset by one period, so the result
// stays monotonic. Fragments shorter than the source are linear. a is never
// modified.
//
// Without wrap, or on a linear axis, the request is an ordinary slice and
// must lie within [0, Len): indices outside it fail with ErrIndexOutOfRange
// rather than being clipped. A wrapping request spanning more than
// Config.MaxWrapCycles pieces fails with ErrExcessiveWrapCycles, and is
// rejected before the excess pieces are computed.
func (a *Axis) Subaxis(start, stop, step int, wrap bool) (*Axis, error) {
	n := len(a.values)
	wrapping := wrap && a.circular
	limit := a.cfg.MaxWrapCycles
	if !wrapping {
		limit = 1
	}
	pieces, err := SplitRange(start, stop, step, n, limit)
	if errors.Is(err, ErrExcessiveWrapCycles) && !wrapping {
		return nil, fmt.Errorf("%w: %d:%d:%d on axis %q of length %d", ErrIndexOutOfRange, start, stop, step, a.id, n)
	} else if err != nil {
		return nil, fmt.Errorf("axis %q: %w", a.id, err)
	}
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: %d:%d:%d selects nothing from axis %q", ErrIndexOutOfRange, start, stop, step, a.id)
	}

	wraps := false
	for _, p := range pieces {
		if p.Cycle != 0 {
			wraps = true
			break
		}
	}
	if wraps && !wrapping {
		return nil, fmt.Errorf("%w: %d:%d:%d on axis %q of length %d", ErrIndexOutOfRange, start, stop, step, a.id, n)
	}

	// later cycles continue in the direction the values run
	period := a.period
	if a.Descending() {
		period = -period
	}

	var (
		values []float64
		bounds [][2]float64
	)
	for _, p := range pieces {
		off := float64(p.Cycle) * period
		idx := p.Indices()

		seg := make([]float64, len(idx))
		for j, i := range idx {
			seg[j] = a.values[i]
		}
		if off != 0 {
			floats.AddConst(off, seg)
		}
		values = append(values, seg...)

		if a.bounds != nil {
			for _, i := range idx {
				c := a.bounds[i]
				bounds = append(bounds, [2]float64{c[0] + off, c[1] + off})
			}
		}
	}

	if wraps {
		a.log.Debug("materialized wrapped subaxis", "axis", a.id, "pieces", len(pieces), "len", len(values))
	}
	return a.derive(values, bounds, a.circular && len(values) >= n), nil
}
