package axis

import (
	"fmt"
	"time"
)

// Interval is a coordinate range query: either the whole axis or a bounded
// pair of endpoints with an optional indicator, cycle and tolerance.
// Endpoints may be given in either order.
type Interval struct {
	full    bool
	x, y    float64
	t0, t1  time.Time
	timed   bool
	ind     Indicator
	cycle   float64
	epsilon float64
}

// Full selects the whole axis
func Full() Interval {
	return Interval{full: true}
}

// Between selects coordinates between x and y with the "ccn" indicator
func Between(x, y float64) Interval {
	return Interval{x: x, y: y}
}

// BetweenTimes selects a range on a time axis. The endpoints are converted
// with the axis TimeConverter when the query runs.
func BetweenTimes(t0, t1 time.Time) Interval {
	return Interval{t0: t0, t1: t1, timed: true}
}

func (iv Interval) WithIndicator(ind Indicator) Interval {
	iv.ind = ind
	return iv
}

// WithCycle overrides the period used to wrap the query. A positive cycle
// makes the query wrap even on an axis that is not declared circular.
func (iv Interval) WithCycle(cycle float64) Interval {
	iv.cycle = cycle
	return iv
}

// WithEpsilon overrides the default comparison tolerance
func (iv Interval) WithEpsilon(eps float64) Interval {
	iv.epsilon = eps
	return iv
}

func (iv Interval) IsFull() bool { return iv.full }

func (iv Interval) Indicator() Indicator { return iv.ind }

// Endpoints returns the numeric endpoints in the order they were given.
// Time intervals report zeros until resolved.
func (iv Interval) Endpoints() (x, y float64) { return iv.x, iv.y }

func (iv Interval) String() string {
	switch {
	case iv.full:
		return "(:)"
	case iv.timed:
		return fmt.Sprintf("(%s, %s, %s)", iv.t0.Format(time.RFC3339), iv.t1.Format(time.RFC3339), iv.ind)
	}
	return fmt.Sprintf("(%g, %g, %s)", iv.x, iv.y, iv.ind)
}

// TimeConverter maps time values to numeric coordinates on a time axis,
// typically by applying the axis units and calendar
type TimeConverter interface {
	AxisValue(t time.Time) (float64, error)
}

// TimeConverterFunc adapts a function to TimeConverter
type TimeConverterFunc func(t time.Time) (float64, error)

func (f TimeConverterFunc) AxisValue(t time.Time) (float64, error) { return f(t) }

// resolve returns iv with time endpoints replaced by axis coordinates
func (iv Interval) resolve(a *Axis) (Interval, error) {
	if !iv.timed {
		return iv, nil
	}
	if a.Role() != RoleTime || a.timeConv == nil {
		return iv, fmt.Errorf("%w: axis %q", ErrNotTimeAxis, a.id)
	}
	x, err := a.timeConv.AxisValue(iv.t0)
	if err != nil {
		return iv, fmt.Errorf("converting %s: %w", iv.t0, err)
	}
	y, err := a.timeConv.AxisValue(iv.t1)
	if err != nil {
		return iv, fmt.Errorf("converting %s: %w", iv.t1, err)
	}
	iv.x, iv.y, iv.timed = x, y, false
	return iv, nil
}
