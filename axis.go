// Package axis maps physical coordinate intervals on one-dimensional ordered
// axes (latitude, longitude, level, time) onto half-open index ranges, and
// materializes the index ranges back into coordinate fragments. Circular axes
// such as longitude are resolved by wrapping queries around the array
// boundary as many times as needed, up to a configured cap.
package axis

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// defaultLongitudePeriod is the modulo assumed for circular longitude axes
// without an explicit one
const defaultLongitudePeriod = 360.0

// Axis is an immutable ordered coordinate dimension. Values are strictly
// monotonic in one direction. Bounds, when present, hold one [low, high] cell
// per value.
type Axis struct {
	id       string
	values   []float64
	bounds   [][2]float64
	circular bool
	period   float64
	role     Role
	attrs    map[string]interface{}
	cfg      Config
	log      *slog.Logger
	timeConv TimeConverter
}

type options struct {
	bounds   [][2]float64
	edges    []float64
	period   float64
	circular bool
	linear   bool
	attrs    map[string]interface{}
	role     *Role
	cache    *RoleCache
	cfg      *Config
	log      *slog.Logger
	timeConv TimeConverter
}

// Option configures NewAxis
type Option func(o *options)

// WithBounds supplies one cell per value. Pairs may be stored low-high or
// high-low; the orientation of the first pair decides for the whole array.
func WithBounds(b [][2]float64) Option {
	return func(o *options) { o.bounds = b }
}

// WithBoundsEdges supplies N+1 cell edges for N values
func WithBoundsEdges(edges []float64) Option {
	return func(o *options) { o.edges = edges }
}

// WithCircular declares the axis as wrapping every period coordinate units
func WithCircular(period float64) Option {
	return func(o *options) {
		o.circular = true
		o.period = period
	}
}

// WithLinear declares the axis as never wrapping, overriding attributes and
// the longitude heuristic
func WithLinear() Option {
	return func(o *options) { o.linear = true }
}

func WithAttributes(attrs map[string]interface{}) Option {
	return func(o *options) { o.attrs = attrs }
}

// WithRole skips classification and uses r
func WithRole(r Role) Option {
	return func(o *options) { o.role = &r }
}

// WithRoleCache memoizes role classification by axis id in c
func WithRoleCache(c *RoleCache) Option {
	return func(o *options) { o.cache = c }
}

func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = &cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithTimeConverter(tc TimeConverter) Option {
	return func(o *options) { o.timeConv = tc }
}

// NewAxis validates values and options and builds an Axis. All validation
// failures are reported together.
func NewAxis(id string, values []float64, opts ...Option) (*Axis, error) {
	o := &options{}
	for _, apply := range opts {
		apply(o)
	}

	a := &Axis{
		id:       id,
		values:   append([]float64(nil), values...),
		attrs:    map[string]interface{}{},
		cfg:      DefaultConfig(),
		log:      o.log,
		timeConv: o.timeConv,
	}
	if o.cfg != nil {
		a.cfg = *o.cfg
	}
	if a.log == nil {
		a.log = discardLogger()
	}
	for k, v := range o.attrs {
		a.attrs[k] = v
	}

	var errs *multierror.Error
	if err := a.cfg.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := checkMonotonic(a.values); err != nil {
		errs = multierror.Append(errs, err)
	}

	bounds := o.bounds
	if o.edges != nil {
		if o.bounds != nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: both bounds and edges given", ErrInvalidBounds))
		}
		var err error
		if bounds, err = edgesToBounds(o.edges, len(a.values)); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if bounds != nil {
		b, err := normalizeBounds(bounds, a.values)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		a.bounds = b
	}

	if o.role != nil {
		a.role = *o.role
	} else {
		a.role = o.cache.classify(id, a.attrs)
	}

	if o.circular && o.period <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("circular axis period must be positive, got %g", o.period))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidAxis, id, err)
	}

	a.circular, a.period = a.topology(o)
	return a, nil
}

// topology decides circularity in priority order: options, attributes, then
// the longitude heuristic
func (a *Axis) topology(o *options) (bool, float64) {
	if o.linear {
		return false, 0
	}
	if o.circular {
		return true, o.period
	}

	modulo, hasModulo := attrFloat(a.attrs, "modulo")
	switch strings.ToLower(attrString(a.attrs, "topology")) {
	case "linear":
		return false, 0
	case "circular":
		if hasModulo && modulo > 0 {
			return true, modulo
		}
		return true, defaultLongitudePeriod
	}
	if hasModulo && modulo > 0 {
		return true, modulo
	}

	if a.role == RoleLongitude && isAngularUnits(attrString(a.attrs, "units")) && a.closesCircle() {
		a.log.Debug("treating longitude axis as circular", "axis", a.id)
		return true, defaultLongitudePeriod
	}
	return false, 0
}

// closesCircle reports whether the axis spans one full turn of longitude,
// reconstructing the missing last cell from the first gap when there are no
// bounds
func (a *Axis) closesCircle() bool {
	n := len(a.values)
	var span, width float64
	switch {
	case a.bounds != nil:
		span = math.Abs(a.bounds[n-1][1]-a.bounds[0][0])
		if a.Descending() {
			span = math.Abs(a.bounds[0][1] - a.bounds[n-1][0])
		}
		width = a.bounds[0][1] - a.bounds[0][0]
	case n > 1:
		width = math.Abs(a.values[1] - a.values[0])
		span = math.Abs(a.values[n-1]-a.values[0]) + width
	default:
		return false
	}
	return math.Abs(span-defaultLongitudePeriod) < math.Min(a.cfg.LongitudeTolerance, 0.1*width)
}

func checkMonotonic(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("axis has no values")
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value %d is not finite", i)
		}
	}
	if len(values) == 1 {
		return nil
	}
	desc := values[0] > values[len(values)-1]
	for i := 1; i < len(values); i++ {
		if (!desc && values[i] <= values[i-1]) || (desc && values[i] >= values[i-1]) {
			return fmt.Errorf("values are not strictly monotonic at index %d", i)
		}
	}
	return nil
}

// normalizeBounds checks shape and containment and returns low-high pairs
func normalizeBounds(b [][2]float64, values []float64) ([][2]float64, error) {
	if len(b) != len(values) {
		return nil, fmt.Errorf("%w: %d cells for %d values", ErrInvalidBounds, len(b), len(values))
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: no cells", ErrInvalidBounds)
	}
	out := make([][2]float64, len(b))
	flip := b[0][0] > b[0][1]
	for i, c := range b {
		if flip {
			c[0], c[1] = c[1], c[0]
		}
		if c[0] > c[1] {
			return nil, fmt.Errorf("%w: cell %d is reversed", ErrInvalidBounds, i)
		}
		if values[i] < c[0] || values[i] > c[1] {
			return nil, fmt.Errorf("%w: value %g at %d lies outside [%g, %g]", ErrInvalidBounds, values[i], i, c[0], c[1])
		}
		out[i] = c
	}
	return out, nil
}

func attrFloat(attrs map[string]interface{}, key string) (float64, bool) {
	switch v := attrs[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func (a *Axis) ID() string { return a.id }

func (a *Axis) Len() int { return len(a.values) }

// Values returns a copy of the coordinate values
func (a *Axis) Values() []float64 {
	return append([]float64(nil), a.values...)
}

// Bounds returns a copy of the explicit cell bounds, or nil if the axis has
// none. See CellBounds for generated bounds.
func (a *Axis) Bounds() [][2]float64 {
	if a.bounds == nil {
		return nil
	}
	return append([][2]float64(nil), a.bounds...)
}

func (a *Axis) HasBounds() bool { return a.bounds != nil }

// Descending reports whether values decrease with index
func (a *Axis) Descending() bool {
	return len(a.values) > 1 && a.values[0] > a.values[len(a.values)-1]
}

func (a *Axis) IsCircular() bool { return a.circular }

// Modulo returns the wrap period of a circular axis
func (a *Axis) Modulo() (float64, bool) {
	if !a.circular {
		return 0, false
	}
	return a.period, true
}

func (a *Axis) Role() Role { return a.role }

func (a *Axis) Config() Config { return a.cfg }

// Attributes returns a copy of the axis attributes
func (a *Axis) Attributes() map[string]interface{} {
	attrs := make(map[string]interface{}, len(a.attrs))
	for k, v := range a.attrs {
		attrs[k] = v
	}
	return attrs
}

// Offset reports where frag sits within a, to within tol
func (a *Axis) Offset(frag *Axis, tol float64) (int, bool) {
	ok, off := IsLeadingSubset(frag.values, a.values, tol)
	return off, ok
}

// Overlap is like Offset but accepts fragments that continue past the end of
// a. An offset of a.Len() means frag starts after a ends.
func (a *Axis) Overlap(frag *Axis, tol float64) (int, bool) {
	ok, off := IsLeadingOverlap(frag.values, a.values, tol)
	return off, ok
}

func (a *Axis) String() string {
	return fmt.Sprintf("<axis %q role=%s len=%d circular=%t>", a.id, a.role, len(a.values), a.circular)
}

// derive builds a fragment of a that shares its settings. Fragments are
// trusted: values and bounds come from slicing a, so they skip validation.
func (a *Axis) derive(values []float64, bounds [][2]float64, circular bool) *Axis {
	frag := &Axis{
		id:       a.id,
		values:   values,
		bounds:   bounds,
		circular: circular,
		role:     a.role,
		attrs:    a.attrs,
		cfg:      a.cfg,
		log:      a.log,
		timeConv: a.timeConv,
	}
	if circular {
		frag.period = a.period
	}
	return frag
}
