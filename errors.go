package axis

import "errors"

var (
	// ErrMalformedIndicator is returned for indicator strings that are not two
	// or three characters drawn from the valid symbol sets
	ErrMalformedIndicator = errors.New("malformed indicator")
	// ErrInvalidBounds is returned when a bounds array is neither (N,2) nor (N+1,)
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrExcessiveWrapCycles is returned when resolving a circular query would
	// need more duplicated periods than Config.MaxWrapCycles allows
	ErrExcessiveWrapCycles = errors.New("too many wrap cycles")
	// ErrIndexOutOfRange is returned for subaxis requests that fall outside a
	// linear axis, or outside a circular one when wrapping is disabled
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotTimeAxis is returned when time endpoints are used on an axis that
	// has no time role or no time converter
	ErrNotTimeAxis = errors.New("not a time axis")
	// ErrInvalidAxis wraps construction-time validation failures
	ErrInvalidAxis = errors.New("invalid axis")
)
