package axis

import "fmt"

// Endpoint says whether an interval endpoint is included
type Endpoint uint8

const (
	Closed Endpoint = iota
	Open
)

// Mode selects how an axis index is tested against a coordinate interval
type Mode uint8

const (
	// Node matches an index when its coordinate value falls in the interval
	Node Mode = iota
	// Bounds matches an index when its cell intersects the interval
	Bounds
	// Subset matches an index when its whole cell lies inside the interval
	Subset
	// NodeExtended is Node padded by one neighbouring index on each side where
	// the interval endpoint does not sit exactly on a node
	NodeExtended
)

var modeSymbols = map[byte]Mode{
	'n': Node,
	'b': Bounds,
	's': Subset,
	'e': NodeExtended,
}

// Indicator describes endpoint openness and the intersection rule for an
// interval query. The zero value is "ccn": closed on both ends, node mode.
type Indicator struct {
	Left  Endpoint
	Right Endpoint
	Mode  Mode
}

// ParseIndicator parses the compact three-symbol form, e.g. "cob". A two
// symbol string defaults to node mode.
func ParseIndicator(s string) (Indicator, error) {
	if len(s) != 2 && len(s) != 3 {
		return Indicator{}, fmt.Errorf("%w: %q must be 2 or 3 characters", ErrMalformedIndicator, s)
	}

	var (
		ind Indicator
		err error
	)
	if ind.Left, err = parseEndpoint(s[0]); err != nil {
		return Indicator{}, fmt.Errorf("%w: %q: %s", ErrMalformedIndicator, s, err)
	}
	if ind.Right, err = parseEndpoint(s[1]); err != nil {
		return Indicator{}, fmt.Errorf("%w: %q: %s", ErrMalformedIndicator, s, err)
	}
	if len(s) == 3 {
		m, ok := modeSymbols[s[2]]
		if !ok {
			return Indicator{}, fmt.Errorf("%w: %q: unknown mode %q", ErrMalformedIndicator, s, s[2])
		}
		ind.Mode = m
	}
	return ind, nil
}

// MustIndicator is ParseIndicator for literals known to be valid
func MustIndicator(s string) Indicator {
	ind, err := ParseIndicator(s)
	if err != nil {
		panic(err)
	}
	return ind
}

func parseEndpoint(b byte) (Endpoint, error) {
	switch b {
	case 'c':
		return Closed, nil
	case 'o':
		return Open, nil
	}
	return Closed, fmt.Errorf("unknown endpoint %q", b)
}

func (e Endpoint) symbol() byte {
	if e == Open {
		return 'o'
	}
	return 'c'
}

func (m Mode) symbol() byte {
	for b, mm := range modeSymbols {
		if mm == m {
			return b
		}
	}
	return '?'
}

func (ind Indicator) String() string {
	return string([]byte{ind.Left.symbol(), ind.Right.symbol(), ind.Mode.symbol()})
}

// swapped exchanges the endpoint flags, for intervals given high-to-low
func (ind Indicator) swapped() Indicator {
	ind.Left, ind.Right = ind.Right, ind.Left
	return ind
}
