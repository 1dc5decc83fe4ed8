package zarr

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

type MetaType string

const (
	// MTAttributes stores userland metadata keyed by array name
	MTAttributes MetaType = ".zattrs"
	// MTArray is the key for storing metadata on an array store
	MTArray MetaType = ".zarray"
	// MTGroup is the key for storing group definitions on an array store
	MTGroup MetaType = ".zgroup"
	// MTMetadata is the key for composite metadata
	MTMetadata MetaType = ".zmetadata"
)

type MetaTyper interface {
	MetaType() MetaType
}

var metaTypes = map[MetaType]struct{}{
	MTAttributes: {},
	MTArray:      {},
	MTGroup:      {},
}

// KeyMetaType reports which metadata document a store key names. It relies
// on every metadata key name being 7 characters long.
func KeyMetaType(s string) (mt MetaType, ok bool) {
	if len(s) < 7 {
		return mt, false
	}
	mt = MetaType(s[len(s)-7:])
	_, ok = metaTypes[mt]
	return mt, ok
}

// Attributes is the .zattrs document of an array. Coordinate arrays carry
// CF-style keys that describe the axis they hold.
type Attributes map[string]interface{}

func (Attributes) MetaType() MetaType { return MTAttributes }

func (a Attributes) str(key string) string {
	s, _ := a[key].(string)
	return strings.TrimSpace(s)
}

func (a Attributes) Units() string { return a.str("units") }

// AxisHint is the "axis" attribute: X, Y, Z or T
func (a Attributes) AxisHint() string { return strings.ToUpper(a.str("axis")) }

// Topology is "circular", "linear" or empty
func (a Attributes) Topology() string { return strings.ToLower(a.str("topology")) }

// BoundsName names the sibling array holding cell bounds
func (a Attributes) BoundsName() string { return a.str("bounds") }

// Modulo is the wrap period declared by the "modulo" attribute
func (a Attributes) Modulo() (float64, bool) {
	switch v := a["modulo"].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Arrays can be organized into groups which can also contain other groups.
// A group exists at logical path "foo/bar" if the "foo/bar/.zgroup" key
// exists in the store.
type Group struct {
	ZarrFormat int `json:"zarr_format"`
}

func (Group) MetaType() MetaType { return MTGroup }

// ConsolidatedMetadata is the .zmetadata document: every metadata document of
// a hierarchy keyed by its store key
type ConsolidatedMetadata struct {
	ConsolidatedFormat int                  `json:"zarr_consolidated_format"`
	Metadata           map[string]MetaTyper `json:"metadata"`
}

type consolidatedMetaDecoder struct {
	ConsolidatedFormat int                        `json:"zarr_consolidated_format"`
	Metadata           map[string]json.RawMessage `json:"metadata"`
}

func (m *ConsolidatedMetadata) UnmarshalJSON(d []byte) error {
	cd := consolidatedMetaDecoder{}
	if err := json.Unmarshal(d, &cd); err != nil {
		return err
	}
	cm := ConsolidatedMetadata{
		ConsolidatedFormat: cd.ConsolidatedFormat,
		Metadata:           map[string]MetaTyper{},
	}

	for key, data := range cd.Metadata {
		kt, ok := KeyMetaType(key)
		if !ok {
			return fmt.Errorf("invalid consolidated metadata key: %q", key)
		}

		switch kt {
		case MTArray:
			arr := &ArrayMeta{}
			if err := json.Unmarshal(data, arr); err != nil {
				return fmt.Errorf("reading %q metadata: %w", key, err)
			}
			cm.Metadata[key] = arr
		case MTAttributes:
			attr := Attributes{}
			if err := json.Unmarshal(data, &attr); err != nil {
				return fmt.Errorf("reading %q attributes: %w", key, err)
			}
			cm.Metadata[key] = attr
		case MTGroup:
			grp := Group{}
			if err := json.Unmarshal(data, &grp); err != nil {
				return fmt.Errorf("reading %q group: %w", key, err)
			}
			cm.Metadata[key] = grp
		}
	}

	*m = cm
	return nil
}

// Array returns the array metadata stored for an array path
func (m *ConsolidatedMetadata) Array(path Path) (*ArrayMeta, bool) {
	meta, ok := m.Metadata[path.Join(string(MTArray)).String()].(*ArrayMeta)
	return meta, ok
}

// Attrs returns the attributes stored for an array path, or empty attributes
func (m *ConsolidatedMetadata) Attrs(path Path) Attributes {
	if attrs, ok := m.Metadata[path.Join(string(MTAttributes)).String()].(Attributes); ok {
		return attrs
	}
	return Attributes{}
}

// ArrayMeta is the .zarray document describing how an array is chunked and
// encoded
type ArrayMeta struct {
	// Version of the zarr storage format the array adheres to
	ZarrFormat int `json:"zarr_format"`
	// Length of each dimension
	Shape []int `json:"shape"`
	// Length of each dimension of a chunk; all chunks share one shape
	Chunks []int `json:"chunks"`
	Dtype  Dtype `json:"dtype"`
	// Primary compression codec, or nil for raw chunks
	Compressor *CompressionMeta `json:"compressor"`
	// Value for uninitialized portions of the array. Non-finite floats are
	// written as the strings "NaN", "Infinity" and "-Infinity".
	FillValue interface{} `json:"fill_value"`
	// "C" for row-major chunks, "F" for column-major
	Order   string   `json:"order"`
	Filters []Filter `json:"filters"`
	// "." (the default) or "/" between chunk indices in chunk keys
	DimensionSeparator string `json:"dimension_separator,omitempty"`
}

func (a ArrayMeta) MetaType() MetaType { return MTArray }

// Validate checks the metadata describes an array this package can read:
// numeric, row-major, chunked along the first dimension only
func (a *ArrayMeta) Validate() error {
	if len(a.Shape) == 0 {
		return fmt.Errorf("array has no dimensions")
	}
	if len(a.Chunks) != len(a.Shape) {
		return fmt.Errorf("chunks %v do not match shape %v", a.Chunks, a.Shape)
	}
	if a.Chunks[0] <= 0 {
		return fmt.Errorf("invalid chunk length %d", a.Chunks[0])
	}
	for i := 1; i < len(a.Shape); i++ {
		if a.Chunks[i] != a.Shape[i] {
			return fmt.Errorf("arrays chunked along dimension %d are not supported", i)
		}
	}
	if a.Order != "" && a.Order != "C" {
		return fmt.Errorf("unsupported chunk order %q", a.Order)
	}
	if len(a.Filters) > 0 {
		return fmt.Errorf("filters are not supported")
	}
	if !a.Dtype.Numeric() {
		return fmt.Errorf("unsupported dtype %s", a.Dtype)
	}
	return nil
}

// Filter is a numcodecs filter configuration
type Filter struct {
	ID     string `json:"id"`
	Delta  string `json:"delta,omitempty"`
	Dtype  string `json:"dtype,omitempty"`
	AsType string `json:"astype,omitempty"`
}

const (
	// Not a Number
	FillValueNaN = "NaN"
	// Infinity
	FillValueInfinity = "Infinity"
	// -Infinity
	FillValueNegativeInfinity = "-Infinity"
)
