package zarr

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Dtype is a zarr data type in NumPy typestr form: one byte-order character,
// one basic type character and a byte size, optionally followed by datetime
// units, e.g. "<f8", ">i4", "|u1", "<M8[s]". Within zarr the byte order must
// always be given.
type Dtype struct {
	ByteOrder ByteOrder
	BasicType BasicType
	ByteSize  int
	Units     string
}

var (
	_ json.Unmarshaler = (*Dtype)(nil)
	_ json.Marshaler   = (*Dtype)(nil)
)

// Float64 is the dtype coordinate arrays are written with
var Float64 = Dtype{ByteOrder: BOLittleEndian, BasicType: BTFloatingPoint, ByteSize: 8}

func ParseDtype(s string) (dt Dtype, err error) {
	// python writers have been seen HTML-escaping the byte order
	s = strings.Replace(s, "&lt;", "<", 1)
	s = strings.Replace(s, "&gt;", ">", 1)

	if len(s) < 3 {
		return dt, fmt.Errorf("invalid Dtype string. %q is too short", s)
	}

	boByte, s := s[0], s[1:]
	if dt.ByteOrder, err = ParseByteOrder(rune(boByte)); err != nil {
		return dt, err
	}

	typeByte, s := s[0], s[1:]
	if dt.BasicType, err = ParseBasicType(rune(typeByte)); err != nil {
		return dt, err
	}

	sizeStr := s
	if i := strings.IndexByte(s, '['); i >= 0 {
		sizeStr, dt.Units = s[:i], s[i:]
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return dt, fmt.Errorf("invalid Dtype size %q: %w", sizeStr, err)
	}
	dt.ByteSize = size
	return dt, nil
}

func (dt Dtype) String() string {
	return fmt.Sprintf("%s%s%d%s", string(dt.ByteOrder), string(dt.BasicType), dt.ByteSize, dt.Units)
}

func (dt Dtype) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

func (dt *Dtype) UnmarshalJSON(d []byte) error {
	var s string
	if err := json.Unmarshal(d, &s); err != nil {
		return err
	}
	t, err := ParseDtype(s)
	if err != nil {
		return err
	}
	*dt = t
	return nil
}

// Numeric reports whether values of this type can be read as coordinates
func (dt Dtype) Numeric() bool {
	switch dt.BasicType {
	case BTFloatingPoint:
		return dt.ByteSize == 4 || dt.ByteSize == 8
	case BTInteger, BTUnsigned:
		switch dt.ByteSize {
		case 1, 2, 4, 8:
			return true
		}
	}
	return false
}

func (dt Dtype) byteOrder() binary.ByteOrder {
	if dt.ByteOrder == BOBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// decode reads count values of this type from r as float64s
func (dt Dtype) decode(r io.Reader, count int) ([]float64, error) {
	if !dt.Numeric() {
		return nil, fmt.Errorf("cannot read %s values as coordinates", dt)
	}
	bo := dt.byteOrder()
	out := make([]float64, count)

	read := func(buf interface{}, conv func(i int) float64) error {
		if err := binary.Read(r, bo, buf); err != nil {
			return err
		}
		for i := range out {
			out[i] = conv(i)
		}
		return nil
	}

	var err error
	switch dt.BasicType {
	case BTFloatingPoint:
		if dt.ByteSize == 4 {
			b := make([]float32, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		} else {
			err = binary.Read(r, bo, out)
		}
	case BTInteger:
		switch dt.ByteSize {
		case 1:
			b := make([]int8, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		case 2:
			b := make([]int16, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		case 4:
			b := make([]int32, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		default:
			b := make([]int64, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		}
	case BTUnsigned:
		switch dt.ByteSize {
		case 1:
			b := make([]uint8, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		case 2:
			b := make([]uint16, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		case 4:
			b := make([]uint32, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		default:
			b := make([]uint64, count)
			err = read(b, func(i int) float64 { return float64(b[i]) })
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %d %s values: %w", count, dt, err)
	}
	return out, nil
}

// encode writes vals as this type. Only floating point types are written.
func (dt Dtype) encode(w io.Writer, vals []float64) error {
	if dt.BasicType != BTFloatingPoint {
		return fmt.Errorf("writing %s values is not supported", dt)
	}
	if dt.ByteSize == 4 {
		b := make([]float32, len(vals))
		for i, v := range vals {
			b[i] = float32(v)
		}
		return binary.Write(w, dt.byteOrder(), b)
	}
	return binary.Write(w, dt.byteOrder(), vals)
}

type ByteOrder rune

func ParseByteOrder(r rune) (ByteOrder, error) {
	o := ByteOrder(r)
	if _, ok := byteOrders[o]; !ok {
		return o, fmt.Errorf("unsupported byte order format: %q", r)
	}
	return o, nil
}

const (
	BONotRelevant  ByteOrder = '|'
	BOLittleEndian ByteOrder = '<'
	BOBigEndian    ByteOrder = '>'
)

var byteOrders = map[ByteOrder]struct{}{
	BONotRelevant:  {},
	BOLittleEndian: {},
	BOBigEndian:    {},
}

type BasicType rune

func ParseBasicType(r rune) (BasicType, error) {
	t := BasicType(r)
	if _, ok := supportedBasicTypes[t]; !ok {
		return t, fmt.Errorf("unsupported basic type: %q", r)
	}
	return t, nil
}

func (bt BasicType) Human() string {
	return supportedBasicTypes[bt]
}

const (
	BTBoolean       BasicType = 'b'
	BTInteger       BasicType = 'i'
	BTUnsigned      BasicType = 'u'
	BTFloatingPoint BasicType = 'f'
	BTComplex       BasicType = 'c'
	BTTimedelta     BasicType = 'm'
	BTDatetime      BasicType = 'M'
	BTString        BasicType = 'S'
	BTUnicode       BasicType = 'U'
	BTOther         BasicType = 'V'
)

var supportedBasicTypes = map[BasicType]string{
	BTBoolean:       "bool",
	BTInteger:       "int",
	BTUnsigned:      "uint",
	BTFloatingPoint: "float",
	BTComplex:       "complex",
	BTTimedelta:     "timedelta",
	BTDatetime:      "datetime",
	BTString:        "string",
	BTUnicode:       "unicode",
	BTOther:         "other",
}
