package zarr

import (
	"fmt"

	axis "github.com/qri-io/axis-go"
)

// BoundsSuffix is appended to an axis id to name its bounds array
const BoundsSuffix = "_bnds"

// OpenAxis reads the one-dimensional coordinate array at path and builds an
// axis named after the last path element. opts are applied after the options
// read from the store and take precedence over them.
func OpenAxis(store Store, path string, opts ...axis.Option) (*axis.Axis, error) {
	arr, err := Open(store, path)
	if err != nil {
		return nil, err
	}
	return arr.Axis(opts...)
}

// Axis builds an axis from the array's values and attributes. When the
// "bounds" attribute names a sibling array, cell bounds are read from it.
func (a *Array) Axis(opts ...axis.Option) (*axis.Axis, error) {
	if len(a.meta.Shape) != 1 {
		return nil, fmt.Errorf("%w: coordinate array %q has shape %v", axis.ErrInvalidAxis, a.Path(), a.meta.Shape)
	}
	values, err := a.ReadAll()
	if err != nil {
		return nil, err
	}

	base := []axis.Option{axis.WithAttributes(a.attrs)}
	if name := a.attrs.BoundsName(); name != "" {
		b, err := a.readBounds(name, len(values))
		if err != nil {
			return nil, err
		}
		base = append(base, axis.WithBounds(b))
	}
	return axis.NewAxis(a.path.Name(), values, append(base, opts...)...)
}

func (a *Array) readBounds(name string, n int) ([][2]float64, error) {
	barr, err := Open(a.store, a.path.Sibling(name).String())
	if err != nil {
		return nil, fmt.Errorf("reading bounds of %q: %w", a.Path(), err)
	}
	flat, err := barr.ReadAll()
	if err != nil {
		return nil, err
	}
	return axis.ParseBounds(flat, n)
}

// WriteAxis stores an axis as a float64 coordinate array at path, chunked
// every chunkRows values. The axis topology is recorded in the "topology"
// and "modulo" attributes. Bounds, when present, go to a sibling array of
// shape [n, 2] named by the "bounds" attribute.
func WriteAxis(store Store, path string, a *axis.Axis, chunkRows int, comp *CompressionMeta) error {
	p, err := NewPath(path)
	if err != nil {
		return err
	}
	if chunkRows <= 0 {
		chunkRows = a.Len()
	}

	attrs := Attributes(a.Attributes())
	if attrs == nil {
		attrs = Attributes{}
	}
	if mod, ok := a.Modulo(); ok {
		attrs["topology"] = "circular"
		attrs["modulo"] = mod
	} else {
		attrs["topology"] = "linear"
		delete(attrs, "modulo")
	}
	delete(attrs, "bounds")

	if a.HasBounds() {
		name := p.Name() + BoundsSuffix
		attrs["bounds"] = name
		b := a.Bounds()
		flat := make([]float64, 0, 2*len(b))
		for _, c := range b {
			flat = append(flat, c[0], c[1])
		}
		barr, err := Create(store, p.Sibling(name).String(), &ArrayMeta{
			Shape:      []int{len(b), 2},
			Chunks:     []int{chunkRows, 2},
			Dtype:      Float64,
			Compressor: comp,
			FillValue:  FillValueNaN,
			Order:      "C",
		}, nil)
		if err != nil {
			return err
		}
		if err := barr.Write(flat); err != nil {
			return err
		}
	}

	arr, err := Create(store, p.String(), &ArrayMeta{
		Shape:      []int{a.Len()},
		Chunks:     []int{chunkRows},
		Dtype:      Float64,
		Compressor: comp,
		FillValue:  FillValueNaN,
		Order:      "C",
	}, attrs)
	if err != nil {
		return err
	}
	return arr.Write(a.Values())
}
