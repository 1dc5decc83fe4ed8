package zarr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	axis "github.com/qri-io/axis-go"
)

func TestAxisRoundTrip(t *testing.T) {
	lon := arange(0, 360, 2)
	src, err := axis.NewAxis("lon", lon,
		axis.WithAttributes(map[string]interface{}{"units": "degrees_east", "standard_name": "longitude"}),
		axis.WithCircular(360),
		axis.WithBounds(axis.MidpointBounds(lon, 2)),
	)
	if err != nil {
		t.Fatal(err)
	}

	comps := map[string]*CompressionMeta{
		"raw":  nil,
		"zstd": {ID: "zstd"},
	}
	for name, comp := range comps {
		t.Run(name, func(t *testing.T) {
			s := NewMemoryStore()
			if err := WriteAxis(s, "grid/lon", src, 64, comp); err != nil {
				t.Fatal(err)
			}

			arr, err := Open(s, "grid/lon")
			if err != nil {
				t.Fatal(err)
			}
			if top := arr.Attrs().Topology(); top != "circular" {
				t.Errorf("expected circular topology, got %q", top)
			}
			if name := arr.Attrs().BoundsName(); name != "lon"+BoundsSuffix {
				t.Errorf("expected bounds lon%s, got %q", BoundsSuffix, name)
			}

			got, err := OpenAxis(s, "grid/lon")
			if err != nil {
				t.Fatal(err)
			}
			if got.ID() != "lon" || got.Role() != axis.RoleLongitude {
				t.Errorf("expected longitude axis lon, got %s %q", got.Role(), got.ID())
			}
			if mod, ok := got.Modulo(); !got.IsCircular() || !ok || mod != 360 {
				t.Errorf("expected a circular axis with modulo 360, got %g %t", mod, ok)
			}
			if diff := cmp.Diff(src.Values(), got.Values()); diff != "" {
				t.Errorf("values (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(src.Bounds(), got.Bounds()); diff != "" {
				t.Errorf("bounds (-want +got):\n%s", diff)
			}

			r, ok, err := got.MapInterval(axis.Between(-5, 5))
			if err != nil || !ok {
				t.Fatalf("expected a match: %t %v", ok, err)
			}
			if want := (axis.IndexRange{Start: 178, Stop: 183}); r != want {
				t.Errorf("expected %v, got %v", want, r)
			}

			// the wrapped index range reads back the coordinates it covers
			vals, err := arr.ReadWrapped(r.Start, r.Stop, 1, 0)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]float64{356, 358, 0, 2, 4}, vals); diff != "" {
				t.Errorf("wrapped read (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenAxisOptionsOverrideStore(t *testing.T) {
	s := NewMemoryStore()
	src, err := axis.NewAxis("lon", arange(0, 360, 10), axis.WithCircular(360))
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteAxis(s, "lon", src, 0, nil); err != nil {
		t.Fatal(err)
	}

	got, err := OpenAxis(s, "lon", axis.WithLinear())
	if err != nil {
		t.Fatal(err)
	}
	if got.IsCircular() {
		t.Error("WithLinear should override the stored topology")
	}
	if got.HasBounds() {
		t.Error("no bounds were written")
	}
}

func TestOpenAxisConsolidated(t *testing.T) {
	s := NewMemoryStore()
	lat, err := axis.NewAxis("lat", arange(-80, 90, 20),
		axis.WithAttributes(map[string]interface{}{"units": "degrees_north"}))
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteAxis(s, "lat", lat, 4, nil); err != nil {
		t.Fatal(err)
	}
	if err := Consolidate(s, "lat"); err != nil {
		t.Fatal(err)
	}

	arr, err := OpenConsolidated(s, "lat")
	if err != nil {
		t.Fatal(err)
	}
	if top := arr.Attrs().Topology(); top != "linear" {
		t.Errorf("expected linear topology, got %q", top)
	}

	got, err := arr.Axis()
	if err != nil {
		t.Fatal(err)
	}
	if got.Role() != axis.RoleLatitude {
		t.Errorf("expected a latitude axis, got %s", got.Role())
	}
	if diff := cmp.Diff(lat.Values(), got.Values()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if _, err := OpenConsolidated(s, "lon"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenAxisErrors(t *testing.T) {
	s := NewMemoryStore()
	if _, err := OpenAxis(s, "nothing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing array: expected ErrNotFound, got %v", err)
	}

	newVector(t, s, "bad", []float64{0, 2, 1}, 3, nil)
	if _, err := OpenAxis(s, "bad"); !errors.Is(err, axis.ErrInvalidAxis) {
		t.Errorf("not monotonic: expected ErrInvalidAxis, got %v", err)
	}

	two, err := Create(s, "grid", &ArrayMeta{Shape: []int{2, 2}, Chunks: []int{2, 2}, Dtype: Float64}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := two.Axis(); !errors.Is(err, axis.ErrInvalidAxis) {
		t.Errorf("two dimensional: expected ErrInvalidAxis, got %v", err)
	}

	a := newVector(t, s, "x", []float64{0, 1, 2}, 3, nil)
	a.attrs["bounds"] = "x_bnds"
	if _, err := a.Axis(); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing bounds array: expected ErrNotFound, got %v", err)
	}

	newVector(t, s, "x_bnds", []float64{0, 1}, 2, nil)
	if _, err := a.Axis(); !errors.Is(err, axis.ErrInvalidBounds) {
		t.Errorf("short bounds: expected ErrInvalidBounds, got %v", err)
	}
}

func TestConsolidateDiscoversArrays(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	lon := arange(0, 360, 30)
	src, err := axis.NewAxis("lon", lon, axis.WithBounds(axis.MidpointBounds(lon, 30)))
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteAxis(s, "grid/lon", src, 5, &CompressionMeta{ID: "zstd"}); err != nil {
		t.Fatal(err)
	}
	if err := Consolidate(s); err != nil {
		t.Fatal(err)
	}

	arr, err := OpenConsolidated(s, "grid/lon")
	if err != nil {
		t.Fatal(err)
	}
	got, err := arr.Axis()
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsCircular() {
		t.Error("a closed longitude circle should be circular")
	}
	if diff := cmp.Diff(src.Bounds(), got.Bounds()); diff != "" {
		t.Errorf("bounds (-want +got):\n%s", diff)
	}

	if _, err := OpenConsolidated(s, "grid/lon_bnds"); err != nil {
		t.Errorf("bounds array should be consolidated too: %s", err)
	}
}
