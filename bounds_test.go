package axis

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestMidpointBounds(t *testing.T) {
	got := MidpointBounds([]float64{0, 1, 3}, 1)
	want := [][2]float64{{-0.5, 0.5}, {0.5, 2}, {2, 4}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	got = MidpointBounds([]float64{3, 1, 0}, 1)
	want = [][2]float64{{2, 4}, {0.5, 2}, {-0.5, 0.5}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("descending values should still give low-high pairs (-want +got):\n%s", diff)
	}

	got = MidpointBounds([]float64{10}, 4)
	if diff := cmp.Diff([][2]float64{{8, 12}}, got, approx); diff != "" {
		t.Errorf("singleton (-want +got):\n%s", diff)
	}
	if MidpointBounds(nil, 1) != nil {
		t.Error("expected nil bounds for no values")
	}
}

func TestParseBounds(t *testing.T) {
	pairs, err := ParseBounds([]float64{0, 1, 1, 2, 2, 3}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][2]float64{{0, 1}, {1, 2}, {2, 3}}, pairs); diff != "" {
		t.Errorf("(N,2) (-want +got):\n%s", diff)
	}

	pairs, err = ParseBounds([]float64{0, 1, 2, 3}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][2]float64{{0, 1}, {1, 2}, {2, 3}}, pairs); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}

	if _, err := ParseBounds([]float64{0, 1, 2}, 3); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
}

func TestGenGenericBoundsLongitude(t *testing.T) {
	attrs := WithAttributes(map[string]interface{}{"units": "degrees_east"})

	exact, err := NewAxis("lon", arange(0.5, 360, 1), attrs)
	if err != nil {
		t.Fatal(err)
	}
	b := exact.GenGenericBounds(1)
	if b[0][0] != 0 || b[359][1] != 360 {
		t.Errorf("expected cells to span [0, 360], got [%g, %g]", b[0][0], b[359][1])
	}

	// the last node sits slightly off the grid, so the extrapolated edge
	// overshoots 360 by 0.006 and is snapped back
	vals := arange(0, 359, 1)
	vals = append(vals, 359.004)
	perturbed, err := NewAxis("lon", vals, attrs)
	if err != nil {
		t.Fatal(err)
	}
	b = perturbed.GenGenericBounds(1)
	if diff := cmp.Diff([2]float64{-0.5, 0.5}, b[0], approx); diff != "" {
		t.Errorf("first cell (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(359.5, b[359][1], approx); diff != "" {
		t.Errorf("last edge (-want +got):\n%s", diff)
	}

	// straddling zero and within 0.01 of whole degrees: rounded
	vals = append([]float64{-179.504}, arange(-178.5, 180, 1)...)
	straddle, err := NewAxis("lon", vals, attrs)
	if err != nil {
		t.Fatal(err)
	}
	b = straddle.GenGenericBounds(1)
	if b[0][0] != -180 || b[len(b)-1][1] != 180 {
		t.Errorf("expected edges rounded to [-180, 180], got [%g, %g]", b[0][0], b[len(b)-1][1])
	}

	// far from a full circle: untouched
	regional, err := NewAxis("lon", arange(0, 90, 1), attrs)
	if err != nil {
		t.Fatal(err)
	}
	b = regional.GenGenericBounds(1)
	if diff := cmp.Diff(89.5, b[89][1], approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	// not in degrees: untouched
	radians, err := NewAxis("lon", vals, WithAttributes(map[string]interface{}{"units": "radians"}), WithRole(RoleLongitude))
	if err != nil {
		t.Fatal(err)
	}
	b = radians.GenGenericBounds(1)
	if diff := cmp.Diff(-180.006, b[0][0], approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGenGenericBoundsLatitude(t *testing.T) {
	lat, err := NewAxis("lat", arange(-90, 91, 1))
	if err != nil {
		t.Fatal(err)
	}
	b := lat.GenGenericBounds(1)
	if b[0][0] != -90 || b[180][1] != 90 {
		t.Errorf("expected clamping to [-90, 90], got [%g, %g]", b[0][0], b[180][1])
	}
	if diff := cmp.Diff([2]float64{-89.5, -88.5}, b[1], approx); diff != "" {
		t.Errorf("interior cells are unchanged (-want +got):\n%s", diff)
	}

	cfg := DefaultConfig()
	cfg.AutoBounds = false
	lat, err = NewAxis("lat", arange(-90, 91, 1), WithConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	b = lat.GenGenericBounds(1)
	if b[0][0] != -90.5 || b[180][1] != 90.5 {
		t.Errorf("expected no clamping, got [%g, %g]", b[0][0], b[180][1])
	}
}

func TestCellBoundsPrefersExplicitBounds(t *testing.T) {
	explicit := [][2]float64{{1, -1}, {-1, -3}}
	a, err := NewAxis("depth", []float64{0, -2}, WithBounds(explicit))
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]float64{{-1, 1}, {-3, -1}}
	if diff := cmp.Diff(want, a.CellBounds()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	edges, err := NewAxis("depth", []float64{0, -2}, WithBoundsEdges([]float64{1, -1, -3}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, edges.CellBounds()); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}
