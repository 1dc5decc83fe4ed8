package axis

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func globalLon(t *testing.T, opts ...Option) *Axis {
	t.Helper()
	a, err := NewAxis("lon", arange(0, 360, 2), append([]Option{WithCircular(360)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestMapIntervalWrap(t *testing.T) {
	a := globalLon(t)

	cases := []struct {
		x, y  float64
		ind   string
		slice Slice
		rng   IndexRange
	}{
		{-5, 5, "ccn", Slice{178, 183, 1}, IndexRange{178, 183}},
		{5, -5, "ccn", Slice{182, 177, -1}, IndexRange{178, 183}},
		{10, 20, "ccn", Slice{5, 11, 1}, IndexRange{5, 11}},
		{725, 735, "ccn", Slice{3, 8, 1}, IndexRange{3, 8}},
		{-3, 1, "cob", Slice{179, 181, 1}, IndexRange{179, 181}},
		{-3, 1, "ccb", Slice{179, 182, 1}, IndexRange{179, 182}},
		{0, 360, "ccn", Slice{0, 181, 1}, IndexRange{0, 180}},
		{-180, 180, "ccn", Slice{90, 271, 1}, IndexRange{90, 270}},
		{350, 370, "ccn", Slice{175, 186, 1}, IndexRange{175, 186}},
		{-370, -350, "ccn", Slice{175, 186, 1}, IndexRange{175, 186}},
	}

	for _, c := range cases {
		iv := Between(c.x, c.y).WithIndicator(MustIndicator(c.ind))
		s, ok, err := a.MapIntervalExt(iv)
		if err != nil {
			t.Fatalf("%s: %s", iv, err)
		}
		if !ok {
			t.Errorf("%s: expected a match", iv)
			continue
		}
		if diff := cmp.Diff(c.slice, s); diff != "" {
			t.Errorf("%s: slice mismatch (-want +got):\n%s", iv, diff)
		}
		r, _, err := a.MapInterval(iv)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(c.rng, r); diff != "" {
			t.Errorf("%s: range mismatch (-want +got):\n%s", iv, diff)
		}
	}
}

func TestMapIntervalWrapDescending(t *testing.T) {
	a, err := NewAxis("lon", arange(358, -1, -2), WithCircular(360))
	if err != nil {
		t.Fatal(err)
	}

	s, ok, err := a.MapIntervalExt(Between(-5, 5))
	if err != nil || !ok {
		t.Fatalf("expected a match: %t %v", ok, err)
	}
	if diff := cmp.Diff(Slice{181, 176, -1}, s); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	r, _, _ := a.MapInterval(Between(-5, 5))
	if diff := cmp.Diff(IndexRange{177, 182}, r); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	s, _, _ = a.MapIntervalExt(Between(5, -5))
	if diff := cmp.Diff(Slice{177, 182, 1}, s); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMapIntervalWrapCycleCap(t *testing.T) {
	a := globalLon(t)
	_, _, err := a.MapIntervalExt(Between(0, 3600))
	if !errors.Is(err, ErrExcessiveWrapCycles) {
		t.Fatalf("expected ErrExcessiveWrapCycles, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.MaxWrapCycles = 20
	a = globalLon(t, WithConfig(cfg))
	s, ok, err := a.MapIntervalExt(Between(0, 3600))
	if err != nil || !ok {
		t.Fatalf("expected a match: %t %v", ok, err)
	}
	if diff := cmp.Diff(Slice{0, 1801, 1}, s); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	r, _, _ := a.MapInterval(Between(0, 3600))
	if diff := cmp.Diff(IndexRange{0, 180}, r); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMapIntervalCycleOverride(t *testing.T) {
	a, err := NewAxis("x", arange(0, 360, 2))
	if err != nil {
		t.Fatal(err)
	}
	if a.IsCircular() {
		t.Fatal("axis x should not be circular")
	}

	r, ok, err := a.MapInterval(Between(-5, 5))
	if err != nil || !ok {
		t.Fatalf("expected a match: %t %v", ok, err)
	}
	if diff := cmp.Diff(IndexRange{0, 3}, r); diff != "" {
		t.Errorf("without a cycle (-want +got):\n%s", diff)
	}

	r, ok, err = a.MapInterval(Between(-5, 5).WithCycle(360))
	if err != nil || !ok {
		t.Fatalf("expected a match: %t %v", ok, err)
	}
	if diff := cmp.Diff(IndexRange{178, 183}, r); diff != "" {
		t.Errorf("with a cycle (-want +got):\n%s", diff)
	}

	if _, ok, _ := a.MapInterval(Between(400, 500)); ok {
		t.Error("linear axis should not match beyond its end")
	}
}

func TestMapIntervalFull(t *testing.T) {
	a := globalLon(t)
	s, ok, err := a.MapIntervalExt(Full())
	if err != nil || !ok {
		t.Fatal("full interval should always match")
	}
	if diff := cmp.Diff(Slice{0, 180, 1}, s); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMapIntervalTime(t *testing.T) {
	epoch := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	days := TimeConverterFunc(func(t time.Time) (float64, error) {
		return t.Sub(epoch).Hours() / 24, nil
	})
	attrs := map[string]interface{}{"units": "days since 2000-01-01"}

	a, err := NewAxis("t", arange(0, 7, 1), WithAttributes(attrs), WithTimeConverter(days))
	if err != nil {
		t.Fatal(err)
	}
	if a.Role() != RoleTime {
		t.Fatalf("expected a time role, got %s", a.Role())
	}
	r, ok, err := a.MapInterval(BetweenTimes(epoch.AddDate(0, 0, 2), epoch.AddDate(0, 0, 4)))
	if err != nil || !ok {
		t.Fatalf("expected a match: %t %v", ok, err)
	}
	if diff := cmp.Diff(IndexRange{2, 5}, r); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	noConv, err := NewAxis("t", arange(0, 7, 1), WithAttributes(attrs))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := noConv.MapInterval(BetweenTimes(epoch, epoch)); !errors.Is(err, ErrNotTimeAxis) {
		t.Errorf("expected ErrNotTimeAxis without a converter, got %v", err)
	}
	lon := globalLon(t, WithTimeConverter(days))
	if _, _, err := lon.MapInterval(BetweenTimes(epoch, epoch)); !errors.Is(err, ErrNotTimeAxis) {
		t.Errorf("expected ErrNotTimeAxis on a longitude axis, got %v", err)
	}
}

// Materializing a wrapped match yields exactly the grid nodes in the
// interval, shifted by whole periods.
func TestWrapRoundTrip(t *testing.T) {
	a := globalLon(t)
	for x := -400.0; x <= 400; x += 7.3 {
		for span := 0.0; span <= 700; span += 13.1 {
			y := x + span
			s, ok, err := a.MapIntervalExt(Between(x, y))
			if err != nil {
				t.Fatalf("(%g, %g): %s", x, y, err)
			}
			want := int(math.Floor(y/2+1e-9) - math.Ceil(x/2-1e-9) + 1)
			if !ok {
				if want > 0 {
					t.Fatalf("(%g, %g): expected %d values, got no match", x, y, want)
				}
				continue
			}
			sub, err := a.Subaxis(s.Start, s.Stop, s.Step, true)
			if err != nil {
				t.Fatalf("(%g, %g): %s", x, y, err)
			}
			vals := sub.Values()
			if len(vals) != want {
				t.Fatalf("(%g, %g): expected %d values, got %d", x, y, want, len(vals))
			}
			shift := 360 * math.Floor((vals[0]-x+1e-6)/360)
			for _, v := range vals {
				if v-shift < x-1e-6 || v-shift > y+1e-6 {
					t.Fatalf("(%g, %g): value %g lies outside the interval", x, y, v-shift)
				}
			}
		}
	}
}

func TestMapIntervalDirectionSymmetry(t *testing.T) {
	asc := globalLon(t)
	desc, err := NewAxis("lon", arange(358, -1, -2), WithCircular(360))
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range []*Axis{asc, desc} {
		for _, ind := range []string{"ccn", "cob", "ccs", "cce", "oon"} {
			fwd := MustIndicator(ind)
			rev := fwd.swapped()
			for x := -400.0; x <= 400; x += 7.3 {
				for span := 0.0; span <= 700; span += 13.1 {
					y := x + span
					r1, ok1, err1 := a.MapInterval(Between(x, y).WithIndicator(fwd))
					r2, ok2, err2 := a.MapInterval(Between(y, x).WithIndicator(rev))
					if err1 != nil || err2 != nil {
						t.Fatalf("(%g, %g, %s): %v %v", x, y, ind, err1, err2)
					}
					if ok1 != ok2 || r1 != r2 {
						t.Fatalf("(%g, %g, %s): %v %t differs from reversed %v %t", x, y, ind, r1, ok1, r2, ok2)
					}
				}
			}
		}
	}
}

func TestWrapLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(buf, WithHandler(JSONHandler), WithLoggerLevel(slog.LevelDebug))
	a := globalLon(t, WithLogger(log))

	if _, _, err := a.MapInterval(Between(-5, 5)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"msg":"extending circular axis"`) {
		t.Errorf("expected a debug record for the wrapped query, got:\n%s", buf.String())
	}

	buf.Reset()
	if _, _, err := a.MapInterval(Between(10, 20)); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("contained query should not log, got:\n%s", buf.String())
	}
}

func TestSubaxisBoundsFollowWrap(t *testing.T) {
	lon := arange(0, 360, 2)
	a := globalLon(t, WithBounds(MidpointBounds(lon, 2)))

	sub, err := a.Subaxis(178, 183, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]float64{{355, 357}, {357, 359}, {359, 361}, {361, 363}, {363, 365}}
	if diff := cmp.Diff(want, sub.Bounds(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
