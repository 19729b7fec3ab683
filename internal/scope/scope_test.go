package scope

import (
	"math"
	"strings"
	"testing"
	"time"

	"marker-tracker.klederson.com/internal/marker"
	"marker-tracker.klederson.com/internal/tracker"
	"marker-tracker.klederson.com/internal/zone"
)

func TestViewportCell(t *testing.T) {
	vp := Viewport{Cols: 64, Rows: 24, FrameW: 640, FrameH: 480}
	cases := []struct {
		x, y     int
		col, row int
	}{
		{0, 0, 0, 0},
		{320, 240, 32, 12},
		{639, 479, 63, 23},
		{640, 480, 63, 23},
		{-50, -50, 0, 0},
	}
	for _, tc := range cases {
		col, row := vp.Cell(tc.x, tc.y)
		if col != tc.col || row != tc.row {
			t.Errorf("Cell(%d,%d) = (%d,%d), want (%d,%d)", tc.x, tc.y, col, row, tc.col, tc.row)
		}
	}
}

func TestRenderMarker(t *testing.T) {
	g, _ := tracker.NewGeometry(640, 480)
	det := marker.Detection{Payload: marker.DefaultPayload, Box: marker.Box{X: 480, Y: 80, W: 40, H: 40}}
	res := tracker.Result{
		Found:      true,
		Detection:  det,
		Centroid:   det.Box.Centroid(),
		Zone:       zone.ZoneI,
		DistanceCm: 125,
	}
	out := Render(64, 24, Scene{Geometry: g, Tolerance: 80, Result: res, Sweep: NewSweep()})
	if got := len(strings.Split(out, "\n")); got != 24 {
		t.Fatalf("rendered %d rows, want 24", got)
	}
	for _, want := range []string{"@", "#", "+", ":"} {
		if !strings.Contains(out, want) {
			t.Errorf("render is missing %q", want)
		}
	}
}

func TestRenderTooSmall(t *testing.T) {
	g, _ := tracker.NewGeometry(640, 480)
	if out := Render(5, 3, Scene{Geometry: g}); out != "" {
		t.Errorf("expected empty output for a tiny panel")
	}
	if out := Render(64, 24, Scene{}); out != "" {
		t.Errorf("expected empty output before geometry is known")
	}
}

func TestMarkerLabel(t *testing.T) {
	if l := MarkerLabel(tracker.Result{DistanceCm: 52.6}); l != "53cm" {
		t.Errorf("label = %q", l)
	}
	if l := MarkerLabel(tracker.Result{Indeterminate: true}); l != "?cm" {
		t.Errorf("indeterminate label = %q", l)
	}
}

func TestSweepIntensity(t *testing.T) {
	s := NewSweep()
	s.advance(500 * time.Millisecond) // a quarter turn at 30 rpm
	if math.Abs(s.Angle-math.Pi/2) > 1e-9 {
		t.Fatalf("angle = %f, want π/2", s.Angle)
	}
	if i := s.Intensity(math.Pi / 2); math.Abs(i-1) > 1e-9 {
		t.Errorf("intensity at the beam head = %f, want 1", i)
	}
	if i := s.Intensity(math.Pi/2 - math.Pi/6); math.Abs(i-0.5) > 1e-9 {
		t.Errorf("intensity mid-trail = %f, want 0.5", i)
	}
	if i := s.Intensity(math.Pi); i != 0 {
		t.Errorf("intensity ahead of the beam = %f, want 0", i)
	}
}
