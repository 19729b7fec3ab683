package calibration

import (
	"errors"
	"math"
	"testing"
)

func TestFocalLength(t *testing.T) {
	f, err := FocalLength(100, 50.0, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != 1000.0 {
		t.Errorf("FocalLength(100, 50, 5) = %f, want 1000", f)
	}
}

func TestFocalLengthRejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		name             string
		ref, dist, width float64
	}{
		{"zero reference", 0, 50, 5},
		{"negative distance", 100, -1, 5},
		{"zero marker width", 100, 50, 0},
		{"nan reference", math.NaN(), 50, 5},
		{"infinite distance", 100, math.Inf(1), 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FocalLength(tc.ref, tc.dist, tc.width); !errors.Is(err, ErrInvalidCalibration) {
				t.Errorf("expected ErrInvalidCalibration, got %v", err)
			}
			if _, err := New(tc.ref, tc.dist, tc.width); !errors.Is(err, ErrInvalidCalibration) {
				t.Errorf("New: expected ErrInvalidCalibration, got %v", err)
			}
		})
	}
}

func TestEstimateDistanceRoundTrip(t *testing.T) {
	m, err := New(100, 50, 5)
	if err != nil {
		t.Fatal(err)
	}
	// The reference width must map back to the reference distance.
	d, ok := m.Distance(100)
	if !ok || d != 50 {
		t.Errorf("Distance(100) = %f, %v; want 50, true", d, ok)
	}
	d, _ = m.Distance(200)
	if d != 25 {
		t.Errorf("Distance(200) = %f, want 25", d)
	}
}

func TestEstimateDistanceStrictlyDecreasing(t *testing.T) {
	prev := math.Inf(1)
	for w := 1.0; w <= 640; w++ {
		d := EstimateDistance(w, 5, 1000)
		if d >= prev {
			t.Fatalf("distance not decreasing at width %f: %f >= %f", w, d, prev)
		}
		prev = d
	}
}

func TestEstimateDistanceZeroWidth(t *testing.T) {
	if d := EstimateDistance(0, 5, 1000); d != 0 {
		t.Errorf("EstimateDistance(0) = %f, want 0", d)
	}
	m := Model{FocalLength: 1000, MarkerWidthCm: 5}
	if d, ok := m.Distance(0); ok || d != 0 {
		t.Errorf("Distance(0) = %f, %v; want 0, false", d, ok)
	}
}
