package calibration

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCalibration is returned when any calibration input is not a
// strictly positive finite number.
var ErrInvalidCalibration = errors.New("invalid calibration")

// Model converts an observed marker width in pixels to a distance in
// centimeters using the pinhole size-distance relation.
type Model struct {
	FocalLength   float64 // Pixels, derived from one reference measurement
	MarkerWidthCm float64 // Physical marker width
}

// New derives the focal length from a reference measurement: a marker of
// markerWidthCm observed referenceWidthPx wide at knownDistanceCm.
func New(referenceWidthPx, knownDistanceCm, markerWidthCm float64) (Model, error) {
	f, err := FocalLength(referenceWidthPx, knownDistanceCm, markerWidthCm)
	if err != nil {
		return Model{}, err
	}
	return Model{FocalLength: f, MarkerWidthCm: markerWidthCm}, nil
}

// FocalLength computes referenceWidthPx * knownDistanceCm / markerWidthCm.
func FocalLength(referenceWidthPx, knownDistanceCm, markerWidthCm float64) (float64, error) {
	inputs := []struct {
		name  string
		value float64
	}{
		{"reference width", referenceWidthPx},
		{"known distance", knownDistanceCm},
		{"marker width", markerWidthCm},
	}
	for _, in := range inputs {
		if !positive(in.value) {
			return 0, fmt.Errorf("%w: %s must be > 0 (got %v)", ErrInvalidCalibration, in.name, in.value)
		}
	}
	return referenceWidthPx * knownDistanceCm / markerWidthCm, nil
}

// EstimateDistance returns markerWidthCm * focalLength / observedWidthPx.
// A zero observed width yields 0, which callers must read as indeterminate.
func EstimateDistance(observedWidthPx, markerWidthCm, focalLength float64) float64 {
	if observedWidthPx == 0 {
		return 0
	}
	return markerWidthCm * focalLength / observedWidthPx
}

// Distance estimates the range for a marker observedWidthPx wide.
// ok is false when the width is zero and no distance can be derived.
func (m Model) Distance(observedWidthPx int) (cm float64, ok bool) {
	if observedWidthPx <= 0 {
		return 0, false
	}
	return EstimateDistance(float64(observedWidthPx), m.MarkerWidthCm, m.FocalLength), true
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
