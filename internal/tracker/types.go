package tracker

import (
	"errors"
	"fmt"
	"image"

	"marker-tracker.klederson.com/internal/calibration"
	"marker-tracker.klederson.com/internal/marker"
	"marker-tracker.klederson.com/internal/zone"
)

var (
	// ErrSourceUnavailable means the frame source could not be opened.
	ErrSourceUnavailable = errors.New("frame source unavailable")
	// ErrNoInitialFrame means the first frame could not be read.
	ErrNoInitialFrame = errors.New("no initial frame")
	// ErrSourceStalled means the retry policy gave up on consecutive read failures.
	ErrSourceStalled = errors.New("frame source stalled")
	// ErrNoFrame is returned by sources for a dropped or unreadable frame.
	ErrNoFrame = errors.New("no frame")
	// ErrQuitRequested is the cancellation cause when the operator quits.
	ErrQuitRequested = errors.New("quit requested")
)

// Frame is a raster image of known size.
type Frame interface {
	Width() int
	Height() int
}

// Source delivers frames. A frame returned by Read is valid until the
// next call to Read.
type Source interface {
	Open() error
	Read() (Frame, error)
	Release() error
}

// Decoder finds marker candidates in a frame. It never fails; a frame it
// cannot handle yields no candidates.
type Decoder interface {
	Decode(f Frame) []marker.Candidate
}

// Presenter renders one frame with its overlay and tracking result.
type Presenter interface {
	Present(f Frame, ov Overlay, r Result)
	Close() error
}

// Line is a segment in frame coordinates.
type Line struct {
	From, To image.Point
}

// Overlay holds the static elements drawn on every frame.
type Overlay struct {
	Grid      [2]Line // vertical, horizontal
	Center    image.Point
	Tolerance int
}

// Geometry describes the frame dimensions captured at startup.
type Geometry struct {
	Width, Height    int
	CenterX, CenterY int
}

// NewGeometry validates the frame size and derives its center.
func NewGeometry(width, height int) (Geometry, error) {
	if width <= 0 || height <= 0 {
		return Geometry{}, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	return Geometry{
		Width:   width,
		Height:  height,
		CenterX: width / 2,
		CenterY: height / 2,
	}, nil
}

// GridLines returns the vertical and horizontal lines through the center.
func (g Geometry) GridLines() [2]Line {
	return [2]Line{
		{From: image.Pt(g.CenterX, 0), To: image.Pt(g.CenterX, g.Height)},
		{From: image.Pt(0, g.CenterY), To: image.Pt(g.Width, g.CenterY)},
	}
}

// Center returns the frame center.
func (g Geometry) Center() image.Point {
	return image.Pt(g.CenterX, g.CenterY)
}

// Result is the outcome of processing one frame. When Found is false the
// other fields are zero.
type Result struct {
	Seq           uint64
	Found         bool
	Detection     marker.Detection
	Centroid      image.Point
	Zone          zone.Label
	DistanceCm    float64
	Indeterminate bool // marker had zero width; DistanceCm is meaningless
}

// Session is the immutable context built once during initialization and
// shared by every iteration of the loop.
type Session struct {
	Geometry    Geometry
	Calibration calibration.Model
	Payload     string
	Tolerance   int
}

// Overlay returns the static frame overlay for this session.
func (s Session) Overlay() Overlay {
	return Overlay{
		Grid:      s.Geometry.GridLines(),
		Center:    s.Geometry.Center(),
		Tolerance: s.Tolerance,
	}
}

// Locate turns a selected detection into a result.
func (s Session) Locate(det marker.Detection) Result {
	c := det.Box.Centroid()
	dist, ok := s.Calibration.Distance(det.Box.W)
	return Result{
		Found:         true,
		Detection:     det,
		Centroid:      c,
		Zone:          zone.Classify(c.X, c.Y, s.Geometry.CenterX, s.Geometry.CenterY, s.Tolerance),
		DistanceCm:    dist,
		Indeterminate: !ok,
	}
}
