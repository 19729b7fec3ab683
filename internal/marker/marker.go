package marker

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"unicode/utf8"
)

// DefaultPayload is the string the tracked marker carries.
const DefaultPayload = "PHONE_TRACKER"

// ErrInvalidPayload is returned when a payload is not valid UTF-8.
var ErrInvalidPayload = errors.New("payload is not valid UTF-8")

// Box is an axis-aligned bounding box in frame pixels.
type Box struct {
	X, Y, W, H int
}

// Centroid returns the box center using integer division.
func (b Box) Centroid() image.Point {
	return image.Pt(b.X+b.W/2, b.Y+b.H/2)
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// BoxFromPoints returns the smallest box enclosing pts, clamped to
// non-negative coordinates.
func BoxFromPoints(pts []image.Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	r.Min.X = max(r.Min.X, 0)
	r.Min.Y = max(r.Min.Y, 0)
	r.Max.X = max(r.Max.X, r.Min.X)
	r.Max.Y = max(r.Max.Y, r.Min.Y)
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Candidate is one region reported by a decoder, before its payload has
// been checked. Err is set when the decoder located a region but could not
// read it.
type Candidate struct {
	Box     Box
	Payload []byte
	Err     error
}

// Detection is a successfully decoded marker.
type Detection struct {
	Payload string
	Box     Box
}

// Decode turns a candidate into a detection.
func (c Candidate) Decode() (Detection, error) {
	if c.Err != nil {
		return Detection{}, c.Err
	}
	if !utf8.Valid(c.Payload) {
		return Detection{}, fmt.Errorf("%w: %q", ErrInvalidPayload, c.Payload)
	}
	return Detection{Payload: string(c.Payload), Box: c.Box}, nil
}

// SelectStats reports what a Select call did with its candidates.
type SelectStats struct {
	Scanned int
	Skipped int // candidates that failed to decode
}

// Select returns the first candidate whose payload equals expected exactly.
// Candidates that fail to decode are logged and skipped; later matches are
// ignored.
func Select(candidates []Candidate, expected string, logger *slog.Logger) (Detection, SelectStats, bool) {
	var st SelectStats
	for i, c := range candidates {
		st.Scanned++
		det, err := c.Decode()
		if err != nil {
			st.Skipped++
			if logger != nil {
				logger.Warn("marker: skipping undecodable candidate", "index", i, "error", err)
			}
			continue
		}
		if det.Payload == expected {
			return det, st, true
		}
	}
	return Detection{}, st, false
}
