package zone

import "math"

// DefaultTolerance is the half-width in pixels of the dead-zone square
// around the frame center.
const DefaultTolerance = 80

// Label identifies where a marker sits relative to the frame center.
type Label int

const (
	Center Label = iota
	ZoneI        // right, up
	ZoneII       // left, up
	ZoneIII      // left, down
	ZoneIV       // right, down
)

func (l Label) String() string {
	switch l {
	case Center:
		return "Center"
	case ZoneI:
		return "Zone I"
	case ZoneII:
		return "Zone II"
	case ZoneIII:
		return "Zone III"
	case ZoneIV:
		return "Zone IV"
	default:
		return "Zone ?"
	}
}

type quadrant struct{ dx, dy int }

var quadrants = map[quadrant]Label{
	{+1, +1}: ZoneI,
	{-1, +1}: ZoneII,
	{-1, -1}: ZoneIII,
	{+1, -1}: ZoneIV,
}

// Classify maps a centroid to a zone. The dead zone is exclusive at its
// boundary. Screen Y grows downward, so a centroid above center has dy=+1.
// A tie on one axis counts as the negative side.
func Classify(cx, cy, centerX, centerY, tolerance int) Label {
	if abs(cx-centerX) < tolerance && abs(cy-centerY) < tolerance {
		return Center
	}
	dx := -1
	if cx > centerX {
		dx = 1
	}
	dy := -1
	if cy < centerY {
		dy = 1
	}
	return quadrants[quadrant{dx, dy}]
}

// Bearing computes the direction from center to a point.
// Returns radians in [0, 2π), where 0=up, increasing clockwise.
func Bearing(x, y, centerX, centerY int) float64 {
	dx := float64(x - centerX)
	dy := float64(y - centerY)
	return NormalizeAngle(math.Atan2(dx, -dy))
}

// NormalizeAngle wraps an angle to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Sector returns the 45° compass sector of an angle, 0=up, clockwise.
func Sector(a float64) int {
	return int(math.Round(NormalizeAngle(a)/(math.Pi/4))) % 8
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
