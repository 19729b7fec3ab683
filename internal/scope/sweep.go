package scope

import (
	"math"
	"time"

	"marker-tracker.klederson.com/internal/config"
	"marker-tracker.klederson.com/internal/zone"
)

const sweepTrailDeg = 60.0

// Sweep is the rotating search beam shown while the marker is lost.
type Sweep struct {
	Angle     float64 // Current angle in radians [0, 2π)
	StartTime time.Time
}

// NewSweep creates a new sweep starting at 0 degrees (up).
func NewSweep() *Sweep {
	return &Sweep{
		Angle:     0,
		StartTime: time.Now(),
	}
}

// Update advances the sweep angle based on elapsed time.
func (s *Sweep) Update() {
	s.advance(time.Since(s.StartTime))
}

func (s *Sweep) advance(elapsed time.Duration) {
	rps := float64(config.SearchSpinRPM) / 60.0
	s.Angle = math.Mod(elapsed.Seconds()*rps*2*math.Pi, 2*math.Pi)
}

// Intensity returns the glow intensity [0, 1] for a given cell angle:
// 1 at the beam head, falling off linearly across the trail.
func (s *Sweep) Intensity(cellAngle float64) float64 {
	diff := zone.NormalizeAngle(s.Angle - cellAngle)
	trailRad := sweepTrailDeg * math.Pi / 180.0
	if diff > trailRad {
		return 0
	}
	return 1.0 - diff/trailRad
}
