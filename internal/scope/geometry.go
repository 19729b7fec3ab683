package scope

import (
	"math"

	"marker-tracker.klederson.com/internal/config"
	"marker-tracker.klederson.com/internal/zone"
)

// Viewport maps frame pixels onto a grid of terminal cells.
type Viewport struct {
	Cols, Rows     int
	FrameW, FrameH int
}

// Cell returns the cell containing frame point (x, y), clamped to the grid.
func (v Viewport) Cell(x, y int) (col, row int) {
	if v.FrameW <= 0 || v.FrameH <= 0 {
		return 0, 0
	}
	col = x * v.Cols / v.FrameW
	row = y * v.Rows / v.FrameH
	return clamp(col, 0, v.Cols-1), clamp(row, 0, v.Rows-1)
}

// CellAngle computes the angle from center to a cell, accounting for the
// terminal aspect ratio. Returns radians in [0, 2π), 0=up, clockwise.
func CellAngle(col, row, centerX, centerY int) float64 {
	dx := float64(col - centerX)
	dy := float64(row-centerY) / config.ScopeAspect
	return zone.NormalizeAngle(math.Atan2(dx, -dy))
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
