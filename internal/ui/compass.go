package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marker-tracker.klederson.com/internal/zone"
)

// compassRange is the distance at which the arrow is shortest.
const compassRange = 300.0 // cm

// RenderCompass renders a compass with an arrow from the frame center
// toward the marker. angle: radians (0=up, clockwise); distanceCm <= 0
// means unknown. A centered marker draws a bullseye instead of an arrow.
func RenderCompass(width, height int, angle, distanceCm float64, centered bool) string {
	if width < 9 || height < 5 {
		return ""
	}

	grid := make([][]byte, height)
	isArrow := make([][]bool, height)
	for i := range grid {
		grid[i] = make([]byte, width)
		isArrow[i] = make([]bool, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	fcx := float64(width) / 2.0
	fcy := float64(height) / 2.0
	rx := math.Max(fcx-2.0, 3) // horizontal radius in columns
	ry := math.Max(fcy-2.0, 2) // vertical radius in rows

	put := func(col, row int, ch byte, arrow bool) {
		if col >= 0 && col < width && row >= 0 && row < height {
			grid[row][col] = ch
			isArrow[row][col] = arrow
		}
	}

	// Ring
	steps := 80
	for i := 0; i < steps; i++ {
		a := float64(i) * 2 * math.Pi / float64(steps)
		col := int(math.Round(fcx + rx*math.Sin(a)))
		row := int(math.Round(fcy - ry*math.Cos(a)))
		if col >= 0 && col < width && row >= 0 && row < height && grid[row][col] == ' ' {
			grid[row][col] = ringChar(a)
		}
	}

	cx := int(math.Round(fcx))
	cy := int(math.Round(fcy))

	// Screen direction markers
	put(cx, cy-int(math.Round(ry))-1, 'U', false)
	put(cx, cy+int(math.Round(ry))+1, 'D', false)
	put(cx+int(math.Round(rx))+1, cy, 'R', false)
	put(cx-int(math.Round(rx))-1, cy, 'L', false)

	// Cross hairs
	for r := cy - int(ry) + 1; r < cy+int(ry); r++ {
		if r != cy && r >= 0 && r < height && grid[r][cx] == ' ' {
			grid[r][cx] = ':'
		}
	}
	for c := cx - int(rx) + 1; c < cx+int(rx); c++ {
		if c != cx && c >= 0 && c < width && grid[cy][c] == ' ' {
			grid[cy][c] = '.'
		}
	}

	if centered {
		put(cx-1, cy, '(', true)
		put(cx, cy, '@', true)
		put(cx+1, cy, ')', true)
	} else {
		put(cx, cy, '+', false)
		drawArrow(put, fcx, fcy, rx, ry, angle, arrowFraction(distanceCm))
	}

	arrowSty := lipgloss.NewStyle().Foreground(lipgloss.Color(proximityColor(distanceCm))).Bold(true)
	ringSty := lipgloss.NewStyle().Foreground(ColorDimGreen)
	axisSty := lipgloss.NewStyle().Foreground(lipgloss.Color("#003300"))
	markSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			ch := grid[row][col]
			switch {
			case isArrow[row][col]:
				sb.WriteString(arrowSty.Render(string(ch)))
			case ch == 'U' || ch == 'D' || ch == 'L' || ch == 'R' || ch == '+':
				sb.WriteString(markSty.Render(string(ch)))
			case ch == ':' || ch == '.':
				sb.WriteString(axisSty.Render(string(ch)))
			case ch != ' ':
				sb.WriteString(ringSty.Render(string(ch)))
			default:
				sb.WriteByte(' ')
			}
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// arrowFraction maps distance to arrow length as a share of the radius:
// closer markers get longer arrows.
func arrowFraction(distanceCm float64) float64 {
	const maxFrac, minFrac = 0.85, 0.3
	if distanceCm <= 0 {
		return minFrac
	}
	return maxFrac - (maxFrac-minFrac)*math.Min(distanceCm/compassRange, 1.0)
}

func drawArrow(put func(col, row int, ch byte, arrow bool), fcx, fcy, rx, ry, angle, frac float64) {
	sinA := math.Sin(angle)
	cosA := math.Cos(angle)

	shaftSteps := max(int(math.Max(rx, ry)*frac), 2)
	tipCol, tipRow := int(math.Round(fcx)), int(math.Round(fcy))
	for s := 1; s <= shaftSteps; s++ {
		t := float64(s) / float64(shaftSteps) * frac
		tipCol = int(math.Round(fcx + t*rx*sinA))
		tipRow = int(math.Round(fcy - t*ry*cosA))
		put(tipCol, tipRow, shaftChar(angle), true)
	}
	put(tipCol, tipRow, arrowTip(angle), true)
}

func ringChar(a float64) byte {
	return "-\\|/-\\|/"[zone.Sector(a)]
}

// shaftChar returns the line character for a given angle direction.
func shaftChar(a float64) byte {
	return "|\\-/|\\-/"[zone.Sector(a)]
}

// arrowTip returns the arrowhead character for a given angle.
func arrowTip(a float64) byte {
	return "^/>\\v/<\\"[zone.Sector(a)]
}

// proximityColor maps distance to a green shade (brighter = closer).
func proximityColor(distanceCm float64) string {
	switch {
	case distanceCm <= 0:
		return "#008F11"
	case distanceCm < 30:
		return "#00FF41"
	case distanceCm < 60:
		return "#00CC33"
	case distanceCm < 120:
		return "#00AA22"
	case distanceCm < 240:
		return "#008F11"
	default:
		return "#005511"
	}
}
