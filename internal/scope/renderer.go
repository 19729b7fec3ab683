package scope

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marker-tracker.klederson.com/internal/tracker"
)

var (
	colorBright = lipgloss.Color("#00FF41")
	colorMid    = lipgloss.Color("#008F11")
	colorDim    = lipgloss.Color("#004A0A")
	colorMarker = lipgloss.Color("#00FFAA")
	colorLabel  = lipgloss.Color("#FFCC00")

	styleCenter = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleGrid   = lipgloss.NewStyle().Foreground(colorMid)
	styleDead   = lipgloss.NewStyle().Foreground(colorLabel)
	styleDot    = lipgloss.NewStyle().Foreground(colorDim)
	styleBox    = lipgloss.NewStyle().Foreground(colorMarker)
	styleHit    = lipgloss.NewStyle().Foreground(colorMarker).Bold(true)
	styleLabel  = lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	styleQuad   = lipgloss.NewStyle().Foreground(colorMid).Bold(true)
)

// Scene is everything the scope needs for one redraw.
type Scene struct {
	Geometry  tracker.Geometry
	Tolerance int
	Result    tracker.Result
	Sweep     *Sweep // search beam, drawn only while the marker is lost
}

type cell struct {
	ch    byte
	style lipgloss.Style
	plain bool // unstyled blank
}

// Render draws the frame as a width x height grid of cells: center cross,
// dead-zone square, quadrant numerals and the tracked marker.
func Render(width, height int, sc Scene) string {
	if width < 10 || height < 5 || sc.Geometry.Width <= 0 {
		return ""
	}
	g := sc.Geometry
	vp := Viewport{Cols: width, Rows: height, FrameW: g.Width, FrameH: g.Height}
	cx, cy := vp.Cell(g.CenterX, g.CenterY)

	grid := make([][]cell, height)
	for row := range grid {
		grid[row] = make([]cell, width)
		for col := range grid[row] {
			grid[row][col] = background(col, row, cx, cy, sc)
		}
	}
	set := func(col, row int, ch byte, st lipgloss.Style) {
		if col >= 0 && col < width && row >= 0 && row < height {
			grid[row][col] = cell{ch: ch, style: st}
		}
	}

	// Dead zone square
	if sc.Tolerance > 0 {
		c0, r0 := vp.Cell(g.CenterX-sc.Tolerance, g.CenterY-sc.Tolerance)
		c1, r1 := vp.Cell(g.CenterX+sc.Tolerance, g.CenterY+sc.Tolerance)
		for col := c0; col <= c1; col++ {
			set(col, r0, '.', styleDead)
			set(col, r1, '.', styleDead)
		}
		for row := r0; row <= r1; row++ {
			set(c0, row, ':', styleDead)
			set(c1, row, ':', styleDead)
		}
	}

	// Center cross
	for col := 0; col < width; col++ {
		set(col, cy, '-', styleGrid)
	}
	for row := 0; row < height; row++ {
		set(cx, row, '|', styleGrid)
	}
	set(cx, cy, '+', styleCenter)

	// Quadrant numerals
	setText := func(col, row int, s string, st lipgloss.Style) {
		for i := 0; i < len(s); i++ {
			set(col+i, row, s[i], st)
		}
	}
	setText(width-3, 0, "I", styleQuad)
	setText(1, 0, "II", styleQuad)
	setText(1, height-1, "III", styleQuad)
	setText(width-3, height-1, "IV", styleQuad)

	if r := sc.Result; r.Found {
		b := r.Detection.Box
		c0, r0 := vp.Cell(b.X, b.Y)
		c1, r1 := vp.Cell(b.X+b.W, b.Y+b.H)
		for col := c0; col <= c1; col++ {
			set(col, r0, '#', styleBox)
			set(col, r1, '#', styleBox)
		}
		for row := r0; row <= r1; row++ {
			set(c0, row, '#', styleBox)
			set(c1, row, '#', styleBox)
		}
		mc, mr := vp.Cell(r.Centroid.X, r.Centroid.Y)
		set(mc, mr, '@', styleHit)

		label := MarkerLabel(r)
		lc := c1 + 2
		if lc+len(label) >= width {
			lc = c0 - len(label) - 1
		}
		setText(max(lc, 0), mr, label, styleLabel)
	}

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			c := grid[row][col]
			if c.plain {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(c.style.Render(string(c.ch)))
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// MarkerLabel is the short text placed beside the marker.
func MarkerLabel(r tracker.Result) string {
	if r.Indeterminate {
		return "?cm"
	}
	return fmt.Sprintf("%.0fcm", r.DistanceCm)
}

func background(col, row, cx, cy int, sc Scene) cell {
	if sc.Result.Found || sc.Sweep == nil {
		if (col+row)%4 == 0 {
			return cell{ch: '.', style: styleDot}
		}
		return cell{plain: true}
	}
	intensity := sc.Sweep.Intensity(CellAngle(col, row, cx, cy))
	color := sweepColor(intensity)
	if color == "" {
		if (col+row)%4 == 0 {
			return cell{ch: '.', style: styleDot}
		}
		return cell{plain: true}
	}
	return cell{ch: '.', style: lipgloss.NewStyle().Foreground(lipgloss.Color(color))}
}

func sweepColor(intensity float64) string {
	if intensity <= 0 {
		return ""
	}
	if intensity > 0.8 {
		return "#00FF41"
	}
	if intensity > 0.5 {
		return "#00CC33"
	}
	if intensity > 0.3 {
		return "#00AA22"
	}
	return "#005511"
}

// RenderLegend produces the scope legend line.
func RenderLegend(width int) string {
	legend := styleHit.Render("@ marker") + "  " +
		styleDead.Render(": dead zone") + "  " +
		styleCenter.Render("+ center")

	pad := (width - lipgloss.Width(legend)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + legend
}
