package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marker-tracker.klederson.com/internal/config"
	"marker-tracker.klederson.com/internal/tracker"
	"marker-tracker.klederson.com/internal/zone"
)

// RenderDetailPanel renders the marker readout beside the scope.
func RenderDetailPanel(r tracker.Result, g tracker.Geometry, width, height int, distHistory []float64) string {
	innerW := max(width-4, 20)

	lines := []string{
		StylePanelTitle.Render("MARKER"),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
		"",
	}

	if !r.Found {
		lines = append(lines, "  "+StylePrompt.Render(config.PromptText), "")
	} else {
		b := r.Detection.Box
		fields := []struct{ label, value string }{
			{"Payload", r.Detection.Payload},
			{"Zone", r.Zone.String()},
			{"Range", rangeLabel(r)},
			{"Centroid", fmt.Sprintf("(%d, %d)", r.Centroid.X, r.Centroid.Y)},
			{"Box", fmt.Sprintf("%dx%d @ (%d, %d)", b.W, b.H, b.X, b.Y)},
			{"Frame", fmt.Sprintf("#%d", r.Seq)},
		}
		for _, f := range fields {
			lines = append(lines, StyleFieldLabel.Render(fmt.Sprintf("  %-10s", f.label))+StyleFieldValue.Render(f.value))
		}
		lines = append(lines, "")
	}

	if len(distHistory) > 0 {
		sparkW := max(innerW-4, 10)
		lines = append(lines, StyleFieldLabel.Render("  Range History:"))
		spark := renderSparkline(distHistory, sparkW)
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(spark), "")
	}

	compassH := max(height-len(lines)-5, 5)
	compassW := min(innerW, compassH*3)

	var angle, dist float64
	centered := false
	if r.Found {
		angle = zone.Bearing(r.Centroid.X, r.Centroid.Y, g.CenterX, g.CenterY)
		dist = r.DistanceCm
		centered = r.Zone == zone.Center
	}
	if compass := RenderCompass(compassW, compassH, angle, dist, centered); compass != "" && r.Found {
		prefix := strings.Repeat(" ", max((innerW-compassW)/2, 0))
		for _, cl := range strings.Split(compass, "\n") {
			lines = append(lines, prefix+cl)
		}
		label := fmt.Sprintf("%s  %s", rangeLabel(r), r.Zone)
		pad := max((innerW-len(label))/2, 0)
		lines = append(lines, strings.Repeat(" ", pad)+StyleFieldValue.Render(label))
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	if len(lines) > height-2 {
		lines = lines[:max(height-2, 0)]
	}

	style := StylePanelBorder
	if r.Found {
		style = StylePanelActive
	}
	return style.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func rangeLabel(r tracker.Result) string {
	if r.Indeterminate {
		return "indeterminate"
	}
	return fmt.Sprintf("%.1f cm", r.DistanceCm)
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	start := 0
	if len(values) > width {
		start = len(values) - width
	}
	values = values[start:]

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = min(minV, v)
		maxV = max(maxV, v)
	}
	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		sb.WriteByte(chars[min(max(idx, 0), len(chars)-1)])
	}
	return sb.String()
}
