package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marker-tracker.klederson.com/internal/tracker"
)

// RenderStatusBar renders the bottom status bar with loop counters.
func RenderStatusBar(width int, st tracker.Stats, state tracker.State, g tracker.Geometry) string {
	var status string
	switch {
	case state == tracker.StateShuttingDown || state == tracker.StateTerminated:
		status = StyleStatusError.Render("[STOPPED]")
	case st.ConsecutiveFailures > 0:
		status = StyleStatusSearching.Render(fmt.Sprintf("[DROPPING x%d]", st.ConsecutiveFailures))
	default:
		status = StyleStatusLocked.Render("[" + strings.ToUpper(state.String()) + "]")
	}

	info := fmt.Sprintf(" Frames: %d  Dropped: %d  Found: %.0f%%  Skipped: %d  Frame: %dx%d",
		st.Frames, st.SoftFailures, st.FoundRatio()*100, st.SkippedCandidates, g.Width, g.Height)

	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)

	gap := width - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}
	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
