package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marker-tracker.klederson.com/internal/config"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, source, payload string, locked bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	status := StyleStatusSearching.Render("SEARCHING")
	if locked {
		status = StyleStatusLocked.Render("LOCKED")
	}

	info := StyleMenuLabel.Render(fmt.Sprintf("Source: %s  Marker: %s", source, payload))

	left := StyleMenuKey.Render(title) + menu
	right := status + "  " + info + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
