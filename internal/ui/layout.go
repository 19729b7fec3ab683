package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the scope panel and detail panel horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, scopePanel, detailPanel, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, scopePanel, detailPanel)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}

// RenderScopePanel wraps scope content with a styled border.
// The actual scope rendering is done externally to avoid import cycles.
func RenderScopePanel(width, height int, scopeContent, legend string) string {
	content := scopeContent + "\n" + legend
	return StylePanelBorder.Width(width - 2).Height(height - 2).Render(content)
}
