package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/ui/theme"
)

// ContentWidth returns the inner width shared by every panel on a screen so
// stacked boxes line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	return max(20, min(w, 64))
}

// Frame centers content in a double-bordered box filling width x height.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Panel wraps content in a rounded card cw columns wide.
func Panel(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(max(cw-2, 0)).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}
