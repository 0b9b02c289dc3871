package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/ui/theme"
)

const bannerArt = ` ██╗    ██╗ ██████╗ ██████╗ ██████╗ ██╗███████╗
 ██║    ██║██╔═══██╗██╔══██╗██╔══██╗██║╚══███╔╝
 ██║ █╗ ██║██║   ██║██████╔╝██║  ██║██║  ███╔╝
 ██║███╗██║██║   ██║██╔══██╗██║  ██║██║ ███╔╝
 ╚███╔███╔╝╚██████╔╝██║  ██║██████╔╝██║███████╗
  ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═════╝ ╚═╝╚══════╝`

const bannerCompact = "W O R D I Z"

// bannerWidth is the column count of bannerArt.
const bannerWidth = 48

// renderBanner returns the title art, or the compact title when the
// content area is narrower than the art.
func renderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
