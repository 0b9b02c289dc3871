package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordiz/internal/ui/layout"
)

// Screen is one page of the terminal app. The router owns the stack and
// hands every message to the top screen.
type Screen interface {
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body only; the app draws header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// HeaderProvider lets a screen put a status string, such as drill
// progress, on the right side of the header.
type HeaderProvider interface {
	HeaderStatus() string
}

// Resumer is implemented by screens that refresh when they become active
// again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}
