// Package screen defines the contract between the app shell and its screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/physiktrainer/physiktrainer/internal/ui/layout"
)

// Screen is one page of the TUI.
type Screen interface {
	Init() tea.Cmd

	// Update handles messages and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content between header and footer.
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status text on the
// right of the header, such as the running score.
type StatusProvider interface {
	Status() string
}
