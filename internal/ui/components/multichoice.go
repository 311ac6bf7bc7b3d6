package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/physiktrainer/physiktrainer/internal/ui/theme"
)

// MultiChoice is a vertical list the learner picks one entry from. The
// correct entry is unknown to the component; after grading the caller marks
// the chosen entry right or wrong.
type MultiChoice struct {
	Options  []string
	Selected int
	// Chosen is the picked entry, -1 while nothing was picked.
	Chosen int
	graded bool
	ok     bool
}

// NewMultiChoice creates a choice list with the cursor on the first entry.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options, Chosen: -1}
}

// Update handles navigation. Enter or a digit key picks an entry.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Chosen >= 0 {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		if len(m.Options) > 0 {
			m.Chosen = m.Selected
		}
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Options) {
			m.Selected = n - 1
			m.Chosen = n - 1
		}
	}
	return m, nil
}

// Picked reports whether an entry was chosen.
func (m MultiChoice) Picked() bool { return m.Chosen >= 0 }

// Unpick reopens the list, e.g. after an invalid submission.
func (m *MultiChoice) Unpick() { m.Chosen = -1 }

// MarkGraded colors the chosen entry.
func (m *MultiChoice) MarkGraded(ok bool) {
	m.graded = true
	m.ok = ok
}

// View renders the list.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.graded {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.graded && i == m.Chosen && m.ok:
			style = theme.Correct
		case m.graded && i == m.Chosen:
			style = theme.Incorrect
		case m.graded:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
