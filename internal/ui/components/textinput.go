package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/physiktrainer/physiktrainer/internal/ui/theme"
)

// TextInput wraps bubbles/textinput and shows a verdict mark once graded.
type TextInput struct {
	Model  textinput.Model
	graded bool
	ok     bool
}

// NewTextInput creates a focused text input. charLimit <= 0 means no limit.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update forwards messages to the input unless it is graded.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.graded {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.graded {
		if t.ok {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// MarkGraded freezes the input and shows the verdict mark.
func (t *TextInput) MarkGraded(ok bool) {
	t.graded = true
	t.ok = ok
}

// Clear empties the input and makes it editable again.
func (t *TextInput) Clear() {
	t.Model.Reset()
	t.graded = false
	t.ok = false
}
