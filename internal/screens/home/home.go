// Package home is the topic picker shown when play starts without a topic.
package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/physiktrainer/physiktrainer/internal/screen"
	"github.com/physiktrainer/physiktrainer/internal/ui/components"
	"github.com/physiktrainer/physiktrainer/internal/ui/layout"
	"github.com/physiktrainer/physiktrainer/internal/ui/theme"
)

// Topic is one entry of the picker. An empty Name stands for all topics.
type Topic struct {
	Name  string
	Count int
}

// StartFunc builds the command that starts a quiz over topic.
type StartFunc func(topic string) tea.Cmd

// HomeScreen lists the topics of the bank.
type HomeScreen struct {
	menu    components.Menu
	learner string
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.StatusProvider = (*HomeScreen)(nil)

// New creates the picker. topics are shown in order; topics without
// exercises are disabled.
func New(learner string, topics []Topic, start StartFunc) *HomeScreen {
	items := make([]components.MenuItem, 0, len(topics))
	for _, tp := range topics {
		label := tp.Name
		if label == "" {
			label = "Alle Themen"
		}
		items = append(items, components.MenuItem{
			Label:    label,
			Detail:   fmt.Sprintf("%d Aufgaben", tp.Count),
			Disabled: tp.Count == 0,
			Action:   func() tea.Cmd { return start(tp.Name) },
		})
	}
	return &HomeScreen{menu: components.NewMenu(items), learner: learner}
}

func (h *HomeScreen) Init() tea.Cmd { return nil }

func (h *HomeScreen) Title() string { return "Themen" }

func (h *HomeScreen) Status() string {
	if h.learner == "" {
		return "Gast"
	}
	return h.learner
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓/1-9", Description: "Auswählen"},
		{Key: "Enter", Description: "Starten"},
		{Key: "Ctrl+C", Description: "Beenden"},
	}
}

// ErrorMsg reports a quiz that could not be started.
type ErrorMsg struct{ Err error }

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		h.errMsg = msg.Err.Error()
		return h, nil
	case tea.KeyMsg:
		h.errMsg = ""
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Welches Thema möchtest du üben?"))
	b.WriteString("\n\n")
	if len(h.menu.Items) == 0 {
		b.WriteString(theme.Hint.Render("Keine Aufgaben vorhanden."))
	} else {
		b.WriteString(h.menu.View())
	}
	if h.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render(h.errMsg))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
