package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/physiktrainer/physiktrainer/internal/typecode"
	"github.com/physiktrainer/physiktrainer/internal/ui/components"
	"github.com/physiktrainer/physiktrainer/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render("Fehler: "+s.errMsg))
	}
	ex, ok := s.run.Current()
	if !ok {
		return ""
	}

	cw := min(max(width-8, 20), 72)
	var b strings.Builder

	n, total := s.run.Position()
	b.WriteString(components.NewProgressBar(fmt.Sprintf("Aufgabe %d/%d", n, total), n-1, total, cw).View())
	b.WriteString("\n\n")

	if ex.Chapter != "" {
		b.WriteString(theme.Label.Render(ex.Chapter))
		b.WriteString("\n")
	}
	b.WriteString(theme.Body.Bold(true).Width(cw).Render(ex.Question))
	b.WriteString("\n\n")

	if s.picking() {
		b.WriteString(s.choice.View())
	} else {
		b.WriteString(s.input.View())
		if ex.Unit != "" {
			b.WriteString(" " + theme.Label.Render(ex.Unit))
		}
		b.WriteString("\n")
		if s.run.Shape() == typecode.ShapeTwoPart && s.result == nil {
			b.WriteString(theme.Hint.Render("Zwei Begriffe mit ';' trennen."))
			b.WriteString("\n")
		}
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(s.notice))
		b.WriteString("\n")
	}
	if s.result != nil {
		b.WriteString("\n")
		b.WriteString(s.feedback(cw))
	} else if ex.Hint != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Width(cw).Render("Tipp: " + ex.Hint))
	}

	card := theme.Card.Width(cw + 6).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *SessionScreen) feedback(cw int) string {
	res := s.result
	style := theme.Incorrect
	switch {
	case res.Correct && res.Fuzzy:
		style = theme.Almost
	case res.Correct:
		style = theme.Correct
	}

	var b strings.Builder
	b.WriteString(style.Width(cw).Render(res.Hint))
	if ex, ok := s.run.Current(); ok && !res.Correct && ex.Explanation != "" && !strings.Contains(res.Hint, ex.Explanation) {
		b.WriteString("\n")
		b.WriteString(theme.Body.Width(cw).Render(ex.Explanation))
	}
	if tr := res.Transition; tr.Changed() {
		b.WriteString("\n")
		b.WriteString(theme.Label.Render(fmt.Sprintf("Lernstand: Box %d → Box %d", int(tr.From), int(tr.To))))
	}
	return b.String()
}
