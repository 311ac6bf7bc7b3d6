// Package summary shows the result of a finished quiz run.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/physiktrainer/physiktrainer/internal/quiz"
	"github.com/physiktrainer/physiktrainer/internal/router"
	"github.com/physiktrainer/physiktrainer/internal/screen"
	"github.com/physiktrainer/physiktrainer/internal/ui/layout"
	"github.com/physiktrainer/physiktrainer/internal/ui/theme"
)

// SummaryScreen displays the run summary.
type SummaryScreen struct {
	learner string
	runID   string
	summary quiz.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(learner, runID string, summary quiz.Summary) *SummaryScreen {
	return &SummaryScreen{learner: learner, runID: runID, summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Auswertung"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Weiter"},
		{Key: "Esc", Description: "Themen"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString(center(theme.Title.Render("Geschafft!")))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Aufgaben: %d        Richtig: %d        Quote: %.0f%%",
		sum.Answered, sum.Correct, sum.Accuracy()*100)
	b.WriteString(center(theme.Body.Render(stats)))
	b.WriteString("\n")
	if sum.Invalid > 0 {
		b.WriteString(center(theme.Label.Render(fmt.Sprintf("Ungültige Eingaben: %d", sum.Invalid))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(sum.Outcomes) > 0 {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
			strings.Repeat("─", min(max(width-8, 0), 40)))
		b.WriteString(center(divider))
		b.WriteString("\n")
		for _, o := range sum.Outcomes {
			var line string
			switch {
			case o.Correct && o.Fuzzy:
				line = theme.Almost.Render(fmt.Sprintf("%-8s ~ fast richtig", o.ExerciseID))
			case o.Correct:
				line = theme.Correct.Render(fmt.Sprintf("%-8s ✓ richtig", o.ExerciseID))
			default:
				line = theme.Incorrect.Render(fmt.Sprintf("%-8s ✗ falsch", o.ExerciseID))
			}
			b.WriteString(center(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if s.learner == "" {
		b.WriteString(center(theme.Hint.Render("Als Gast gespielt: der Lernstand wurde nicht gespeichert.")))
		b.WriteString("\n")
	}
	b.WriteString(center(theme.Label.Render("Durchgang " + s.runID)))
	return b.String()
}
