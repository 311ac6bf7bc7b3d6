// Package session is the quiz screen: it asks the exercises of a quiz.Run
// one by one and shows the verdict after each answer.
package session

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/physiktrainer/physiktrainer/internal/grading"
	"github.com/physiktrainer/physiktrainer/internal/quiz"
	"github.com/physiktrainer/physiktrainer/internal/router"
	"github.com/physiktrainer/physiktrainer/internal/screen"
	"github.com/physiktrainer/physiktrainer/internal/screens/summary"
	"github.com/physiktrainer/physiktrainer/internal/typecode"
	"github.com/physiktrainer/physiktrainer/internal/ui/components"
	"github.com/physiktrainer/physiktrainer/internal/ui/layout"
)

// SessionScreen implements screen.Screen for a running quiz.
type SessionScreen struct {
	ctx    context.Context
	run    *quiz.Run
	input  components.TextInput
	choice components.MultiChoice

	// result is the verdict of the current exercise; nil while the learner
	// is still answering.
	result *quiz.Result
	// notice is the hint of an invalid submission.
	notice string
	errMsg string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)

// New creates the quiz screen for run.
func New(ctx context.Context, run *quiz.Run) *SessionScreen {
	s := &SessionScreen{ctx: ctx, run: run}
	s.prepare()
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *SessionScreen) Title() string {
	if ex, ok := s.run.Current(); ok && ex.Topic != "" {
		return ex.Topic
	}
	return "Quiz"
}

func (s *SessionScreen) Status() string {
	n, total := s.run.Position()
	sum := s.run.Summary()
	learner := s.run.Learner
	if learner == "" {
		learner = "Gast"
	}
	return fmt.Sprintf("%s  %d/%d  ✓ %d", learner, n, total, sum.Correct)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Weiter"},
			{Key: "Esc", Description: "Abbrechen"},
		}
	}
	if s.picking() {
		return []layout.KeyHint{
			{Key: "↑↓/1-9", Description: "Auswählen"},
			{Key: "Enter", Description: "Prüfen"},
			{Key: "Esc", Description: "Abbrechen"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Prüfen"},
		{Key: "Esc", Description: "Abbrechen"},
	}
}

// picking reports whether the current exercise is answered from a list.
func (s *SessionScreen) picking() bool {
	switch s.run.Shape() {
	case typecode.ShapeChoice, typecode.ShapePicture:
		return true
	}
	return false
}

// prepare resets the widgets for the current exercise.
func (s *SessionScreen) prepare() {
	s.result = nil
	s.notice = ""
	s.input = components.NewTextInput(placeholder(s.run.Shape()), 200)

	switch s.run.Shape() {
	case typecode.ShapeChoice:
		s.choice = components.NewMultiChoice(s.run.Choices())
	case typecode.ShapePicture:
		pics := s.run.Pictures()
		labels := make([]string, len(pics))
		for i, p := range pics {
			labels[i] = fmt.Sprintf("Bild %d", i+1)
			if p.Path != "" {
				labels[i] += "  " + p.Path
			}
		}
		s.choice = components.NewMultiChoice(labels)
	default:
		s.choice = components.NewMultiChoice(nil)
	}
}

func placeholder(shape typecode.Shape) string {
	switch shape {
	case typecode.ShapeTrueFalse:
		return "wahr oder falsch"
	case typecode.ShapeTwoPart:
		return "erster Begriff; zweiter Begriff"
	}
	return "Deine Antwort"
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	if s.result != nil {
		if kmsg.String() == "enter" || kmsg.String() == "space" {
			return s, s.next()
		}
		return s, nil
	}

	if s.picking() {
		s.choice, _ = s.choice.Update(kmsg)
		if s.choice.Picked() {
			s.submitPick(s.choice.Chosen)
		}
		return s, nil
	}

	if kmsg.String() == "enter" {
		s.submit(grading.Submission{Text: s.input.Value()})
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(kmsg)
	return s, cmd
}

func (s *SessionScreen) submitPick(shown int) {
	if s.run.Shape() == typecode.ShapePicture {
		pics := s.run.Pictures()
		id := ""
		if shown >= 0 && shown < len(pics) {
			id = pics[shown].ID
		}
		s.record(s.run.SubmitPicture(s.ctx, id))
		return
	}
	s.record(s.run.SubmitChoice(s.ctx, shown))
}

func (s *SessionScreen) submit(sub grading.Submission) {
	s.record(s.run.Submit(s.ctx, sub))
}

func (s *SessionScreen) record(res quiz.Result, err error) {
	if err != nil {
		s.errMsg = err.Error()
		return
	}
	if res.Invalid {
		s.notice = res.Hint
		s.choice.Unpick()
		return
	}
	s.notice = ""
	s.result = &res
	s.input.MarkGraded(res.Correct)
	s.choice.MarkGraded(res.Correct)
}

// next advances the run or replaces this screen with the summary.
func (s *SessionScreen) next() tea.Cmd {
	if s.run.Advance() {
		s.prepare()
		return s.input.Init()
	}
	return router.Replace(summary.New(s.run.Learner, s.run.ID, s.run.Summary()))
}
