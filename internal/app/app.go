// Package app is the Bubble Tea shell of the interactive quiz.
package app

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/physiktrainer/physiktrainer/internal/exercise"
	"github.com/physiktrainer/physiktrainer/internal/quiz"
	"github.com/physiktrainer/physiktrainer/internal/router"
	"github.com/physiktrainer/physiktrainer/internal/screen"
	"github.com/physiktrainer/physiktrainer/internal/screens/home"
	"github.com/physiktrainer/physiktrainer/internal/screens/session"
	"github.com/physiktrainer/physiktrainer/internal/ui/layout"
)

// ErrNoExercises is returned when a topic has nothing to ask.
var ErrNoExercises = errors.New("keine Aufgaben für dieses Thema")

// Options holds the dependencies of the app.
type Options struct {
	Ctx     context.Context
	Service *quiz.Service
	Bank    *exercise.Bank
	Learner string

	// Topic starts a quiz right away instead of showing the topic picker.
	Topic string
	// Limit caps the number of exercises per run; 0 asks all.
	Limit int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(opts Options) (AppModel, error) {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	if opts.Topic != "" {
		s, err := startRun(opts, opts.Topic)
		if err != nil {
			return AppModel{}, err
		}
		return AppModel{router: router.New(s)}, nil
	}

	start := func(topic string) tea.Cmd {
		s, err := startRun(opts, topic)
		if err != nil {
			return func() tea.Msg { return home.ErrorMsg{Err: err} }
		}
		return router.Push(s)
	}
	return AppModel{router: router.New(home.New(opts.Learner, topics(opts.Bank), start))}, nil
}

// topics lists "all topics" followed by each topic of the bank.
func topics(b *exercise.Bank) []home.Topic {
	out := []home.Topic{{Count: b.Len()}}
	for _, name := range b.Topics() {
		out = append(out, home.Topic{Name: name, Count: len(b.ByTopic(name))})
	}
	return out
}

// startRun orders the topic's exercises for the learner and opens a quiz.
func startRun(opts Options, topic string) (screen.Screen, error) {
	exs, err := quiz.Order(opts.Ctx, opts.Service.Tracker(), opts.Learner, opts.Bank.ByTopic(topic), opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("order exercises: %w", err)
	}
	if len(exs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoExercises, topic)
	}
	run := quiz.NewRun(opts.Service, opts.Learner, exs)
	return session.New(opts.Ctx, run), nil
}

func (m AppModel) Init() tea.Cmd {
	if s := m.router.Active(); s != nil {
		return s.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case router.PopScreenMsg:
		if m.router.Depth() <= 1 {
			return m, tea.Quit
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	footerHints := []layout.KeyHint{
		{Key: "Esc", Description: "Zurück"},
		{Key: "Ctrl+C", Description: "Beenden"},
	}
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			footerHints = kp.KeyHints()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(footerHints, m.width)
	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	model, err := newAppModel(opts)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
