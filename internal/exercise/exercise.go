// Package exercise holds the exercise catalog the grading engine reads from.
package exercise

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNotFound           = errors.New("exercise not found")
	ErrUnsupportedVersion = errors.New("unsupported bank version")
)

// Difficulty is the level an exercise is filed under.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyPro
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyPro:
		return "pro"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// Option is an alternative or partial answer. Slot n (n >= 2) of an
// exercise addresses the option at Position n-1.
type Option struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Picture is one image of a picture-pick exercise.
type Picture struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Path     string `json:"path"`
}

// Exercise is a single question with its grading rule.
type Exercise struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic"`
	Chapter    string     `json:"chapter,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	TypeCode   string     `json:"type"`
	Question   string     `json:"question"`
	Unit       string     `json:"unit,omitempty"`

	// Answer is the canonical answer (slot 1).
	Answer      string    `json:"answer"`
	Note        string    `json:"note,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	Hint        string    `json:"hint,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Pictures    []Picture `json:"pictures,omitempty"`
}

// SortOptions orders options and pictures by position.
func (e *Exercise) SortOptions() {
	sort.SliceStable(e.Options, func(i, j int) bool {
		return e.Options[i].Position < e.Options[j].Position
	})
	sort.SliceStable(e.Pictures, func(i, j int) bool {
		return e.Pictures[i].Position < e.Pictures[j].Position
	})
}

// CorrectPicture returns the picture with the lowest position, which is the
// one a picture-pick exercise expects.
func (e *Exercise) CorrectPicture() (Picture, bool) {
	if len(e.Pictures) == 0 {
		return Picture{}, false
	}
	best := e.Pictures[0]
	for _, p := range e.Pictures[1:] {
		if p.Position < best.Position {
			best = p
		}
	}
	return best, true
}

// Choices returns the canonical answer followed by the options in position
// order. Index 0 is always the correct choice.
func (e *Exercise) Choices() []string {
	opts := make([]Option, len(e.Options))
	copy(opts, e.Options)
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Position < opts[j].Position })

	out := make([]string, 0, len(opts)+1)
	out = append(out, e.Answer)
	for _, o := range opts {
		out = append(out, o.Text)
	}
	return out
}

// Catalog is read access to a set of exercises.
type Catalog interface {
	Get(id string) (*Exercise, error)
	All() []*Exercise
	ByTopic(topic string) []*Exercise
}
