package exercise

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the bank format major version this build reads.
const SupportedMajor = "v1"

//go:embed demo.json
var demoBank []byte

// bankSchema describes the on-disk bank file.
var bankSchema = map[string]any{
	"type":     "object",
	"required": []string{"version", "exercises"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string", "minLength": 2},
		"exercises": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "type", "answer"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"topic":       map[string]any{"type": "string"},
					"chapter":     map[string]any{"type": "string"},
					"difficulty":  map[string]any{"type": "integer", "minimum": 1, "maximum": 3},
					"type":        map[string]any{"type": "string"},
					"question":    map[string]any{"type": "string"},
					"unit":        map[string]any{"type": "string"},
					"answer":      map[string]any{"type": "string"},
					"note":        map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
					"hint":        map[string]any{"type": "string"},
					"options": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []string{"position", "text"},
							"properties": map[string]any{
								"position": map[string]any{"type": "integer", "minimum": 1},
								"text":     map[string]any{"type": "string"},
							},
						},
					},
					"pictures": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []string{"id", "position"},
							"properties": map[string]any{
								"id":       map[string]any{"type": "string", "minLength": 1},
								"position": map[string]any{"type": "integer", "minimum": 1},
								"path":     map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, not Go maps with typed slices.
		raw, err := json.Marshal(bankSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal bank schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const url = "schema://bank.json"
		if err := c.AddResource(url, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

type bankFile struct {
	Version   string      `json:"version"`
	Exercises []*Exercise `json:"exercises"`
}

// Bank is an in-memory Catalog loaded from a JSON bank file.
type Bank struct {
	Version string

	exercises []*Exercise
	byID      map[string]*Exercise
}

// LoadBank reads and validates the bank file at path.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	b, err := ParseBank(data)
	if err != nil {
		return nil, fmt.Errorf("load bank %s: %w", path, err)
	}
	return b, nil
}

// DemoBank returns the small bank bundled with the binary.
func DemoBank() (*Bank, error) {
	return ParseBank(demoBank)
}

// ParseBank validates data against the bank schema and builds a Bank.
func ParseBank(data []byte) (*Bank, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var f bankFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}

	if !semver.IsValid(f.Version) || semver.Major(f.Version) != SupportedMajor {
		return nil, fmt.Errorf("%w: %q (want %s.x.y)", ErrUnsupportedVersion, f.Version, SupportedMajor)
	}

	return NewBank(f.Version, f.Exercises)
}

// NewBank builds a Bank from already decoded exercises. Options and
// pictures are sorted by position.
func NewBank(version string, exercises []*Exercise) (*Bank, error) {
	b := &Bank{
		Version:   version,
		exercises: make([]*Exercise, 0, len(exercises)),
		byID:      make(map[string]*Exercise, len(exercises)),
	}
	for _, ex := range exercises {
		if ex == nil {
			continue
		}
		if _, dup := b.byID[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise id %q", ex.ID)
		}
		if err := checkPositions(ex); err != nil {
			return nil, err
		}
		ex.SortOptions()
		b.byID[ex.ID] = ex
		b.exercises = append(b.exercises, ex)
	}
	return b, nil
}

func checkPositions(ex *Exercise) error {
	seen := make(map[int]bool, len(ex.Options))
	for _, o := range ex.Options {
		if seen[o.Position] {
			return fmt.Errorf("exercise %s: duplicate option position %d", ex.ID, o.Position)
		}
		seen[o.Position] = true
	}
	ids := make(map[string]bool, len(ex.Pictures))
	for _, p := range ex.Pictures {
		if ids[p.ID] {
			return fmt.Errorf("exercise %s: duplicate picture id %q", ex.ID, p.ID)
		}
		ids[p.ID] = true
	}
	return nil
}

// Get returns the exercise with the given id.
func (b *Bank) Get(id string) (*Exercise, error) {
	ex, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ex, nil
}

// All returns every exercise in file order.
func (b *Bank) All() []*Exercise {
	out := make([]*Exercise, len(b.exercises))
	copy(out, b.exercises)
	return out
}

// ByTopic returns the exercises of one topic in file order. An empty topic
// matches everything.
func (b *Bank) ByTopic(topic string) []*Exercise {
	if topic == "" {
		return b.All()
	}
	var out []*Exercise
	for _, ex := range b.exercises {
		if ex.Topic == topic {
			out = append(out, ex)
		}
	}
	return out
}

// Topics lists the distinct topics in order of first appearance.
func (b *Bank) Topics() []string {
	seen := map[string]bool{}
	var out []string
	for _, ex := range b.exercises {
		if ex.Topic == "" || seen[ex.Topic] {
			continue
		}
		seen[ex.Topic] = true
		out = append(out, ex.Topic)
	}
	return out
}

// Len is the number of exercises.
func (b *Bank) Len() int { return len(b.exercises) }
