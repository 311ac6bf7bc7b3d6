package progress

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a Repo kept in process memory.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[Key]Record
	events  []Transition
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		records: make(map[Key]Record),
		now:     time.Now,
	}
}

func (m *MemoryRepo) Transition(_ context.Context, k Key, trigger string, fn func(Box) Box) (Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := BoxUnseen
	if r, ok := m.records[k]; ok {
		from = r.Box
	}
	to := fn(from)
	if to <= BoxUnseen {
		to = BoxUnseen
		delete(m.records, k)
	} else {
		m.records[k] = Record{Key: k, Box: to, UpdatedAt: m.now()}
	}

	tr := Transition{Key: k, From: from, To: to, Trigger: trigger}
	if tr.Changed() {
		m.events = append(m.events, tr)
	}
	return tr, nil
}

func (m *MemoryRepo) Get(_ context.Context, k Key) (Box, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[k]; ok {
		return r.Box, nil
	}
	return BoxUnseen, nil
}

func (m *MemoryRepo) List(_ context.Context, learnerID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for k, r := range m.records {
		if k.LearnerID == learnerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseID < out[j].ExerciseID })
	return out, nil
}

func (m *MemoryRepo) Reset(_ context.Context, learnerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, r := range m.records {
		if k.LearnerID != learnerID {
			continue
		}
		delete(m.records, k)
		m.events = append(m.events, Transition{Key: k, From: r.Box, To: BoxUnseen, Trigger: TriggerReset})
		n++
	}
	return n, nil
}

// Events returns the recorded box changes in order.
func (m *MemoryRepo) Events() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transition, len(m.events))
	copy(out, m.events)
	return out
}
