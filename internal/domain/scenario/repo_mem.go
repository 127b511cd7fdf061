package scenario

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemAttempts is an in-memory attempt store for tests and the dev sandbox.
type MemAttempts struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Attempt
}

func NewMemAttempts() *MemAttempts {
	return &MemAttempts{items: make(map[uuid.UUID]*Attempt)}
}

func (m *MemAttempts) Insert(_ context.Context, a *Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[a.ID] = a
	return nil
}

func (m *MemAttempts) GetByID(_ context.Context, id uuid.UUID) (*Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *MemAttempts) ListByLearner(_ context.Context, learnerID uuid.UUID, limit, offset int) ([]*Attempt, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*Attempt
	for _, a := range m.items {
		if a.LearnerID == learnerID {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CompletedAt.After(all[j].CompletedAt) })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}
