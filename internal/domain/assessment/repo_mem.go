package assessment

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemResults is an in-memory result store for tests and the dev sandbox.
type MemResults struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Result
}

func NewMemResults() *MemResults {
	return &MemResults{items: make(map[uuid.UUID]*Result)}
}

func (m *MemResults) Insert(_ context.Context, r *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[r.ID] = r
	return nil
}

func (m *MemResults) GetByID(_ context.Context, id uuid.UUID) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *MemResults) ListByLearner(_ context.Context, learnerID uuid.UUID, limit, offset int) ([]*Result, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*Result
	for _, r := range m.items {
		if r.LearnerID == learnerID {
			all = append(all, r)
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
