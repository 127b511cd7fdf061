package template

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-memory template catalog used by the seed tooling, the
// development sandbox, and tests.
type MemStore struct {
	mu        sync.RWMutex
	scenarios map[uuid.UUID]*ScenarioTemplate
	criteria  map[uuid.UUID][]*AssessmentCriterion
	findings  map[uuid.UUID][]*AssessmentFinding
}

func NewMemStore() *MemStore {
	return &MemStore{
		scenarios: make(map[uuid.UUID]*ScenarioTemplate),
		criteria:  make(map[uuid.UUID][]*AssessmentCriterion),
		findings:  make(map[uuid.UUID][]*AssessmentFinding),
	}
}

func (m *MemStore) GetScenario(_ context.Context, id uuid.UUID) (*ScenarioTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.scenarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *MemStore) ListScenarios(_ context.Context, limit, offset int) ([]*ScenarioTemplate, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*ScenarioTemplate, 0, len(m.scenarios))
	for _, t := range m.scenarios {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })

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

func (m *MemStore) GetAssessmentCriteria(_ context.Context, scenarioID uuid.UUID) ([]*AssessmentCriterion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cs, ok := m.criteria[scenarioID]
	if !ok {
		return nil, ErrNotFound
	}
	return cs, nil
}

func (m *MemStore) GetFindings(_ context.Context, scenarioID uuid.UUID) ([]*AssessmentFinding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fs, ok := m.findings[scenarioID]
	if !ok {
		return nil, ErrNotFound
	}
	return fs, nil
}

func (m *MemStore) PutScenario(_ context.Context, t *ScenarioTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.scenarios[t.ID] = t
	return nil
}

func (m *MemStore) PutAssessmentCriteria(_ context.Context, scenarioID uuid.UUID, criteria []*AssessmentCriterion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria[scenarioID] = criteria
	return nil
}

func (m *MemStore) PutFindings(_ context.Context, scenarioID uuid.UUID, findings []*AssessmentFinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findings[scenarioID] = findings
	return nil
}
