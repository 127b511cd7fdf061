package assessment

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emstrain/emstrain/internal/domain/template"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func testCriteria(scenarioID uuid.UUID) []*template.AssessmentCriterion {
	return []*template.AssessmentCriterion{
		{ID: "c1", ScenarioID: scenarioID, Phase: "primary", Order: 1, Label: "Scene safety", Required: true, Target: 30 * time.Second},
		{ID: "c2", ScenarioID: scenarioID, Phase: "primary", Order: 2, Label: "Airway", Required: true, Dependencies: []string{"c1"}, ExpectedFindings: []string{"f1"}},
		{ID: "c3", ScenarioID: scenarioID, Phase: "primary", Order: 2, Label: "Optional extra", Required: false},
		{ID: "c4", ScenarioID: scenarioID, Phase: "secondary", Order: 1, Label: "History", Required: true},
	}
}

func newTestManager(t *testing.T, scenarioID uuid.UUID) (*Manager, *fakeClock) {
	t.Helper()
	store := template.NewMemStore()
	if err := store.PutAssessmentCriteria(context.Background(), scenarioID, testCriteria(scenarioID)); err != nil {
		t.Fatalf("put criteria: %v", err)
	}
	m := NewManager(store, NewMemResults(), nil, nil, zerolog.Nop())
	clock := newFakeClock()
	m.now = clock.Now
	return m, clock
}

func TestManager_StartUnknownScenario(t *testing.T) {
	m, _ := newTestManager(t, uuid.New())
	_, err := m.Start(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_SecondStartFails(t *testing.T) {
	sid := uuid.New()
	m, _ := newTestManager(t, sid)
	learner := uuid.New()

	if _, err := m.Start(context.Background(), learner, sid); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Start(context.Background(), learner, sid); !errors.Is(err, ErrAssessmentActive) {
		t.Errorf("expected ErrAssessmentActive, got %v", err)
	}
}

func TestSession_AvailableCriteriaGating(t *testing.T) {
	sid := uuid.New()
	m, _ := newTestManager(t, sid)
	learner := uuid.New()

	if _, err := m.Start(context.Background(), learner, sid); err != nil {
		t.Fatalf("start: %v", err)
	}

	// c2 depends on c1, so only c1 and the dependency-free c3 are available.
	avail, err := m.AvailableCriteria(learner)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	ids := criterionIDs(avail)
	if !reflect.DeepEqual(ids, []string{"c1", "c3"}) {
		t.Errorf("available = %v, want [c1 c3]", ids)
	}

	// Performing c2 before c1 is a deliberate error.
	if _, err := m.Perform(learner, "c2", nil, ""); !errors.Is(err, ErrInvalidCriteria) {
		t.Errorf("expected ErrInvalidCriteria for unmet dependency, got %v", err)
	}

	if _, err := m.Perform(learner, "c1", nil, ""); err != nil {
		t.Fatalf("perform c1: %v", err)
	}
	avail, _ = m.AvailableCriteria(learner)
	ids = criterionIDs(avail)
	if !reflect.DeepEqual(ids, []string{"c2", "c3"}) {
		t.Errorf("available after c1 = %v, want [c2 c3]", ids)
	}
}

func TestSession_PhaseAdvancesForwardOnly(t *testing.T) {
	sid := uuid.New()
	m, _ := newTestManager(t, sid)
	learner := uuid.New()

	if _, err := m.Start(context.Background(), learner, sid); err != nil {
		t.Fatalf("start: %v", err)
	}

	a, err := m.Perform(learner, "c1", nil, "")
	if err != nil {
		t.Fatalf("perform c1: %v", err)
	}
	if a.Phase != PhasePrimary {
		t.Errorf("phase after c1 = %s, want primary (c2 still required)", a.Phase)
	}

	// Completing the last required criterion of the phase advances it; the
	// optional c3 is left behind and becomes unavailable.
	a, err = m.Perform(learner, "c2", []string{"f1"}, "")
	if err != nil {
		t.Fatalf("perform c2: %v", err)
	}
	if a.Phase != PhaseSecondary {
		t.Errorf("phase after c2 = %s, want secondary", a.Phase)
	}

	if _, err := m.Perform(learner, "c3", nil, ""); !errors.Is(err, ErrInvalidCriteria) {
		t.Errorf("criterion from an earlier phase must be rejected, got %v", err)
	}
	if _, err := m.Perform(learner, "c1", nil, ""); !errors.Is(err, ErrInvalidCriteria) {
		t.Errorf("repeated criterion must be rejected, got %v", err)
	}
}

func TestSession_PerformRecordsTiming(t *testing.T) {
	sid := uuid.New()
	m, clock := newTestManager(t, sid)
	learner := uuid.New()

	if _, err := m.Start(context.Background(), learner, sid); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(25 * time.Second)
	a, err := m.Perform(learner, "c1", nil, "scene is safe")
	if err != nil {
		t.Fatalf("perform: %v", err)
	}
	if len(a.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(a.Actions))
	}
	if a.Actions[0].Elapsed != 25*time.Second {
		t.Errorf("elapsed = %s, want 25s", a.Actions[0].Elapsed)
	}
}

func TestManager_CompletePersistsResult(t *testing.T) {
	sid := uuid.New()
	m, clock := newTestManager(t, sid)
	learner := uuid.New()

	if _, err := m.Start(context.Background(), learner, sid); err != nil {
		t.Fatalf("start: %v", err)
	}

	clock.Advance(20 * time.Second)
	if _, err := m.Perform(learner, "c1", nil, ""); err != nil {
		t.Fatalf("perform c1: %v", err)
	}
	clock.Advance(20 * time.Second)
	if _, err := m.Perform(learner, "c2", []string{"f1"}, ""); err != nil {
		t.Fatalf("perform c2: %v", err)
	}

	result, err := m.Complete(context.Background(), learner)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	// 2 of 3 required completed, both timed criteria on target, all
	// expected findings reported.
	ev := result.Evaluation
	if ev == nil {
		t.Fatal("expected evaluation on result")
	}
	if ev.Completeness <= 66 || ev.Completeness >= 67 {
		t.Errorf("completeness = %v, want 2/3", ev.Completeness)
	}
	if ev.Timeliness != 100 || ev.Accuracy != 100 {
		t.Errorf("timeliness/accuracy = %v/%v, want 100/100", ev.Timeliness, ev.Accuracy)
	}

	stored, err := m.results.GetByID(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("stored result: %v", err)
	}
	if stored.Score != result.Score {
		t.Error("persisted result differs from returned one")
	}

	if _, err := m.Complete(context.Background(), learner); !errors.Is(err, ErrNoActiveAssessment) {
		t.Errorf("second complete: expected ErrNoActiveAssessment, got %v", err)
	}
}

func TestSession_AvailableOrderingDeterministic(t *testing.T) {
	clock := newFakeClock()
	criteria := []*template.AssessmentCriterion{
		{ID: "b", Phase: "primary", Order: 1, Label: "B"},
		{ID: "a", Phase: "primary", Order: 1, Label: "A"},
		{ID: "z", Phase: "primary", Order: 0, Label: "Z"},
	}
	sess := newSession(uuid.New(), uuid.New(), criteria, clock.Now)

	got := criterionIDs(sess.AvailableCriteria())
	if !reflect.DeepEqual(got, []string{"z", "a", "b"}) {
		t.Errorf("order = %v, want [z a b]", got)
	}
}

func criterionIDs(cs []*template.AssessmentCriterion) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}
