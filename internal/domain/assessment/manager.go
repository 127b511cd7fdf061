package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emstrain/emstrain/internal/domain/template"
	"github.com/emstrain/emstrain/internal/platform/telemetry"
)

// Manager owns the active assessment sessions, one per learner.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	templates template.Store
	results   ResultStore
	rec       telemetry.Recorder
	metrics   *telemetry.Provider
	log       zerolog.Logger
	now       func() time.Time
}

func NewManager(templates template.Store, results ResultStore, rec telemetry.Recorder, metrics *telemetry.Provider, log zerolog.Logger) *Manager {
	if rec == nil {
		rec = telemetry.Noop{}
	}
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		templates: templates,
		results:   results,
		rec:       rec,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Start opens an assessment session for the learner against the scenario's
// criteria catalog.
func (m *Manager) Start(ctx context.Context, learnerID, scenarioID uuid.UUID) (*Assessment, error) {
	criteria, err := m.templates.GetAssessmentCriteria(ctx, scenarioID)
	if errors.Is(err, template.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load criteria catalog: %w", err)
	}

	m.mu.Lock()
	if _, active := m.sessions[learnerID]; active {
		m.mu.Unlock()
		return nil, ErrAssessmentActive
	}
	sess := newSession(learnerID, scenarioID, criteria, m.now)
	m.sessions[learnerID] = sess
	active := len(m.sessions)
	m.mu.Unlock()

	snap := sess.Snapshot()
	m.setActiveGauge(active)
	m.rec.Record(telemetry.Event{
		Type:       telemetry.EventActivityStarted,
		Activity:   "assessment",
		LearnerID:  learnerID,
		ActivityID: snap.ID,
		At:         m.now(),
	})
	return snap, nil
}

// Get returns a snapshot of the learner's active assessment.
func (m *Manager) Get(learnerID uuid.UUID) (*Assessment, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(), nil
}

// AvailableCriteria returns the currently selectable criteria.
func (m *Manager) AvailableCriteria(learnerID uuid.UUID) ([]*template.AssessmentCriterion, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return nil, err
	}
	return sess.AvailableCriteria(), nil
}

// Perform records one assessment step for the learner.
func (m *Manager) Perform(learnerID uuid.UUID, criterionID string, findingIDs []string, notes string) (*Assessment, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return nil, err
	}
	a, err := sess.Perform(criterionID, findingIDs, notes)
	if err != nil {
		return nil, err
	}
	m.rec.Record(telemetry.Event{
		Type:       telemetry.EventActivityProgress,
		Activity:   "assessment",
		LearnerID:  learnerID,
		ActivityID: a.ID,
		At:         m.now(),
		Detail:     map[string]any{"criterion": criterionID, "phase": string(a.Phase)},
	})
	return a, nil
}

// Complete finishes the learner's assessment, persists the result, and emits
// a completion event.
func (m *Manager) Complete(ctx context.Context, learnerID uuid.UUID) (*Result, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return nil, err
	}
	a, ev, err := sess.Complete()
	if err != nil {
		return nil, err
	}
	active := m.remove(learnerID)

	result := &Result{
		ID:           uuid.New(),
		AssessmentID: a.ID,
		LearnerID:    a.LearnerID,
		ScenarioID:   a.ScenarioID,
		Score:        ev.OverallScore,
		Evaluation:   ev,
		StartedAt:    a.StartedAt,
		CompletedAt:  *a.CompletedAt,
	}
	if err := m.results.Insert(ctx, result); err != nil {
		return nil, fmt.Errorf("persist assessment result: %w", err)
	}

	m.setActiveGauge(active)
	m.rec.Record(telemetry.Event{
		Type:       telemetry.EventActivityCompleted,
		Activity:   "assessment",
		LearnerID:  learnerID,
		ActivityID: a.ID,
		Score:      result.Score,
		At:         m.now(),
	})
	m.log.Info().
		Str("learner_id", learnerID.String()).
		Int("score", result.Score).
		Msg("assessment completed")
	return result, nil
}

// Abandon discards the learner's assessment without scoring.
func (m *Manager) Abandon(learnerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[learnerID]; !ok {
		return ErrNoActiveAssessment
	}
	delete(m.sessions, learnerID)
	if m.metrics != nil {
		m.metrics.SetActiveAssessments(int64(len(m.sessions)))
	}
	return nil
}

func (m *Manager) session(learnerID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[learnerID]
	if !ok {
		return nil, ErrNoActiveAssessment
	}
	return sess, nil
}

func (m *Manager) remove(learnerID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, learnerID)
	return len(m.sessions)
}

func (m *Manager) setActiveGauge(n int) {
	if m.metrics != nil {
		m.metrics.SetActiveAssessments(int64(n))
	}
}
