package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emstrain/emstrain/internal/domain/evaluation"
	"github.com/emstrain/emstrain/internal/domain/template"
	"github.com/emstrain/emstrain/internal/platform/oracle"
	"github.com/emstrain/emstrain/internal/platform/telemetry"
)

// Manager owns the active encounter sessions, one per learner. Completed
// encounters are evaluated, persisted as attempts, and reported to the
// tracking recorder.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	templates template.Store
	orc       oracle.Oracle
	attempts  AttemptStore
	rec       telemetry.Recorder
	metrics   *telemetry.Provider
	log       zerolog.Logger
	now       func() time.Time
}

func NewManager(templates template.Store, orc oracle.Oracle, attempts AttemptStore, rec telemetry.Recorder, metrics *telemetry.Provider, log zerolog.Logger) *Manager {
	if rec == nil {
		rec = telemetry.Noop{}
	}
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		templates: templates,
		orc:       orc,
		attempts:  attempts,
		rec:       rec,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Start creates an encounter session for the learner from the given scenario
// template and begins the background vitals refresh.
func (m *Manager) Start(ctx context.Context, learnerID, scenarioID uuid.UUID) (*Encounter, error) {
	tpl, err := m.templates.GetScenario(ctx, scenarioID)
	if errors.Is(err, template.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load scenario template: %w", err)
	}

	m.mu.Lock()
	if _, active := m.sessions[learnerID]; active {
		m.mu.Unlock()
		return nil, ErrEncounterActive
	}
	sess := newSession(learnerID, tpl, m.orc, m.log, m.now)
	m.sessions[learnerID] = sess
	active := len(m.sessions)
	m.mu.Unlock()

	snap := sess.Snapshot()
	m.setActiveGauge(active)
	m.rec.Record(telemetry.Event{
		Type:       telemetry.EventActivityStarted,
		Activity:   "scenario",
		LearnerID:  learnerID,
		ActivityID: snap.ID,
		At:         m.now(),
	})
	m.log.Info().
		Str("learner_id", learnerID.String()).
		Str("scenario", tpl.Title).
		Msg("encounter started")
	return snap, nil
}

// Get returns a snapshot of the learner's active encounter.
func (m *Manager) Get(learnerID uuid.UUID) (*Encounter, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(), nil
}

// Ask forwards a learner question to the active session.
func (m *Manager) Ask(ctx context.Context, learnerID uuid.UUID, question string) (string, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return "", err
	}
	return sess.Ask(ctx, question)
}

// Intervene records an intervention in the active session.
func (m *Manager) Intervene(ctx context.Context, learnerID uuid.UUID, name, category string, params map[string]string, steps int) (*Intervention, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return nil, err
	}
	iv, err := sess.Intervene(ctx, name, category, params, steps)
	if err != nil {
		return nil, err
	}
	m.rec.Record(telemetry.Event{
		Type:       telemetry.EventActivityProgress,
		Activity:   "scenario",
		LearnerID:  learnerID,
		ActivityID: sess.enc.ID,
		At:         m.now(),
		Detail:     map[string]any{"intervention": name},
	})
	return iv, nil
}

// IdentifyRedFlag marks a red flag identified in the active session.
func (m *Manager) IdentifyRedFlag(learnerID uuid.UUID, flagID string) (*RedFlag, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return nil, err
	}
	return sess.IdentifyRedFlag(flagID)
}

// AddNote appends a note to the active session.
func (m *Manager) AddNote(learnerID uuid.UUID, text string) error {
	sess, err := m.session(learnerID)
	if err != nil {
		return err
	}
	return sess.AddNote(text)
}

// Complete finishes the learner's encounter, evaluates the trace, persists
// the attempt, and emits a completion event. The tracking emission is
// best-effort; persistence failures are returned.
func (m *Manager) Complete(ctx context.Context, learnerID uuid.UUID) (*Attempt, error) {
	sess, err := m.session(learnerID)
	if err != nil {
		return nil, err
	}
	enc, err := sess.Complete(ctx)
	if err != nil {
		return nil, err
	}
	active := m.remove(learnerID)

	feedback := evaluation.Evaluate(sess.tpl, enc.Trace())
	feedback.EncounterID = enc.ID

	attempt := &Attempt{
		ID:            uuid.New(),
		EncounterID:   enc.ID,
		LearnerID:     enc.LearnerID,
		ScenarioID:    enc.ScenarioID,
		ScenarioTitle: enc.ScenarioTitle,
		Score:         feedback.OverallScore,
		Feedback:      feedback,
		StartedAt:     enc.StartedAt,
		CompletedAt:   *enc.CompletedAt,
	}
	if err := m.attempts.Insert(ctx, attempt); err != nil {
		return nil, fmt.Errorf("persist attempt: %w", err)
	}

	m.setActiveGauge(active)
	m.rec.Record(telemetry.Event{
		Type:       telemetry.EventActivityCompleted,
		Activity:   "scenario",
		LearnerID:  learnerID,
		ActivityID: enc.ID,
		Score:      attempt.Score,
		At:         m.now(),
	})
	m.log.Info().
		Str("learner_id", learnerID.String()).
		Int("score", attempt.Score).
		Msg("encounter completed")
	return attempt, nil
}

// Abandon discards the learner's encounter without evaluation.
func (m *Manager) Abandon(ctx context.Context, learnerID uuid.UUID) error {
	sess, err := m.session(learnerID)
	if err != nil {
		return err
	}
	if _, err := sess.Abandon(ctx); err != nil {
		return err
	}
	m.setActiveGauge(m.remove(learnerID))
	m.log.Info().Str("learner_id", learnerID.String()).Msg("encounter abandoned")
	return nil
}

// Shutdown abandons every active session, stopping their refresh loops.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	learners := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		learners = append(learners, id)
	}
	m.mu.Unlock()

	for _, id := range learners {
		if err := m.Abandon(ctx, id); err != nil && !errors.Is(err, ErrNoActiveEncounter) {
			m.log.Warn().Err(err).Msg("session shutdown")
		}
	}
}

func (m *Manager) session(learnerID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[learnerID]
	if !ok {
		return nil, ErrNoActiveEncounter
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
		m.metrics.SetActiveEncounters(int64(n))
	}
}
