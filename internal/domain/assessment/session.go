package assessment

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emstrain/emstrain/internal/domain/evaluation"
	"github.com/emstrain/emstrain/internal/domain/template"
)

// Session drives one phase-gated patient assessment. All operations are
// serialized by the session mutex.
type Session struct {
	mu       sync.Mutex
	a        *Assessment
	criteria []*template.AssessmentCriterion
	byID     map[string]*template.AssessmentCriterion
	now      func() time.Time
}

func newSession(learnerID, scenarioID uuid.UUID, criteria []*template.AssessmentCriterion, now func() time.Time) *Session {
	byID := make(map[string]*template.AssessmentCriterion, len(criteria))
	for _, c := range criteria {
		byID[c.ID] = c
	}
	return &Session{
		a: &Assessment{
			ID:         uuid.New(),
			LearnerID:  learnerID,
			ScenarioID: scenarioID,
			Phase:      PhasePrimary,
			StartedAt:  now(),
			Completed:  make(map[string]bool),
		},
		criteria: criteria,
		byID:     byID,
		now:      now,
	}
}

// Snapshot returns a deep copy of the assessment state.
func (s *Session) Snapshot() *Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Clone()
}

// AvailableCriteria returns the criteria that may be performed right now:
// members of the current phase whose dependencies are all completed and
// which are not yet completed themselves. The order is deterministic,
// template Order first, criterion id as tie-break.
func (s *Session) AvailableCriteria() []*template.AssessmentCriterion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available()
}

func (s *Session) available() []*template.AssessmentCriterion {
	var out []*template.AssessmentCriterion
	for _, c := range s.criteria {
		if Phase(c.Phase) != s.a.Phase || s.a.Completed[c.ID] {
			continue
		}
		if !s.dependenciesMet(c) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Session) dependenciesMet(c *template.AssessmentCriterion) bool {
	for _, dep := range c.Dependencies {
		if !s.a.Completed[dep] {
			return false
		}
	}
	return true
}

// Perform records one assessment step. Submitting an unknown, completed, or
// unavailable criterion is an error, unlike red-flag identification: an
// assessment step is a deliberate action with a cost.
func (s *Session) Perform(criterionID string, findingIDs []string, notes string) (*Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.a.CompletedAt != nil {
		return nil, ErrNoActiveAssessment
	}

	c, ok := s.byID[criterionID]
	if !ok || Phase(c.Phase) != s.a.Phase || s.a.Completed[criterionID] || !s.dependenciesMet(c) {
		return nil, ErrInvalidCriteria
	}

	now := s.now()
	s.a.Actions = append(s.a.Actions, Action{
		CriterionID: criterionID,
		FindingIDs:  findingIDs,
		Notes:       notes,
		At:          now,
		Elapsed:     now.Sub(s.a.StartedAt),
	})
	s.a.Completed[criterionID] = true
	s.advancePhase()
	return s.a.Clone(), nil
}

// advancePhase moves to the next phase once every required criterion of the
// current phase is completed. Movement is forward-only and a no-op at the
// last phase.
func (s *Session) advancePhase() {
	if s.a.Phase == PhaseCompleted {
		return
	}
	for _, c := range s.criteria {
		if Phase(c.Phase) == s.a.Phase && c.Required && !s.a.Completed[c.ID] {
			return
		}
	}
	s.a.Phase = s.a.Phase.next()
}

// Complete finalizes the assessment and scores the action trace.
func (s *Session) Complete() (*Assessment, *evaluation.AssessmentEvaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.a.CompletedAt != nil {
		return nil, nil, ErrNoActiveAssessment
	}

	now := s.now()
	s.a.CompletedAt = &now
	s.a.Phase = PhaseCompleted

	steps := make([]evaluation.AssessmentStep, len(s.a.Actions))
	for i, act := range s.a.Actions {
		steps[i] = evaluation.AssessmentStep{
			CriterionID: act.CriterionID,
			FindingIDs:  act.FindingIDs,
			Elapsed:     act.Elapsed,
		}
	}
	ev := evaluation.EvaluateAssessment(s.criteria, steps)
	return s.a.Clone(), ev, nil
}
