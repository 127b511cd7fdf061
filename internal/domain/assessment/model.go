package assessment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/emstrain/emstrain/internal/domain/evaluation"
)

var (
	// ErrNotFound is returned when a stored result or the criteria catalog
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCriteria is returned when a performed criterion is unknown,
	// already completed, or not yet available.
	ErrInvalidCriteria = errors.New("invalid or unavailable criterion")

	// ErrNoActiveAssessment is returned when a learner has no running
	// assessment session.
	ErrNoActiveAssessment = errors.New("no active assessment for learner")

	// ErrAssessmentActive is returned when a learner tries to start a second
	// assessment while one is still running.
	ErrAssessmentActive = errors.New("learner already has an active assessment")
)

// Phase is one stage of the patient assessment. Progression is forward-only.
type Phase string

const (
	PhasePrimary   Phase = "primary"
	PhaseSecondary Phase = "secondary"
	PhaseFocused   Phase = "focused"
	PhaseOngoing   Phase = "ongoing"
	PhaseCompleted Phase = "completed"
)

var phaseOrder = []Phase{PhasePrimary, PhaseSecondary, PhaseFocused, PhaseOngoing, PhaseCompleted}

func phaseIndex(p Phase) int {
	for i, ph := range phaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

// next returns the phase after p, or PhaseCompleted at the end.
func (p Phase) next() Phase {
	i := phaseIndex(p)
	if i < 0 || i >= len(phaseOrder)-1 {
		return PhaseCompleted
	}
	return phaseOrder[i+1]
}

// Action is one completed assessment step.
type Action struct {
	CriterionID string        `json:"criterion_id"`
	FindingIDs  []string      `json:"finding_ids,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	At          time.Time     `json:"at"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Assessment is the state of one in-progress patient assessment.
type Assessment struct {
	ID          uuid.UUID  `json:"id"`
	LearnerID   uuid.UUID  `json:"learner_id"`
	ScenarioID  uuid.UUID  `json:"scenario_id"`
	Phase       Phase      `json:"phase"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Actions   []Action        `json:"actions"`
	Completed map[string]bool `json:"completed"`
}

// Clone returns a deep copy safe to hand out.
func (a *Assessment) Clone() *Assessment {
	cp := *a
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		cp.CompletedAt = &t
	}
	cp.Actions = make([]Action, len(a.Actions))
	copy(cp.Actions, a.Actions)
	for i, act := range a.Actions {
		cp.Actions[i].FindingIDs = append([]string(nil), act.FindingIDs...)
	}
	cp.Completed = make(map[string]bool, len(a.Completed))
	for k, v := range a.Completed {
		cp.Completed[k] = v
	}
	return &cp
}

// Result is a persisted record of one completed assessment.
type Result struct {
	ID           uuid.UUID                        `json:"id"`
	AssessmentID uuid.UUID                        `json:"assessment_id"`
	LearnerID    uuid.UUID                        `json:"learner_id"`
	ScenarioID   uuid.UUID                        `json:"scenario_id"`
	Score        int                              `json:"score"`
	Evaluation   *evaluation.AssessmentEvaluation `json:"evaluation"`
	StartedAt    time.Time                        `json:"started_at"`
	CompletedAt  time.Time                        `json:"completed_at"`
}
