package scenario

import (
	"time"

	"github.com/google/uuid"

	"github.com/emstrain/emstrain/internal/domain/evaluation"
	"github.com/emstrain/emstrain/internal/domain/template"
	"github.com/emstrain/emstrain/pkg/clinical"
)

// Status is the encounter lifecycle state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Intervention is one performed intervention in the append-only log.
// SequenceNumber is the ordinal position in the log and is the canonical
// ordering used for scoring.
type Intervention struct {
	Name           string            `json:"name"`
	Category       string            `json:"category,omitempty"`
	Params         map[string]string `json:"params,omitempty"`
	SequenceNumber int               `json:"sequence_number"`
	StepsCompleted int               `json:"steps_completed"`
	Outcome        string            `json:"outcome,omitempty"`
	Effectiveness  float64           `json:"effectiveness"`
	Elapsed        time.Duration     `json:"elapsed"`
	At             time.Time         `json:"at"`
}

// RedFlag tracks a template-declared red flag within an encounter.
type RedFlag struct {
	Def            template.RedFlagDef `json:"def"`
	Identified     bool                `json:"identified"`
	TimeIdentified time.Duration       `json:"time_identified,omitempty"`
}

// LogEntry is one line of the encounter narrative.
type LogEntry struct {
	At      time.Time     `json:"at"`
	Elapsed time.Duration `json:"elapsed"`
	Kind    string        `json:"kind"`
	Text    string        `json:"text"`
}

// Encounter is the full state of one simulated patient encounter.
type Encounter struct {
	ID            uuid.UUID  `json:"id"`
	LearnerID     uuid.UUID  `json:"learner_id"`
	ScenarioID    uuid.UUID  `json:"scenario_id"`
	ScenarioTitle string     `json:"scenario_title"`
	ModuleType    string     `json:"module_type"`
	Status        Status     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	Vitals  clinical.VitalSigns   `json:"vitals"`
	Patient clinical.PatientState `json:"patient"`
	Scene   clinical.SceneContext `json:"scene"`

	Interventions []Intervention `json:"interventions"`
	RedFlags      []RedFlag      `json:"red_flags"`
	Notes         []string       `json:"notes"`
	Narrative     []LogEntry     `json:"narrative"`
}

// Clone returns a deep copy, safe to hand out while the session keeps
// mutating the original.
func (e *Encounter) Clone() *Encounter {
	cp := *e
	cp.Vitals = e.Vitals.Clone()
	cp.Patient = e.Patient.Clone()
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		cp.CompletedAt = &t
	}

	cp.Interventions = make([]Intervention, len(e.Interventions))
	copy(cp.Interventions, e.Interventions)
	for i, iv := range e.Interventions {
		if iv.Params != nil {
			p := make(map[string]string, len(iv.Params))
			for k, v := range iv.Params {
				p[k] = v
			}
			cp.Interventions[i].Params = p
		}
	}

	cp.RedFlags = make([]RedFlag, len(e.RedFlags))
	copy(cp.RedFlags, e.RedFlags)
	cp.Notes = append([]string(nil), e.Notes...)
	cp.Narrative = append([]LogEntry(nil), e.Narrative...)
	return &cp
}

// Trace converts the encounter into the evaluator's input form.
func (e *Encounter) Trace() *evaluation.Trace {
	tr := &evaluation.Trace{}
	for _, iv := range e.Interventions {
		tr.Actions = append(tr.Actions, evaluation.PerformedAction{
			Name:           iv.Name,
			Category:       iv.Category,
			Elapsed:        iv.Elapsed,
			StepsCompleted: iv.StepsCompleted,
		})
	}
	for _, rf := range e.RedFlags {
		tr.RedFlags = append(tr.RedFlags, evaluation.FlagObservation{
			FlagID:     rf.Def.ID,
			Identified: rf.Identified,
			Elapsed:    rf.TimeIdentified,
		})
	}
	return tr
}

// Attempt is a persisted record of one completed encounter and its feedback.
type Attempt struct {
	ID            uuid.UUID                  `json:"id"`
	EncounterID   uuid.UUID                  `json:"encounter_id"`
	LearnerID     uuid.UUID                  `json:"learner_id"`
	ScenarioID    uuid.UUID                  `json:"scenario_id"`
	ScenarioTitle string                     `json:"scenario_title"`
	Score         int                        `json:"score"`
	Feedback      *evaluation.FeedbackResult `json:"feedback"`
	StartedAt     time.Time                  `json:"started_at"`
	CompletedAt   time.Time                  `json:"completed_at"`
}
