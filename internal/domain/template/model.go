// Package template supplies scenario definitions, assessment-criteria
// catalogs, and scoring templates to the simulation engine. The store is
// read-only from the engine's perspective.
package template

import (
	"time"

	"github.com/google/uuid"

	"github.com/emstrain/emstrain/pkg/clinical"
)

// RedFlagDef declares a clinical finding the learner must actively
// identify, plus the actions expected once it is spotted.
type RedFlagDef struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	Severity        string   `json:"severity"` // low | moderate | high | critical
	ExpectedActions []string `json:"expected_actions,omitempty"`
}

// CriticalActionDef declares a scored, time-targeted action.
type CriticalActionDef struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Target    time.Duration `json:"target_ns"`
	Rationale string        `json:"rationale"`
}

// SequencePhase is one step of the expected intervention order. Any of the
// acceptable names performed at this phase's index counts as correctly
// sequenced.
type SequencePhase struct {
	Name       string   `json:"name"`
	Acceptable []string `json:"acceptable"`
	Rationale  string   `json:"rationale"`
}

// ScenarioTemplate is the full definition of one simulated encounter,
// including everything the performance evaluator needs for scoring.
type ScenarioTemplate struct {
	ID              uuid.UUID             `json:"id"`
	Title           string                `json:"title"`
	ModuleType      string                `json:"module_type"`
	Description     string                `json:"description,omitempty"`
	Scene           clinical.SceneContext `json:"scene"`
	InitialVitals   clinical.VitalSigns   `json:"initial_vitals"`
	InitialPatient  clinical.PatientState `json:"initial_patient"`
	RedFlags        []RedFlagDef          `json:"red_flags,omitempty"`
	CriticalActions []CriticalActionDef   `json:"critical_actions,omitempty"`
	Sequence        []SequencePhase       `json:"sequence,omitempty"`
	// ExpectedSteps maps an intervention name to the number of recorded
	// steps required for it to count as complete.
	ExpectedSteps     map[string]int `json:"expected_steps,omitempty"`
	ExcellenceMarkers []string       `json:"excellence_markers,omitempty"`
	RefreshInterval   time.Duration  `json:"refresh_interval_ns"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// AssessmentCriterion is one selectable step of the structured assessment.
// Dependencies name other criteria that must be completed before this one
// becomes available. Phase values are the assessment package's phase names.
type AssessmentCriterion struct {
	ID               string        `json:"id"`
	ScenarioID       uuid.UUID     `json:"scenario_id"`
	Phase            string        `json:"phase"` // primary | secondary | focused | ongoing
	Order            int           `json:"order"`
	Label            string        `json:"label"`
	Required         bool          `json:"required"`
	Target           time.Duration `json:"target_ns,omitempty"`
	Dependencies     []string      `json:"dependencies,omitempty"`
	ExpectedFindings []string      `json:"expected_findings,omitempty"`
}

// AssessmentFinding is one selectable finding under a criterion.
type AssessmentFinding struct {
	ID          string    `json:"id"`
	ScenarioID  uuid.UUID `json:"scenario_id"`
	CriterionID string    `json:"criterion_id"`
	Label       string    `json:"label"`
}
