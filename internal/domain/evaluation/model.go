package evaluation

import (
	"time"

	"github.com/google/uuid"
)

// TimingClass grades how quickly an action was performed against its target.
type TimingClass string

const (
	TimingExcellent  TimingClass = "excellent"
	TimingAcceptable TimingClass = "acceptable"
	TimingDelayed    TimingClass = "delayed"
)

// Recognition grades how quickly a red flag was identified.
type Recognition string

const (
	RecognitionPrompt  Recognition = "prompt"
	RecognitionDelayed Recognition = "delayed"
)

// PerformedAction is one learner action from a completed encounter trace.
type PerformedAction struct {
	Name           string        `json:"name"`
	Category       string        `json:"category"`
	Elapsed        time.Duration `json:"elapsed"`
	StepsCompleted int           `json:"steps_completed"`
}

// FlagObservation records whether and when a learner identified a red flag.
type FlagObservation struct {
	FlagID     string        `json:"flag_id"`
	Identified bool          `json:"identified"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Trace is the raw material the evaluator scores. It is assembled by the
// scenario engine when an encounter completes.
type Trace struct {
	Actions  []PerformedAction `json:"actions"`
	RedFlags []FlagObservation `json:"red_flags"`
}

// CriticalActionResult is the per-item outcome for one declared critical action.
type CriticalActionResult struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Completed bool          `json:"completed"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
	Timing    TimingClass   `json:"timing,omitempty"`
	Rationale string        `json:"rationale,omitempty"`
}

// RedFlagResult is the per-item outcome for one declared red flag.
type RedFlagResult struct {
	ID           string        `json:"id"`
	Description  string        `json:"description"`
	Identified   bool          `json:"identified"`
	Elapsed      time.Duration `json:"elapsed,omitempty"`
	Recognition  Recognition   `json:"recognition,omitempty"`
	ActionTaken  bool          `json:"action_taken"`
}

// InterventionResult is the per-item outcome for one sequenced intervention.
type InterventionResult struct {
	Name         string `json:"name"`
	Phase        string `json:"phase"`
	CorrectOrder bool   `json:"correct_order"`
	Complete     bool   `json:"complete"`
	Rationale    string `json:"rationale,omitempty"`
}

// CategoryReport holds one scored category with its per-item detail.
type CategoryReport struct {
	Score     float64  `json:"score"`
	Completed []string `json:"completed"`
	Missed    []string `json:"missed"`
}

// FeedbackResult is the evaluator's output for a completed encounter. It is
// produced once and never mutated afterwards.
type FeedbackResult struct {
	EncounterID uuid.UUID `json:"encounter_id,omitempty"`

	OverallScore int `json:"overall_score"`

	CriticalActions CategoryReport         `json:"critical_actions"`
	RedFlags        CategoryReport         `json:"red_flags"`
	Interventions   CategoryReport         `json:"interventions"`
	ActionDetail    []CriticalActionResult `json:"action_detail"`
	FlagDetail      []RedFlagResult        `json:"flag_detail"`
	SequenceDetail  []InterventionResult   `json:"sequence_detail"`

	LearningPoints       []string `json:"learning_points"`
	ReviewTopics         []string `json:"review_topics"`
	ExcellentPerformance []string `json:"excellent_performance"`
	ImprovementAreas     []string `json:"improvement_areas"`
}

// AssessmentStep is one completed criterion from an assessment trace.
type AssessmentStep struct {
	CriterionID string        `json:"criterion_id"`
	FindingIDs  []string      `json:"finding_ids"`
	Elapsed     time.Duration `json:"elapsed"`
}

// AssessmentEvaluation scores a completed patient assessment.
type AssessmentEvaluation struct {
	OverallScore int     `json:"overall_score"`
	Completeness float64 `json:"completeness"`
	Timeliness   float64 `json:"timeliness"`
	Accuracy     float64 `json:"accuracy"`

	MissedRequired  []string `json:"missed_required"`
	MissedFindings  []string `json:"missed_findings"`
	DelayedCriteria []string `json:"delayed_criteria"`
}
