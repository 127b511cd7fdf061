// Package oracle defines the boundary to the physiological/interaction
// oracle: the external service that evolves patient state in response to
// elapsed time and learner actions. The engine treats it as a black box
// returning partial state deltas; three adapters are provided (scripted,
// HTTP, LLM-backed).
package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/emstrain/emstrain/pkg/clinical"
)

// ErrUnavailable marks a transient oracle failure. Callers must apply no
// partial state merge when this is returned; retrying is safe.
var ErrUnavailable = errors.New("oracle unavailable")

// State is the full encounter snapshot handed to the oracle on every call.
type State struct {
	ScenarioTitle string                `json:"scenario_title"`
	ModuleType    string                `json:"module_type"`
	Vitals        clinical.VitalSigns   `json:"vitals"`
	Patient       clinical.PatientState `json:"patient"`
	Scene         clinical.SceneContext `json:"scene"`
	Elapsed       time.Duration         `json:"elapsed_ns"`
	Interventions []string              `json:"interventions,omitempty"`
}

// StateDelta is a partial update to the encounter state. Nil sub-patches
// leave that aspect of the state untouched.
type StateDelta struct {
	Vitals  *clinical.VitalsPatch      `json:"vitals,omitempty"`
	Patient *clinical.PatientStatePatch `json:"patient,omitempty"`
}

// InputKind distinguishes the two learner-triggered oracle calls.
type InputKind string

const (
	InputQuestion     InputKind = "question"
	InputIntervention InputKind = "intervention"
)

// Input is a learner question or proposed intervention.
type Input struct {
	Kind     InputKind         `json:"kind"`
	Question string            `json:"question,omitempty"`
	Category string            `json:"category,omitempty"`
	Name     string            `json:"name,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

// Response is the oracle's answer to a learner action: narrative text, an
// outcome summary, an effectiveness measure in [0,1], and an optional state
// delta.
type Response struct {
	Narrative     string      `json:"narrative"`
	Outcome       string      `json:"outcome,omitempty"`
	Effectiveness float64     `json:"effectiveness"`
	Delta         *StateDelta `json:"delta,omitempty"`
}

// Oracle produces patient-state evolution. Tick drives the periodic vitals
// refresh; Respond handles learner questions and interventions. Both may
// block and must honor ctx cancellation.
type Oracle interface {
	Tick(ctx context.Context, state State) (*StateDelta, error)
	Respond(ctx context.Context, state State, input Input) (*Response, error)
}
