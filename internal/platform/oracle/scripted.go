package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/emstrain/emstrain/pkg/clinical"
)

// Scripted is a deterministic oracle used in development sandboxes and
// tests. Untreated patients deteriorate a little on every tick; recognized
// interventions produce fixed improvements. No randomness, so a given call
// sequence always yields the same encounter.
type Scripted struct{}

func NewScripted() *Scripted { return &Scripted{} }

func (s *Scripted) Tick(_ context.Context, state State) (*StateDelta, error) {
	hr := state.Vitals.HeartRate
	spo2 := state.Vitals.OxygenSaturation
	rr := state.Vitals.RespiratoryRate

	// Oxygen therapy halts desaturation; otherwise the patient slowly
	// deteriorates toward the scripted floor values.
	treated := hasIntervention(state.Interventions, "oxygen")
	if !treated && spo2 > 80 {
		spo2--
	}
	if !treated && hr < 140 {
		hr += 2
	}
	if !treated && rr < 32 {
		rr++
	}

	return &StateDelta{Vitals: vitalsPatch(hr, rr, spo2)}, nil
}

func (s *Scripted) Respond(_ context.Context, state State, input Input) (*Response, error) {
	if input.Kind == InputQuestion {
		return &Response{
			Narrative: fmt.Sprintf("The patient responds slowly: %q", cannedAnswer(input.Question)),
		}, nil
	}

	name := strings.ToLower(input.Name)
	switch {
	case strings.Contains(name, "oxygen"):
		spo2 := state.Vitals.OxygenSaturation + 4
		if spo2 > 99 {
			spo2 = 99
		}
		return &Response{
			Narrative:     "You apply high-flow oxygen. Breathing eases and color improves.",
			Outcome:       "oxygen saturation improving",
			Effectiveness: 0.9,
			Delta: &StateDelta{
				Vitals: vitalsPatch(state.Vitals.HeartRate-4, state.Vitals.RespiratoryRate-2, spo2),
			},
		}, nil
	case strings.Contains(name, "aspirin"), strings.Contains(name, "nitro"):
		return &Response{
			Narrative:     "Medication administered. The patient reports the pressure easing slightly.",
			Outcome:       "symptoms partially relieved",
			Effectiveness: 0.7,
		}, nil
	case strings.Contains(name, "cpr"), strings.Contains(name, "compress"):
		return &Response{
			Narrative:     "You begin compressions at the correct rate and depth.",
			Outcome:       "perfusion maintained",
			Effectiveness: 0.8,
		}, nil
	default:
		return &Response{
			Narrative:     fmt.Sprintf("You perform %s. The patient's condition is unchanged.", input.Name),
			Outcome:       "no observable effect",
			Effectiveness: 0.3,
		}, nil
	}
}

func cannedAnswer(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "pain"):
		return "It feels like someone is sitting on my chest."
	case strings.Contains(q, "medic"), strings.Contains(q, "drug"):
		return "I take a water pill and something for blood pressure."
	case strings.Contains(q, "allerg"):
		return "No allergies that I know of."
	default:
		return "I... I'm not sure."
	}
}

func hasIntervention(performed []string, needle string) bool {
	for _, p := range performed {
		if strings.Contains(strings.ToLower(p), needle) {
			return true
		}
	}
	return false
}

func vitalsPatch(hr, rr, spo2 int) *clinical.VitalsPatch {
	return &clinical.VitalsPatch{
		HeartRate:        &hr,
		RespiratoryRate:  &rr,
		OxygenSaturation: &spo2,
	}
}
