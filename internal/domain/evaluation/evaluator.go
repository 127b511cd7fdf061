package evaluation

import (
	"fmt"
	"math"
	"time"

	"github.com/emstrain/emstrain/internal/domain/template"
)

// Category weights and timing cutoffs for encounter scoring. Scoring rules
// themselves live in the template data; only the generic algorithm is code.
const (
	weightCriticalActions = 0.4
	weightRedFlags        = 0.3
	weightInterventions   = 0.3

	timingExcellentRatio  = 0.8
	timingAcceptableRatio = 1.2

	redFlagPromptThreshold = 300 * time.Second
)

// Assessment weights mirror the encounter split: completeness carries the
// most weight, timeliness and accuracy share the rest.
const (
	weightCompleteness = 0.4
	weightTimeliness   = 0.3
	weightAccuracy     = 0.3
)

// Evaluate scores a completed encounter trace against its scenario template.
// It is a pure function: same trace and template, same result.
func Evaluate(tpl *template.ScenarioTemplate, trace *Trace) *FeedbackResult {
	r := &FeedbackResult{
		CriticalActions: CategoryReport{Completed: []string{}, Missed: []string{}},
		RedFlags:        CategoryReport{Completed: []string{}, Missed: []string{}},
		Interventions:   CategoryReport{Completed: []string{}, Missed: []string{}},
	}

	evaluateCriticalActions(tpl, trace, r)
	evaluateRedFlags(tpl, trace, r)
	evaluateInterventions(tpl, trace, r)

	r.OverallScore = int(math.Round(
		r.CriticalActions.Score*weightCriticalActions +
			r.RedFlags.Score*weightRedFlags +
			r.Interventions.Score*weightInterventions))

	// Excellence markers are a conjunctive gate: one missed item in any
	// category withholds all of them.
	if len(r.CriticalActions.Missed) == 0 && len(r.RedFlags.Missed) == 0 &&
		len(r.Interventions.Missed) == 0 {
		r.ExcellentPerformance = append(r.ExcellentPerformance, tpl.ExcellenceMarkers...)
	}
	return r
}

func evaluateCriticalActions(tpl *template.ScenarioTemplate, trace *Trace, r *FeedbackResult) {
	for _, def := range tpl.CriticalActions {
		item := CriticalActionResult{ID: def.ID, Name: def.Name, Rationale: def.Rationale}

		perf, ok := findAction(trace, def.Name)
		if !ok {
			r.CriticalActions.Missed = append(r.CriticalActions.Missed, def.Name)
			r.ImprovementAreas = append(r.ImprovementAreas,
				fmt.Sprintf("Missed critical action %q: %s", def.Name, def.Rationale))
			r.ActionDetail = append(r.ActionDetail, item)
			continue
		}

		item.Completed = true
		item.Elapsed = perf.Elapsed
		item.Timing = classifyTiming(perf.Elapsed, def.Target)
		r.CriticalActions.Completed = append(r.CriticalActions.Completed, def.Name)

		switch item.Timing {
		case TimingExcellent:
			r.ExcellentPerformance = append(r.ExcellentPerformance,
				fmt.Sprintf("%s performed promptly (%s)", def.Name, perf.Elapsed))
		case TimingDelayed:
			r.ImprovementAreas = append(r.ImprovementAreas,
				fmt.Sprintf("%s was delayed (%s against a %s target)", def.Name, perf.Elapsed, def.Target))
		}
		r.ActionDetail = append(r.ActionDetail, item)
	}
	r.CriticalActions.Score = ratio(len(r.CriticalActions.Completed),
		len(r.CriticalActions.Completed)+len(r.CriticalActions.Missed))
}

func evaluateRedFlags(tpl *template.ScenarioTemplate, trace *Trace, r *FeedbackResult) {
	for _, def := range tpl.RedFlags {
		item := RedFlagResult{ID: def.ID, Description: def.Description}

		obs, identified := findFlag(trace, def.ID)
		if !identified {
			r.RedFlags.Missed = append(r.RedFlags.Missed, def.Description)
			r.ImprovementAreas = append(r.ImprovementAreas,
				fmt.Sprintf("Red flag not identified: %s", def.Description))
			r.ReviewTopics = append(r.ReviewTopics,
				fmt.Sprintf("Recognition of %s", def.Description))
			r.FlagDetail = append(r.FlagDetail, item)
			continue
		}

		item.Identified = true
		item.Elapsed = obs.Elapsed
		item.Recognition = RecognitionDelayed
		if obs.Elapsed <= redFlagPromptThreshold {
			item.Recognition = RecognitionPrompt
		}
		item.ActionTaken = anyActionPerformed(trace, def.ExpectedActions)
		if !item.ActionTaken {
			r.LearningPoints = append(r.LearningPoints,
				fmt.Sprintf("%s was identified but not acted on; expected one of %v",
					def.Description, def.ExpectedActions))
		}
		r.RedFlags.Completed = append(r.RedFlags.Completed, def.Description)
		r.FlagDetail = append(r.FlagDetail, item)
	}
	r.RedFlags.Score = ratio(len(r.RedFlags.Completed),
		len(r.RedFlags.Completed)+len(r.RedFlags.Missed))
}

func evaluateInterventions(tpl *template.ScenarioTemplate, trace *Trace, r *FeedbackResult) {
	// Phase index per acceptable intervention name.
	phaseOf := make(map[string]int)
	for i, ph := range tpl.Sequence {
		for _, name := range ph.Acceptable {
			if _, seen := phaseOf[name]; !seen {
				phaseOf[name] = i
			}
		}
	}

	// Walk performed interventions in order. Correct sequencing means the
	// phase index never moves backwards.
	highest := -1
	for _, a := range trace.Actions {
		idx, sequenced := phaseOf[a.Name]
		if !sequenced {
			continue
		}
		ph := tpl.Sequence[idx]
		item := InterventionResult{Name: a.Name, Phase: ph.Name, Complete: true}

		if idx >= highest {
			item.CorrectOrder = true
			highest = idx
			r.Interventions.Completed = append(r.Interventions.Completed, a.Name)
		} else {
			item.Rationale = ph.Rationale
			r.Interventions.Missed = append(r.Interventions.Missed, a.Name)
			r.ImprovementAreas = append(r.ImprovementAreas,
				fmt.Sprintf("%s performed out of order: %s", a.Name, ph.Rationale))
		}

		if expected := tpl.ExpectedSteps[a.Name]; expected > 0 && a.StepsCompleted != expected {
			item.Complete = false
			r.LearningPoints = append(r.LearningPoints,
				fmt.Sprintf("%s was started but not completed (%d of %d steps)",
					a.Name, a.StepsCompleted, expected))
		}
		r.SequenceDetail = append(r.SequenceDetail, item)
	}
	r.Interventions.Score = ratio(len(r.Interventions.Completed),
		len(r.Interventions.Completed)+len(r.Interventions.Missed))
}

// EvaluateAssessment scores a completed assessment trace against its
// criteria catalog.
func EvaluateAssessment(criteria []*template.AssessmentCriterion, steps []AssessmentStep) *AssessmentEvaluation {
	done := make(map[string]AssessmentStep, len(steps))
	for _, s := range steps {
		done[s.CriterionID] = s
	}

	ev := &AssessmentEvaluation{
		MissedRequired:  []string{},
		MissedFindings:  []string{},
		DelayedCriteria: []string{},
	}

	var requiredTotal, requiredDone int
	var timedTotal, timedOnTime int
	var findingsExpected, findingsMatched int

	for _, c := range criteria {
		step, performed := done[c.ID]

		if c.Required {
			requiredTotal++
			if performed {
				requiredDone++
			} else {
				ev.MissedRequired = append(ev.MissedRequired, c.Label)
			}
		}

		if performed && c.Target > 0 {
			timedTotal++
			if step.Elapsed <= c.Target {
				timedOnTime++
			} else {
				ev.DelayedCriteria = append(ev.DelayedCriteria, c.Label)
			}
		}

		if performed && len(c.ExpectedFindings) > 0 {
			reported := make(map[string]bool, len(step.FindingIDs))
			for _, id := range step.FindingIDs {
				reported[id] = true
			}
			for _, want := range c.ExpectedFindings {
				findingsExpected++
				if reported[want] {
					findingsMatched++
				} else {
					ev.MissedFindings = append(ev.MissedFindings, want)
				}
			}
		}
	}

	ev.Completeness = ratio(requiredDone, requiredTotal)
	ev.Timeliness = ratio(timedOnTime, timedTotal)
	ev.Accuracy = ratio(findingsMatched, findingsExpected)
	ev.OverallScore = int(math.Round(
		ev.Completeness*weightCompleteness +
			ev.Timeliness*weightTimeliness +
			ev.Accuracy*weightAccuracy))
	return ev
}

func classifyTiming(elapsed, target time.Duration) TimingClass {
	if target <= 0 {
		return TimingAcceptable
	}
	r := float64(elapsed) / float64(target)
	switch {
	case r <= timingExcellentRatio:
		return TimingExcellent
	case r <= timingAcceptableRatio:
		return TimingAcceptable
	default:
		return TimingDelayed
	}
}

// ratio returns done/total as a percentage, with an empty category scoring 0
// rather than NaN.
func ratio(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

func findAction(trace *Trace, name string) (PerformedAction, bool) {
	for _, a := range trace.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return PerformedAction{}, false
}

func findFlag(trace *Trace, id string) (FlagObservation, bool) {
	for _, f := range trace.RedFlags {
		if f.FlagID == id && f.Identified {
			return f, true
		}
	}
	return FlagObservation{}, false
}

func anyActionPerformed(trace *Trace, names []string) bool {
	for _, n := range names {
		if _, ok := findAction(trace, n); ok {
			return true
		}
	}
	return false
}
