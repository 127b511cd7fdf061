package template

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/emstrain/emstrain/pkg/clinical"
)

// Fixed ids so sandbox seeding is repeatable across runs.
var (
	ScenarioChestPainID   = uuid.MustParse("7b1d2f60-54a3-4c8e-9d11-0aa6c3b1e001")
	ScenarioRespDistressID = uuid.MustParse("7b1d2f60-54a3-4c8e-9d11-0aa6c3b1e002")
)

// Seed installs the built-in training scenarios into w. It is used by the
// `seed` CLI command and by the in-memory sandbox mode.
func Seed(ctx context.Context, w Writer) error {
	for _, t := range BuiltinScenarios() {
		if err := w.PutScenario(ctx, t); err != nil {
			return err
		}
	}
	if err := w.PutAssessmentCriteria(ctx, ScenarioChestPainID, ChestPainCriteria()); err != nil {
		return err
	}
	if err := w.PutFindings(ctx, ScenarioChestPainID, ChestPainFindings()); err != nil {
		return err
	}
	return nil
}

// BuiltinScenarios returns the built-in scenario set.
func BuiltinScenarios() []*ScenarioTemplate {
	glucose := 6.2
	return []*ScenarioTemplate{
		{
			ID:          ScenarioChestPainID,
			Title:       "Acute Chest Pain",
			ModuleType:  "cardiac",
			Description: "58-year-old male with crushing substernal chest pain at a private residence.",
			Scene: clinical.SceneContext{
				Location:  "private residence, second-floor bedroom",
				TimeOfDay: "evening",
				Resources: []string{"BLS bag", "AED", "oxygen kit"},
				Dispatch:  "58M, chest pain, conscious and breathing",
			},
			InitialVitals: clinical.VitalSigns{
				HeartRate:        112,
				BloodPressure:    "152/94",
				RespiratoryRate:  22,
				OxygenSaturation: 93,
				Temperature:      36.9,
				Glucose:          &glucose,
			},
			InitialPatient: clinical.PatientState{
				Consciousness: "alert, anxious",
				Breathing:     "labored",
				Circulation:   "pale, diaphoretic",
				Pain:          []string{"crushing substernal pressure", "radiating to left arm"},
			},
			RedFlags: []RedFlagDef{
				{
					ID:              "diaphoresis-pallor",
					Description:     "Diaphoresis with pallor",
					Severity:        "high",
					ExpectedActions: []string{"High-flow oxygen", "Aspirin 324mg"},
				},
				{
					ID:              "radiating-pain",
					Description:     "Pain radiating to left arm",
					Severity:        "critical",
					ExpectedActions: []string{"Aspirin 324mg", "12-lead ECG"},
				},
			},
			CriticalActions: []CriticalActionDef{
				{
					ID:        "oxygen",
					Name:      "High-flow oxygen",
					Target:    60 * time.Second,
					Rationale: "Hypoxia worsens myocardial ischemia; correct it early.",
				},
				{
					ID:        "aspirin",
					Name:      "Aspirin 324mg",
					Target:    120 * time.Second,
					Rationale: "Early antiplatelet therapy reduces infarct mortality.",
				},
				{
					ID:        "ecg",
					Name:      "12-lead ECG",
					Target:    300 * time.Second,
					Rationale: "STEMI recognition drives the transport decision.",
				},
			},
			Sequence: []SequencePhase{
				{Name: "airway and oxygenation", Acceptable: []string{"High-flow oxygen"}, Rationale: "Oxygenation precedes medication in the cardiac algorithm."},
				{Name: "medication", Acceptable: []string{"Aspirin 324mg", "Nitroglycerin 0.4mg"}, Rationale: "Antiplatelet and vasodilator therapy follow oxygenation."},
				{Name: "diagnostics", Acceptable: []string{"12-lead ECG"}, Rationale: "Acquire the ECG once initial treatment is underway."},
			},
			ExpectedSteps: map[string]int{
				"12-lead ECG": 2, // apply leads, transmit
			},
			ExcellenceMarkers: []string{
				"Textbook cardiac chest pain management",
				"All red flags identified promptly",
			},
			RefreshInterval: 30 * time.Second,
		},
		{
			ID:          ScenarioRespDistressID,
			Title:       "Respiratory Distress",
			ModuleType:  "respiratory",
			Description: "72-year-old female with acute shortness of breath in an assisted-living facility.",
			Scene: clinical.SceneContext{
				Location:  "assisted-living facility",
				TimeOfDay: "early morning",
				Resources: []string{"BLS bag", "oxygen kit", "nebulizer"},
				Dispatch:  "72F, difficulty breathing",
			},
			InitialVitals: clinical.VitalSigns{
				HeartRate:        104,
				BloodPressure:    "138/88",
				RespiratoryRate:  28,
				OxygenSaturation: 88,
				Temperature:      37.4,
			},
			InitialPatient: clinical.PatientState{
				Consciousness: "alert, tripod position",
				Breathing:     "severely labored, audible wheezing",
				Circulation:   "flushed",
			},
			RedFlags: []RedFlagDef{
				{
					ID:              "accessory-muscle-use",
					Description:     "Accessory muscle use with tripoding",
					Severity:        "high",
					ExpectedActions: []string{"High-flow oxygen", "Albuterol nebulizer"},
				},
			},
			CriticalActions: []CriticalActionDef{
				{
					ID:        "oxygen",
					Name:      "High-flow oxygen",
					Target:    45 * time.Second,
					Rationale: "SpO2 of 88% demands immediate supplemental oxygen.",
				},
				{
					ID:        "nebulizer",
					Name:      "Albuterol nebulizer",
					Target:    180 * time.Second,
					Rationale: "Bronchodilation relieves the obstructive component.",
				},
			},
			Sequence: []SequencePhase{
				{Name: "oxygenation", Acceptable: []string{"High-flow oxygen"}, Rationale: "Correct hypoxia before anything else."},
				{Name: "bronchodilation", Acceptable: []string{"Albuterol nebulizer"}, Rationale: "Nebulized therapy follows once oxygen is flowing."},
			},
			ExcellenceMarkers: []string{"Rapid, correctly ordered respiratory management"},
			RefreshInterval:   30 * time.Second,
		},
	}
}

// ChestPainCriteria is the assessment catalog for the chest-pain scenario.
// The dependency edges encode the primary-survey order.
func ChestPainCriteria() []*AssessmentCriterion {
	sid := ScenarioChestPainID
	return []*AssessmentCriterion{
		{ID: "scene-safety", ScenarioID: sid, Phase: "primary", Order: 1, Label: "Scene safety and BSI", Required: true, Target: 30 * time.Second},
		{ID: "general-impression", ScenarioID: sid, Phase: "primary", Order: 2, Label: "General impression", Required: true, Dependencies: []string{"scene-safety"}},
		{ID: "airway", ScenarioID: sid, Phase: "primary", Order: 3, Label: "Airway assessment", Required: true, Target: 60 * time.Second, Dependencies: []string{"general-impression"}, ExpectedFindings: []string{"airway-patent"}},
		{ID: "breathing", ScenarioID: sid, Phase: "primary", Order: 4, Label: "Breathing assessment", Required: true, Target: 90 * time.Second, Dependencies: []string{"airway"}, ExpectedFindings: []string{"breathing-labored"}},
		{ID: "circulation", ScenarioID: sid, Phase: "primary", Order: 5, Label: "Circulation assessment", Required: true, Target: 120 * time.Second, Dependencies: []string{"breathing"}, ExpectedFindings: []string{"skin-diaphoretic", "pulse-rapid"}},
		{ID: "opqrst", ScenarioID: sid, Phase: "secondary", Order: 1, Label: "OPQRST pain history", Required: true, ExpectedFindings: []string{"pain-crushing", "pain-radiating"}},
		{ID: "sample", ScenarioID: sid, Phase: "secondary", Order: 2, Label: "SAMPLE history", Required: true},
		{ID: "vitals-baseline", ScenarioID: sid, Phase: "secondary", Order: 3, Label: "Baseline vital signs", Required: true, Target: 300 * time.Second},
		{ID: "cardiac-exam", ScenarioID: sid, Phase: "focused", Order: 1, Label: "Focused cardiac exam", Required: true, Dependencies: []string{"opqrst"}},
		{ID: "lung-sounds", ScenarioID: sid, Phase: "focused", Order: 2, Label: "Auscultate lung sounds", Required: false},
		{ID: "reassess-vitals", ScenarioID: sid, Phase: "ongoing", Order: 1, Label: "Reassess vital signs", Required: true, Dependencies: []string{"vitals-baseline"}},
		{ID: "reassess-interventions", ScenarioID: sid, Phase: "ongoing", Order: 2, Label: "Reassess interventions", Required: false},
	}
}

// ChestPainFindings is the findings catalog for the chest-pain scenario.
func ChestPainFindings() []*AssessmentFinding {
	sid := ScenarioChestPainID
	return []*AssessmentFinding{
		{ID: "airway-patent", ScenarioID: sid, CriterionID: "airway", Label: "Airway patent, self-maintained"},
		{ID: "airway-compromised", ScenarioID: sid, CriterionID: "airway", Label: "Airway compromised"},
		{ID: "breathing-labored", ScenarioID: sid, CriterionID: "breathing", Label: "Labored breathing, adequate volume"},
		{ID: "breathing-normal", ScenarioID: sid, CriterionID: "breathing", Label: "Normal respiratory effort"},
		{ID: "skin-diaphoretic", ScenarioID: sid, CriterionID: "circulation", Label: "Skin pale and diaphoretic"},
		{ID: "pulse-rapid", ScenarioID: sid, CriterionID: "circulation", Label: "Radial pulse rapid and regular"},
		{ID: "pain-crushing", ScenarioID: sid, CriterionID: "opqrst", Label: "Crushing substernal pressure"},
		{ID: "pain-radiating", ScenarioID: sid, CriterionID: "opqrst", Label: "Radiation to left arm"},
		{ID: "pain-reproducible", ScenarioID: sid, CriterionID: "opqrst", Label: "Reproducible on palpation"},
	}
}
