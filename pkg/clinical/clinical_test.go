package clinical

import (
	"reflect"
	"testing"
)

func intPtr(i int) *int             { return &i }
func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }
func painPtr(p []string) *[]string  { return &p }

func baseVitals() VitalSigns {
	return VitalSigns{
		HeartRate:        88,
		BloodPressure:    "120/80",
		RespiratoryRate:  16,
		OxygenSaturation: 98,
		Temperature:      36.8,
	}
}

func TestVitalsPatch_AppliesOnlyPresentFields(t *testing.T) {
	v := baseVitals()
	want := v
	want.HeartRate = 100

	v.Apply(&VitalsPatch{HeartRate: intPtr(100)})

	if !reflect.DeepEqual(v, want) {
		t.Errorf("patch touched more than heart_rate: got %+v, want %+v", v, want)
	}
}

func TestVitalsPatch_NilPatchIsNoop(t *testing.T) {
	v := baseVitals()
	want := v
	v.Apply(nil)
	if !reflect.DeepEqual(v, want) {
		t.Errorf("nil patch mutated vitals: got %+v", v)
	}
}

func TestVitalsPatch_SetsOptionalFields(t *testing.T) {
	v := baseVitals()
	v.Apply(&VitalsPatch{Glucose: floatPtr(5.4), EtCO2: intPtr(38)})

	if v.Glucose == nil || *v.Glucose != 5.4 {
		t.Errorf("glucose not applied: %v", v.Glucose)
	}
	if v.EtCO2 == nil || *v.EtCO2 != 38 {
		t.Errorf("etco2 not applied: %v", v.EtCO2)
	}
}

func TestVitalsPatch_GCSTotalDerived(t *testing.T) {
	v := baseVitals()
	v.Apply(&VitalsPatch{GCS: &GCSPatch{Eyes: intPtr(3), Verbal: intPtr(4), Motor: intPtr(5)}})
	if v.GCS == nil || v.GCS.Total != 12 {
		t.Fatalf("expected derived GCS total 12, got %+v", v.GCS)
	}

	// Partial GCS update recomputes the total from the merged triple.
	v.Apply(&VitalsPatch{GCS: &GCSPatch{Motor: intPtr(6)}})
	if v.GCS.Total != 13 {
		t.Errorf("expected recomputed total 13, got %d", v.GCS.Total)
	}
	if v.GCS.Eyes != 3 || v.GCS.Verbal != 4 {
		t.Errorf("partial GCS patch clobbered untouched components: %+v", v.GCS)
	}
}

func TestVitalsPatch_IsZero(t *testing.T) {
	if !(&VitalsPatch{}).IsZero() {
		t.Error("empty patch should be zero")
	}
	if (&VitalsPatch{HeartRate: intPtr(1)}).IsZero() {
		t.Error("non-empty patch should not be zero")
	}
	var nilPatch *VitalsPatch
	if !nilPatch.IsZero() {
		t.Error("nil patch should be zero")
	}
}

func TestVitalsClone_Independent(t *testing.T) {
	v := baseVitals()
	v.Apply(&VitalsPatch{Glucose: floatPtr(6.1)})
	cp := v.Clone()
	cp.Apply(&VitalsPatch{Glucose: floatPtr(9.9), HeartRate: intPtr(140)})

	if *v.Glucose != 6.1 || v.HeartRate != 88 {
		t.Errorf("clone shares storage with original: %+v", v)
	}
}

func TestPatientStatePatch_AppliesOnlyPresentFields(t *testing.T) {
	s := PatientState{
		Consciousness: "alert",
		Breathing:     "normal",
		Circulation:   "normal",
		Pain:          []string{"chest pressure"},
	}
	want := s.Clone()
	want.Breathing = "labored"

	s.Apply(&PatientStatePatch{Breathing: strPtr("labored")})

	if !reflect.DeepEqual(s, want) {
		t.Errorf("patch touched more than breathing: got %+v, want %+v", s, want)
	}
}

func TestPatientStatePatch_PainReplacesSet(t *testing.T) {
	s := PatientState{Pain: []string{"chest pressure", "left arm"}}
	s.Apply(&PatientStatePatch{Pain: painPtr([]string{"none"})})
	if !reflect.DeepEqual(s.Pain, []string{"none"}) {
		t.Errorf("pain set not replaced: %v", s.Pain)
	}
}
