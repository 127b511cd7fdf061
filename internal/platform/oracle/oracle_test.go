package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emstrain/emstrain/pkg/clinical"
)

func testState() State {
	return State{
		ScenarioTitle: "Chest Pain",
		ModuleType:    "cardiac",
		Vitals: clinical.VitalSigns{
			HeartRate:        110,
			BloodPressure:    "150/95",
			RespiratoryRate:  22,
			OxygenSaturation: 93,
			Temperature:      36.9,
		},
		Patient: clinical.PatientState{Consciousness: "alert", Breathing: "labored"},
	}
}

func TestScripted_TickDeterioratesUntreated(t *testing.T) {
	o := NewScripted()
	delta, err := o.Tick(context.Background(), testState())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if delta.Vitals == nil || delta.Vitals.OxygenSaturation == nil {
		t.Fatal("expected oxygen saturation in tick delta")
	}
	if *delta.Vitals.OxygenSaturation != 92 {
		t.Errorf("expected desaturation to 92, got %d", *delta.Vitals.OxygenSaturation)
	}
}

func TestScripted_TickIsDeterministic(t *testing.T) {
	o := NewScripted()
	a, _ := o.Tick(context.Background(), testState())
	b, _ := o.Tick(context.Background(), testState())
	if *a.Vitals.HeartRate != *b.Vitals.HeartRate || *a.Vitals.OxygenSaturation != *b.Vitals.OxygenSaturation {
		t.Error("identical states must produce identical tick deltas")
	}
}

func TestScripted_OxygenHaltsDeterioration(t *testing.T) {
	o := NewScripted()
	st := testState()
	st.Interventions = []string{"High-flow oxygen"}
	delta, err := o.Tick(context.Background(), st)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if *delta.Vitals.OxygenSaturation != st.Vitals.OxygenSaturation {
		t.Errorf("treated patient should not desaturate: got %d", *delta.Vitals.OxygenSaturation)
	}
}

func TestScripted_RespondToIntervention(t *testing.T) {
	o := NewScripted()
	resp, err := o.Respond(context.Background(), testState(), Input{
		Kind: InputIntervention, Category: "treatment", Name: "High-flow oxygen",
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if resp.Effectiveness < 0.5 {
		t.Errorf("oxygen should be effective, got %f", resp.Effectiveness)
	}
	if resp.Delta == nil || resp.Delta.Vitals == nil {
		t.Fatal("expected a vitals delta")
	}
	if *resp.Delta.Vitals.OxygenSaturation != 97 {
		t.Errorf("expected spo2 97, got %d", *resp.Delta.Vitals.OxygenSaturation)
	}
}

func TestScripted_RespondToQuestion(t *testing.T) {
	o := NewScripted()
	resp, err := o.Respond(context.Background(), testState(), Input{
		Kind: InputQuestion, Question: "Where is the pain?",
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if resp.Narrative == "" {
		t.Error("expected a narrative reply")
	}
	if resp.Delta != nil && !resp.Delta.Vitals.IsZero() {
		t.Error("questions should not change vitals")
	}
}

func TestHTTPOracle_Tick(t *testing.T) {
	hr := 120
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tick" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"vitals":{"heart_rate":120}}`))
	}))
	defer srv.Close()

	o := NewHTTPOracle(srv.URL, time.Second)
	delta, err := o.Tick(context.Background(), testState())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if delta.Vitals == nil || delta.Vitals.HeartRate == nil || *delta.Vitals.HeartRate != hr {
		t.Errorf("expected heart_rate %d in delta, got %+v", hr, delta.Vitals)
	}
	if delta.Patient != nil {
		t.Error("absent patient patch must decode as nil")
	}
}

func TestHTTPOracle_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	o := NewHTTPOracle(srv.URL, time.Second)
	_, err := o.Respond(context.Background(), testState(), Input{Kind: InputQuestion, Question: "hi"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestHTTPOracle_ConnectionRefusedIsUnavailable(t *testing.T) {
	o := NewHTTPOracle("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := o.Tick(context.Background(), testState())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
