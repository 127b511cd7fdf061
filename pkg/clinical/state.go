package clinical

// PatientState is the qualitative patient presentation that accompanies the
// vital-sign panel. Like vitals it is only ever mutated through patches.
type PatientState struct {
	Consciousness string   `json:"consciousness"`
	Breathing     string   `json:"breathing"`
	Circulation   string   `json:"circulation"`
	Pain          []string `json:"pain,omitempty"`
}

// PatientStatePatch is a partial patient-state update. Nil fields mean
// "unchanged"; a present Pain slice replaces the descriptor set wholesale.
type PatientStatePatch struct {
	Consciousness *string   `json:"consciousness,omitempty"`
	Breathing     *string   `json:"breathing,omitempty"`
	Circulation   *string   `json:"circulation,omitempty"`
	Pain          *[]string `json:"pain,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p *PatientStatePatch) IsZero() bool {
	if p == nil {
		return true
	}
	return p.Consciousness == nil && p.Breathing == nil && p.Circulation == nil && p.Pain == nil
}

// Apply merges the patch into s under the same present-fields-only rule as
// VitalsPatch.
func (s *PatientState) Apply(p *PatientStatePatch) {
	if p == nil {
		return
	}
	if p.Consciousness != nil {
		s.Consciousness = *p.Consciousness
	}
	if p.Breathing != nil {
		s.Breathing = *p.Breathing
	}
	if p.Circulation != nil {
		s.Circulation = *p.Circulation
	}
	if p.Pain != nil {
		s.Pain = append([]string(nil), (*p.Pain)...)
	}
}

// Clone returns a deep copy of the patient state.
func (s PatientState) Clone() PatientState {
	out := s
	out.Pain = append([]string(nil), s.Pain...)
	return out
}

// SceneContext is the immutable scene description captured when an encounter
// starts.
type SceneContext struct {
	Location  string   `json:"location"`
	TimeOfDay string   `json:"time_of_day"`
	Resources []string `json:"resources,omitempty"`
	Dispatch  string   `json:"dispatch,omitempty"`
}
