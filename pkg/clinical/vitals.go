// Package clinical holds the shared clinical-state model used by scenario
// templates, live encounter sessions, and the physiological oracle boundary.
// Live state is mutated exclusively through the patch types defined here:
// a patch carries a pointer per field, and applying it overwrites only the
// fields that are present.
package clinical

// GlasgowComaScale is the eyes/verbal/motor triple. Total is derived and
// recomputed on every patch application.
type GlasgowComaScale struct {
	Eyes   int `json:"eyes"`
	Verbal int `json:"verbal"`
	Motor  int `json:"motor"`
	Total  int `json:"total"`
}

// VitalSigns is the live vital-sign panel of one simulated patient.
// BloodPressure keeps the conventional "systolic/diastolic" string format
// used by the scenario content.
type VitalSigns struct {
	HeartRate        int               `json:"heart_rate"`
	BloodPressure    string            `json:"blood_pressure"`
	RespiratoryRate  int               `json:"respiratory_rate"`
	OxygenSaturation int               `json:"oxygen_saturation"`
	Temperature      float64           `json:"temperature"`
	Glucose          *float64          `json:"glucose,omitempty"`
	EtCO2            *int              `json:"etco2,omitempty"`
	GCS              *GlasgowComaScale `json:"gcs,omitempty"`
}

// GCSPatch updates individual components of the coma scale.
type GCSPatch struct {
	Eyes   *int `json:"eyes,omitempty"`
	Verbal *int `json:"verbal,omitempty"`
	Motor  *int `json:"motor,omitempty"`
}

// VitalsPatch is a partial vitals update. Nil fields mean "unchanged".
type VitalsPatch struct {
	HeartRate        *int      `json:"heart_rate,omitempty"`
	BloodPressure    *string   `json:"blood_pressure,omitempty"`
	RespiratoryRate  *int      `json:"respiratory_rate,omitempty"`
	OxygenSaturation *int      `json:"oxygen_saturation,omitempty"`
	Temperature      *float64  `json:"temperature,omitempty"`
	Glucose          *float64  `json:"glucose,omitempty"`
	EtCO2            *int      `json:"etco2,omitempty"`
	GCS              *GCSPatch `json:"gcs,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p *VitalsPatch) IsZero() bool {
	if p == nil {
		return true
	}
	return p.HeartRate == nil && p.BloodPressure == nil && p.RespiratoryRate == nil &&
		p.OxygenSaturation == nil && p.Temperature == nil && p.Glucose == nil &&
		p.EtCO2 == nil && p.GCS == nil
}

// Apply merges the patch into v. Only fields present in the patch are
// overwritten; all other fields keep their current value.
func (v *VitalSigns) Apply(p *VitalsPatch) {
	if p == nil {
		return
	}
	if p.HeartRate != nil {
		v.HeartRate = *p.HeartRate
	}
	if p.BloodPressure != nil {
		v.BloodPressure = *p.BloodPressure
	}
	if p.RespiratoryRate != nil {
		v.RespiratoryRate = *p.RespiratoryRate
	}
	if p.OxygenSaturation != nil {
		v.OxygenSaturation = *p.OxygenSaturation
	}
	if p.Temperature != nil {
		v.Temperature = *p.Temperature
	}
	if p.Glucose != nil {
		g := *p.Glucose
		v.Glucose = &g
	}
	if p.EtCO2 != nil {
		e := *p.EtCO2
		v.EtCO2 = &e
	}
	if p.GCS != nil {
		if v.GCS == nil {
			v.GCS = &GlasgowComaScale{}
		}
		if p.GCS.Eyes != nil {
			v.GCS.Eyes = *p.GCS.Eyes
		}
		if p.GCS.Verbal != nil {
			v.GCS.Verbal = *p.GCS.Verbal
		}
		if p.GCS.Motor != nil {
			v.GCS.Motor = *p.GCS.Motor
		}
		v.GCS.Total = v.GCS.Eyes + v.GCS.Verbal + v.GCS.Motor
	}
}

// Clone returns a deep copy of the vitals panel.
func (v VitalSigns) Clone() VitalSigns {
	out := v
	if v.Glucose != nil {
		g := *v.Glucose
		out.Glucose = &g
	}
	if v.EtCO2 != nil {
		e := *v.EtCO2
		out.EtCO2 = &e
	}
	if v.GCS != nil {
		gcs := *v.GCS
		out.GCS = &gcs
	}
	return out
}
