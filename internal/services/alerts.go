package services

import (
	"fmt"

	"github.com/sanjeevni-health/sanjeevni/internal/types"
)

const (
	BloodPressureNormal   = "normal"
	BloodPressureElevated = "elevated"
	BloodPressureHigh     = "high"
	BloodPressureUnknown  = "unknown"
)

// ValidationErrors maps a JSON field name to a rule message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("%d invalid field(s)", len(v))
}

// HealthDataAlerts returns the alert messages a typed observation raises.
func HealthDataAlerts(dataType string, value float64, secondary *float64) []string {
	var alerts []string

	switch dataType {
	case types.DataBloodPressure:
		if value > 140 || (secondary != nil && *secondary > 90) {
			dia := "?"
			if secondary != nil {
				dia = fmt.Sprintf("%g", *secondary)
			}
			alerts = append(alerts, fmt.Sprintf("High blood pressure: %g/%s mmHg", value, dia))
		}
	case types.DataHeartRate:
		if value > 100 || value < 60 {
			alerts = append(alerts, fmt.Sprintf("Abnormal heart rate: %g bpm", value))
		}
	case types.DataBloodSugar:
		if value > 140 {
			alerts = append(alerts, fmt.Sprintf("High blood sugar: %g mg/dL", value))
		}
	}

	return alerts
}

const (
	LowMoodAlert     = "Low mood detected. Consider reaching out for support."
	HighAnxietyAlert = "High anxiety level detected. Consider relaxation techniques."
	HighStressAlert  = "High stress level detected. Consider stress management strategies."
)

// MentalHealthAlerts evaluates each score independently.
func MentalHealthAlerts(mood, anxiety, stress float64) []string {
	var alerts []string
	if mood <= 3 {
		alerts = append(alerts, LowMoodAlert)
	}
	if anxiety >= 8 {
		alerts = append(alerts, HighAnxietyAlert)
	}
	if stress >= 8 {
		alerts = append(alerts, HighStressAlert)
	}
	return alerts
}

func BloodPressureStatus(systolic, diastolic *int) string {
	if systolic == nil || diastolic == nil {
		return BloodPressureUnknown
	}
	switch {
	case *systolic < 120 && *diastolic < 80:
		return BloodPressureNormal
	case *systolic < 130 && *diastolic < 80:
		return BloodPressureElevated
	default:
		return BloodPressureHigh
	}
}

// Vitals holds the optional readings shared by the daily metrics and the
// typed observations.
type Vitals struct {
	Systolic    *float64
	Diastolic   *float64
	HeartRate   *float64
	Temperature *float64
	Mood        *float64
	Stress      *float64
	Pain        *float64
}

// ValidateVitals applies the plausibility bounds. Field names are those of
// the daily metrics payload.
func ValidateVitals(v Vitals) ValidationErrors {
	errs := ValidationErrors{}

	if v.Systolic != nil && (*v.Systolic < 50 || *v.Systolic > 300) {
		errs["systolic_bp"] = "Systolic blood pressure must be between 50 and 300."
	}
	if v.Diastolic != nil && (*v.Diastolic < 30 || *v.Diastolic > 200) {
		errs["diastolic_bp"] = "Diastolic blood pressure must be between 30 and 200."
	}
	if v.Systolic != nil && v.Diastolic != nil && *v.Systolic < *v.Diastolic {
		errs["systolic_bp"] = "Systolic pressure must be higher than diastolic pressure."
	}
	if (v.Systolic == nil) != (v.Diastolic == nil) {
		errs["blood_pressure"] = "Systolic and diastolic values must be provided together."
	}
	if v.HeartRate != nil && (*v.HeartRate < 30 || *v.HeartRate > 200) {
		errs["heart_rate"] = "Heart rate must be between 30 and 200 bpm."
	}
	if v.Temperature != nil && (*v.Temperature < 30 || *v.Temperature > 45) {
		errs["temperature"] = "Temperature must be between 30 and 45 °C."
	}
	if v.Mood != nil && (*v.Mood < 1 || *v.Mood > 10) {
		errs["mood_score"] = "Mood score must be between 1 and 10."
	}
	if v.Stress != nil && (*v.Stress < 1 || *v.Stress > 10) {
		errs["stress_level"] = "Stress level must be between 1 and 10."
	}
	if v.Pain != nil && (*v.Pain < 1 || *v.Pain > 10) {
		errs["pain_level"] = "Pain level must be between 1 and 10."
	}

	return errs
}

// HigherIsBetter tells trend labelling which direction is good for a field.
func HigherIsBetter(field string) bool {
	switch field {
	case "stress_level", "anxiety_level", types.DataPainLevel, types.DataBloodPressure,
		types.DataBloodSugar, types.DataHeartRate, "systolic_bp", "diastolic_bp":
		return false
	default:
		return true
	}
}
