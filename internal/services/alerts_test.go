package services

import (
	"testing"

	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestHealthDataAlerts(t *testing.T) {
	assert.Empty(t, HealthDataAlerts(types.DataBloodPressure, 140, lo.ToPtr(90.0)))
	assert.Equal(t, []string{"High blood pressure: 141/85 mmHg"},
		HealthDataAlerts(types.DataBloodPressure, 141, lo.ToPtr(85.0)))
	assert.Len(t, HealthDataAlerts(types.DataBloodPressure, 120, lo.ToPtr(95.0)), 1)

	assert.Empty(t, HealthDataAlerts(types.DataHeartRate, 60, nil))
	assert.Len(t, HealthDataAlerts(types.DataHeartRate, 59, nil), 1)
	assert.Len(t, HealthDataAlerts(types.DataHeartRate, 101, nil), 1)

	assert.Len(t, HealthDataAlerts(types.DataBloodSugar, 141, nil), 1)
	assert.Empty(t, HealthDataAlerts(types.DataWeight, 500, nil))
}

func TestBloodPressureStatus(t *testing.T) {
	assert.Equal(t, BloodPressureUnknown, BloodPressureStatus(nil, lo.ToPtr(80)))
	assert.Equal(t, BloodPressureNormal, BloodPressureStatus(lo.ToPtr(119), lo.ToPtr(79)))
	assert.Equal(t, BloodPressureElevated, BloodPressureStatus(lo.ToPtr(125), lo.ToPtr(79)))
	assert.Equal(t, BloodPressureHigh, BloodPressureStatus(lo.ToPtr(140), lo.ToPtr(90)))
	assert.Equal(t, BloodPressureHigh, BloodPressureStatus(lo.ToPtr(118), lo.ToPtr(82)))
}

func TestMentalHealthAlerts(t *testing.T) {
	assert.Empty(t, MentalHealthAlerts(4, 7, 7))
	assert.Equal(t, []string{LowMoodAlert, HighAnxietyAlert, HighStressAlert}, MentalHealthAlerts(3, 8, 8))
	assert.Equal(t, []string{HighStressAlert}, MentalHealthAlerts(6, 2, 9))
}

func TestValidateVitals(t *testing.T) {
	assert.Empty(t, ValidateVitals(Vitals{Systolic: lo.ToPtr(120.0), Diastolic: lo.ToPtr(120.0)}))

	errs := ValidateVitals(Vitals{Systolic: lo.ToPtr(110.0), Diastolic: lo.ToPtr(120.0)})
	assert.Contains(t, errs, "systolic_bp")

	errs = ValidateVitals(Vitals{Systolic: lo.ToPtr(120.0)})
	assert.Contains(t, errs, "blood_pressure")

	errs = ValidateVitals(Vitals{HeartRate: lo.ToPtr(250.0), Mood: lo.ToPtr(0.0), Temperature: lo.ToPtr(46.0)})
	assert.Contains(t, errs, "heart_rate")
	assert.Contains(t, errs, "mood_score")
	assert.Contains(t, errs, "temperature")
}

func TestHigherIsBetter(t *testing.T) {
	assert.True(t, HigherIsBetter("mood_score"))
	assert.True(t, HigherIsBetter("sleep_quality"))
	assert.False(t, HigherIsBetter("stress_level"))
	assert.False(t, HigherIsBetter(types.DataHeartRate))
}
