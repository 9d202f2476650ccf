package models

import "time"

// HealthMetric is the daily rollup of vitals and wellbeing for one user.
type HealthMetric struct {
	BaseModel

	UserID           uint      `gorm:"not null;uniqueIndex:idx_health_metric_user_date"`
	Date             time.Time `gorm:"type:date;not null;uniqueIndex:idx_health_metric_user_date"`
	Weight           *float64
	Systolic         *int
	Diastolic        *int
	HeartRate        *int
	Temperature      *float64
	MoodScore        *int
	StressLevel      *int
	SleepHours       *float64
	ExerciseMinutes  *int
	MedicationsTaken int
	MedicationsTotal int
	Notes            string
}

// HealthData is a single typed observation.
type HealthData struct {
	BaseModel

	UserID         uint    `gorm:"not null;index"`
	DataType       string  `gorm:"not null;index"`
	Value          float64 `gorm:"not null"`
	SecondaryValue *float64
	Unit           string
	Notes          string
	RecordedAt     time.Time `gorm:"not null;index"`
}
