package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Reminder struct {
	BaseModel

	UserID              uint                        `gorm:"not null;index"`
	MedicineName        string                      `gorm:"not null"`
	Dosage              string                      `gorm:"not null"`
	RepeatPattern       string                      `gorm:"not null"`
	CustomDays          datatypes.JSONSlice[int]    `gorm:"type:jsonb"`
	Times               datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	StartDate           time.Time                   `gorm:"type:date;not null"`
	Status              string                      `gorm:"not null;index"`
	Stock               int
	Instructions        string
	BeforeAfterMeal     string
	NotificationEnabled bool
	ReminderBefore      int
	CaregiverNotify     bool
	LastTaken           *time.Time

	// Relationships
	Logs []ReminderLog `gorm:"foreignKey:ReminderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// ReminderLog records what happened to one slot of a reminder. At most one
// taken log exists per reminder, slot and scheduled day.
type ReminderLog struct {
	BaseModel

	UserID        uint       `gorm:"not null;index"`
	ReminderID    uint       `gorm:"not null;index;uniqueIndex:idx_reminder_logs_taken_dose,where:status = 'taken'"`
	Slot          string     `gorm:"not null;uniqueIndex:idx_reminder_logs_taken_dose,where:status = 'taken'"`
	ScheduledAt   time.Time  `gorm:"not null;index"`
	ScheduledDate *time.Time `gorm:"type:date;uniqueIndex:idx_reminder_logs_taken_dose,where:status = 'taken'"`
	TakenAt       *time.Time
	Status        string `gorm:"not null"`
	SnoozeMinutes int
	Notes         string
}

// BeforeSave keeps ScheduledDate on the UTC calendar day of ScheduledAt.
func (l *ReminderLog) BeforeSave(*gorm.DB) error {
	at := l.ScheduledAt.UTC()
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	l.ScheduledDate = &day
	return nil
}
