package models

import (
	"time"

	"gorm.io/datatypes"
)

type Goal struct {
	BaseModel

	UserID        uint   `gorm:"not null;index"`
	Title         string `gorm:"not null"`
	Description   string
	Category      string `gorm:"not null"`
	TargetValue   *float64
	CurrentValue  float64
	Unit          string
	StartDate     time.Time                   `gorm:"type:date;not null"`
	TargetDate    *time.Time                  `gorm:"type:date"`
	Status        string                      `gorm:"not null;index"`
	Milestones    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ProgressNotes string
}
