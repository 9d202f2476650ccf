package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel

	UserID        uint              `gorm:"not null;index"`
	Type          string            `gorm:"not null;index"`
	Title         string            `gorm:"not null"`
	Message       string            `gorm:"not null"`
	Data          datatypes.JSONMap `gorm:"type:jsonb"`
	PushToken     string
	PushMessageID string
	Status        string `gorm:"not null;index"`
	SentAt        *time.Time
	DeliveredAt   *time.Time
}

type NotificationTemplate struct {
	BaseModel

	UserID          uint                        `gorm:"not null;index"`
	Name            string                      `gorm:"not null"`
	Type            string                      `gorm:"not null"`
	TitleTemplate   string                      `gorm:"not null"`
	MessageTemplate string                      `gorm:"not null"`
	Variables       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	IsActive        bool
}
