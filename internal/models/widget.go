package models

import "gorm.io/datatypes"

type DashboardWidget struct {
	BaseModel

	UserID     uint   `gorm:"not null;uniqueIndex:idx_widget_user_type"`
	WidgetType string `gorm:"not null;uniqueIndex:idx_widget_user_type"`
	Position   int    `gorm:"not null"`
	IsEnabled  bool
	Settings   datatypes.JSONMap `gorm:"type:jsonb"`
}
