package models

import "time"

type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Session{},
		&Reminder{},
		&ReminderLog{},
		&Notification{},
		&NotificationTemplate{},
		&HealthMetric{},
		&HealthData{},
		&Doctor{},
		&Appointment{},
		&MentalHealthEntry{},
		&Goal{},
		&DashboardWidget{},
	}
}

// Owned lists the per-user tables, children before parents, in the
// order account deletion clears them.
func Owned() []interface{} {
	return []interface{}{
		&ReminderLog{},
		&Reminder{},
		&Notification{},
		&NotificationTemplate{},
		&HealthData{},
		&HealthMetric{},
		&Appointment{},
		&Doctor{},
		&MentalHealthEntry{},
		&Goal{},
		&DashboardWidget{},
		&Session{},
		&Profile{},
	}
}
