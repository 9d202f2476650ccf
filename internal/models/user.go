package models

import (
	"strings"
	"time"
)

type User struct {
	BaseModel

	Email        string `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"uniqueIndex;not null"`
	FirstName    string
	LastName     string
	PasswordHash string `gorm:"not null"`
	IsActive     bool   `gorm:"not null;default:true"`

	// Relationships
	Profile          *Profile               `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Sessions         []Session              `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Reminders        []Reminder             `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ReminderLogs     []ReminderLog          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Notifications    []Notification         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Templates        []NotificationTemplate `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	HealthMetrics    []HealthMetric         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	HealthData       []HealthData           `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Doctors          []Doctor               `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Appointments     []Appointment          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	MentalHealth     []MentalHealthEntry    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Goals            []Goal                 `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	DashboardWidgets []DashboardWidget      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (u User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}

type Profile struct {
	BaseModel

	UserID               uint       `gorm:"not null;uniqueIndex"`
	Role                 string     `gorm:"not null"`
	DateOfBirth          *time.Time `gorm:"type:date"`
	Gender               string
	PhoneNumber          string
	Address              string
	EmergencyContact     string
	EmergencyContactName string
	BloodType            string
	Allergies            string
	MedicalConditions    string
	CurrentMedications   string
	ProfilePictureURL    string
	PushToken            string
}

// Age in whole years at now, nil when the birth date is unknown.
func (p Profile) Age(now time.Time) *int {
	if p.DateOfBirth == nil {
		return nil
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

// Session backs a bearer token. A token is accepted only while its
// session is unrevoked and unexpired.
type Session struct {
	BaseModel

	UserID    uint      `gorm:"not null;index"`
	JTI       string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	RevokedAt *time.Time
}

func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
