package models

import "time"

type Doctor struct {
	BaseModel

	UserID         uint   `gorm:"not null;index"`
	Name           string `gorm:"not null"`
	Specialization string `gorm:"not null"`
	Phone          string
	Email          string
	Address        string
	Notes          string
	IsPrimary      bool

	// Relationships
	Appointments []Appointment `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Appointment struct {
	BaseModel

	UserID          uint   `gorm:"not null;index"`
	DoctorID        uint   `gorm:"not null;index"`
	Title           string `gorm:"not null"`
	Description     string
	AppointmentDate time.Time `gorm:"not null;index"`
	Duration        int       `gorm:"not null"`
	Status          string    `gorm:"not null;index"`
	Notes           string
}
