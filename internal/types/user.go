package types

import "time"

type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

type ProfileResponse struct {
	ID                   uint      `json:"id"`
	UserID               uint      `json:"user_id"`
	Role                 string    `json:"role"`
	DateOfBirth          *string   `json:"date_of_birth"`
	Age                  *int      `json:"age"`
	Gender               string    `json:"gender"`
	PhoneNumber          string    `json:"phone_number"`
	Address              string    `json:"address"`
	EmergencyContact     string    `json:"emergency_contact"`
	EmergencyContactName string    `json:"emergency_contact_name"`
	BloodType            string    `json:"blood_type"`
	Allergies            string    `json:"allergies"`
	MedicalConditions    string    `json:"medical_conditions"`
	CurrentMedications   string    `json:"current_medications"`
	ProfilePictureURL    string    `json:"profile_picture_url"`
	HasPushToken         bool      `json:"has_push_token"`
	FullName             string    `json:"full_name"`
	UpdatedAt            time.Time `json:"updated_at"`
}
