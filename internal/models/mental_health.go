package models

type MentalHealthEntry struct {
	BaseModel

	UserID       uint `gorm:"not null;index"`
	MoodScore    int  `gorm:"not null"`
	AnxietyLevel int  `gorm:"not null"`
	StressLevel  int  `gorm:"not null"`
	SleepQuality int  `gorm:"not null"`
	Notes        string
}
