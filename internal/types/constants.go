package types

const (
	ContextUserKey      = "user"
	ContextSessionKey   = "session_jti"
	ContextRequestIDKey = "request_id"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// Reminder recurrence and state.
const (
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
	RepeatCustom  = "custom"
	RepeatNone    = "none"

	ReminderActive    = "active"
	ReminderPaused    = "paused"
	ReminderCompleted = "completed"
	ReminderCancelled = "cancelled"

	LogTaken     = "taken"
	LogMissed    = "missed"
	LogSnoozed   = "snoozed"
	LogCancelled = "cancelled"
)

const (
	NotificationReminder     = "reminder"
	NotificationPillReminder = "pill_reminder"
	NotificationAppointment  = "appointment"
	NotificationHealthAlert  = "health_alert"
	NotificationMentalHealth = "mental_health"
	NotificationGeneral      = "general"
	NotificationEmergency    = "emergency"

	NotificationPending   = "pending"
	NotificationSent      = "sent"
	NotificationDelivered = "delivered"
	NotificationFailed    = "failed"
)

const (
	DataBloodPressure    = "blood_pressure"
	DataHeartRate        = "heart_rate"
	DataWeight           = "weight"
	DataBloodSugar       = "blood_sugar"
	DataTemperature      = "temperature"
	DataOxygenSaturation = "oxygen_saturation"
	DataSteps            = "steps"
	DataSleepHours       = "sleep_hours"
	DataMood             = "mood"
	DataPainLevel        = "pain_level"
)

const (
	AppointmentScheduled = "scheduled"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalPaused    = "paused"
	GoalCancelled = "cancelled"
)

const (
	WidgetReminders    = "reminders"
	WidgetMentalHealth = "mental_health"
	WidgetAppointments = "appointments"
	WidgetCommunity    = "community"
	WidgetAIAnalysis   = "ai_analysis"
	WidgetHealthStats  = "health_stats"
)

// DefaultWidgets is the layout a user gets on reset, in position order.
var DefaultWidgets = []string{
	WidgetReminders,
	WidgetMentalHealth,
	WidgetAppointments,
	WidgetCommunity,
	WidgetAIAnalysis,
	WidgetHealthStats,
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
