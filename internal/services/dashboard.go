package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/internal/logger"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"gorm.io/gorm"
)

// SectionFunc computes one part of the dashboard for userID at now.
type SectionFunc func(tx *gorm.DB, userID uint, now time.Time) (interface{}, error)

type Section struct {
	Name  string
	Build SectionFunc
}

// DashboardSections are evaluated in order by BuildDashboard.
var DashboardSections = []Section{
	{"user_info", userInfoSection},
	{"reminder_summary", reminderSection},
	{"mental_health_summary", mentalHealthSection},
	{"appointment_summary", appointmentSection},
	{"community_summary", communitySection},
	{"ai_analysis_summary", aiAnalysisSection},
	{"health_metrics_summary", healthMetricsSection},
	{"goals_summary", goalsSection},
	{"recent_activity", recentActivitySection},
	{"notifications", pendingNotificationsSection},
	{"widgets", widgetsSection},
}

// BuildDashboard runs every section independently. A section that fails or
// panics is reported as unavailable instead of failing the whole response.
func BuildDashboard(tx *gorm.DB, userID uint, now time.Time, sections []Section) map[string]interface{} {
	out := make(map[string]interface{}, len(sections))
	for _, s := range sections {
		out[s.Name] = RunSection(s, tx, userID, now)
	}
	return out
}

// RunSection evaluates s, converting errors and panics into an error marker.
func RunSection(s Section, tx *gorm.DB, userID uint, now time.Time) (result interface{}) {
	unavailable := map[string]interface{}{"error": s.Name + " not available"}

	defer func() {
		if r := recover(); r != nil {
			logger.L().Errorw("dashboard section panicked", "section", s.Name, "user_id", userID, "panic", r)
			result = unavailable
		}
	}()

	value, err := s.Build(tx, userID, now)
	if err != nil {
		logger.L().Warnw("dashboard section failed", "section", s.Name, "user_id", userID, "error", err)
		return unavailable
	}

	return value
}

type ReminderCounts struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	DueToday       int     `json:"due_today"`
	TakenToday     int     `json:"taken_today"`
	MissedToday    int     `json:"missed_today"`
	ScheduledToday int     `json:"scheduled_today"`
	AdherenceToday float64 `json:"adherence_today"`
}

// BuildReminderCounts summarises the caller's reminders and today's logs.
func BuildReminderCounts(tx *gorm.DB, userID uint, now time.Time) (ReminderCounts, error) {
	var counts ReminderCounts

	var reminders []models.Reminder
	if err := tx.Where("user_id = ?", userID).Find(&reminders).Error; err != nil {
		return counts, fmt.Errorf("load reminders: %w", err)
	}

	var logs []models.ReminderLog
	if err := tx.Where("user_id = ? AND scheduled_at >= ?", userID, DayStart(now)).Find(&logs).Error; err != nil {
		return counts, fmt.Errorf("load reminder logs: %w", err)
	}

	counts.Total = len(reminders)

	for _, r := range reminders {
		if r.Status == types.ReminderActive {
			counts.Active++
		}
		if IsReminderDue(r, now) {
			counts.DueToday++
			counts.ScheduledToday += ScheduledDoses(r, now, now)
		}
	}

	for _, r := range reminders {
		counts.TakenToday += CountTaken(r, logs, now, now)
	}

	for _, l := range logs {
		if l.Status == types.LogMissed && SameDay(l.ScheduledAt, now) {
			counts.MissedToday++
		}
	}

	counts.AdherenceToday = AdherenceRate(counts.TakenToday, counts.ScheduledToday)

	return counts, nil
}

func userInfoSection(tx *gorm.DB, userID uint, now time.Time) (interface{}, error) {
	var user models.User
	if err := tx.Preload("Profile").First(&user, userID).Error; err != nil {
		return nil, err
	}

	info := map[string]interface{}{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"full_name":   user.FullName(),
		"date_joined": user.CreatedAt,
		"role":        types.RolePatient,
		"age":         nil,
	}

	if user.Profile != nil {
		info["role"] = user.Profile.Role
		info["age"] = user.Profile.Age(now)
	}

	return info, nil
}

func reminderSection(tx *gorm.DB, userID uint, now time.Time) (interface{}, error) {
	return BuildReminderCounts(tx, userID, now)
}

func mentalHealthSection(tx *gorm.DB, userID uint, now time.Time) (interface{}, error) {
	var entries []models.MentalHealthEntry
	err := tx.Where("user_id = ? AND created_at >= ?", userID, DayStart(now).AddDate(0, 0, -29)).
		Order("created_at").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	weekStart := DayStart(now).AddDate(0, 0, -6)
	week := lo.Filter(entries, func(e models.MentalHealthEntry, _ int) bool {
		return !e.CreatedAt.Before(weekStart)
	})

	moods := lo.Map(entries, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.MoodScore) })

	summary := map[string]interface{}{
		"entries_this_week": len(week),
		"average_mood":      nil,
		"average_anxiety":   nil,
		"average_stress":    nil,
		"mood_trend":        CalculateTrend(moods, true),
		"latest_entry":      nil,
	}

	if len(week) > 0 {
		summary["average_mood"] = Round2(Average(lo.Map(week, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.MoodScore) })))
		summary["average_anxiety"] = Round2(Average(lo.Map(week, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.AnxietyLevel) })))
		summary["average_stress"] = Round2(Average(lo.Map(week, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.StressLevel) })))
	}

	if len(entries) > 0 {
		latest := entries[len(entries)-1]
		summary["latest_entry"] = map[string]interface{}{
			"id":            latest.ID,
			"mood_score":    latest.MoodScore,
			"anxiety_level": latest.AnxietyLevel,
			"stress_level":  latest.StressLevel,
			"sleep_quality": latest.SleepQuality,
			"created_at":    latest.CreatedAt,
		}
	}

	return summary, nil
}

func appointmentSection(tx *gorm.DB, userID uint, now time.Time) (interface{}, error) {
	var upcoming []models.Appointment
	err := tx.Where("user_id = ? AND appointment_date > ? AND status IN ?", userID, now,
		[]string{types.AppointmentScheduled, types.AppointmentConfirmed}).
		Order("appointment_date").
		Find(&upcoming).Error
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var completed int64
	err = tx.Model(&models.Appointment{}).
		Where("user_id = ? AND status = ? AND appointment_date >= ? AND appointment_date < ?",
			userID, types.AppointmentCompleted, monthStart, monthStart.AddDate(0, 1, 0)).
		Count(&completed).Error
	if err != nil {
		return nil, err
	}

	summary := map[string]interface{}{
		"upcoming_count":       len(upcoming),
		"completed_this_month": completed,
		"next_appointment":     nil,
	}

	if len(upcoming) > 0 {
		next := upcoming[0]

		var doctor models.Doctor
		if err := tx.Where("user_id = ?", userID).First(&doctor, next.DoctorID).Error; err != nil {
			return nil, err
		}

		summary["next_appointment"] = map[string]interface{}{
			"id":               next.ID,
			"title":            next.Title,
			"doctor_name":      doctor.Name,
			"appointment_date": next.AppointmentDate,
			"status":           next.Status,
		}
	}

	return summary, nil
}

func communitySection(*gorm.DB, uint, time.Time) (interface{}, error) {
	return map[string]interface{}{
		"posts_count":  0,
		"groups_count": 0,
		"message":      "Community features coming soon",
	}, nil
}

func aiAnalysisSection(*gorm.DB, uint, time.Time) (interface{}, error) {
	return map[string]interface{}{
		"insights": []string{},
		"message":  "AI health analysis coming soon",
	}, nil
}

func healthMetricsSection(tx *gorm.DB, userID uint, now time.Time) (interface{}, error) {
	var metrics []models.HealthMetric
	if err := tx.Where("user_id = ?", userID).Order("date DESC").Limit(1).Find(&metrics).Error; err != nil {
		return nil, err
	}

	var recent int64
	err := tx.Model(&models.HealthData{}).
		Where("user_id = ? AND recorded_at >= ?", userID, DayStart(now).AddDate(0, 0, -6)).
		Count(&recent).Error
	if err != nil {
		return nil, err
	}

	summary := map[string]interface{}{
		"latest":            nil,
		"recent_data_count": recent,
	}

	if len(metrics) > 0 {
		m := metrics[0]
		var bp interface{}
		if m.Systolic != nil && m.Diastolic != nil {
			bp = fmt.Sprintf("%d/%d", *m.Systolic, *m.Diastolic)
		}
		summary["latest"] = map[string]interface{}{
			"date":                  m.Date.Format(types.DateLayout),
			"weight":                m.Weight,
			"blood_pressure":        bp,
			"blood_pressure_status": BloodPressureStatus(m.Systolic, m.Diastolic),
			"heart_rate":            m.HeartRate,
			"mood_score":            m.MoodScore,
			"stress_level":          m.StressLevel,
			"sleep_hours":           m.SleepHours,
		}
	}

	return summary, nil
}

func goalsSection(tx *gorm.DB, userID uint, now time.Time) (interface{}, error) {
	var goals []models.Goal
	if err := tx.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return nil, err
	}

	var active, completedThisMonth, overdue int
	for _, g := range goals {
		switch g.Status {
		case types.GoalActive:
			active++
		case types.GoalCompleted:
			if g.UpdatedAt.UTC().Year() == now.Year() && g.UpdatedAt.UTC().Month() == now.Month() {
				completedThisMonth++
			}
		}
		if IsGoalOverdue(g.Status, g.TargetDate, now) {
			overdue++
		}
	}

	return map[string]interface{}{
		"total_active":         active,
		"completed_this_month": completedThisMonth,
		"overdue":              overdue,
	}, nil
}

type activity struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func recentActivitySection(tx *gorm.DB, userID uint, _ time.Time) (interface{}, error) {
	const limit = 10

	var logs []models.ReminderLog
	if err := tx.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}

	var notifications []models.Notification
	if err := tx.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, err
	}

	names := map[uint]string{}
	if len(logs) > 0 {
		var reminders []models.Reminder
		ids := lo.Uniq(lo.Map(logs, func(l models.ReminderLog, _ int) uint { return l.ReminderID }))
		if err := tx.Where("user_id = ? AND id IN ?", userID, ids).Find(&reminders).Error; err != nil {
			return nil, err
		}
		for _, r := range reminders {
			names[r.ID] = r.MedicineName
		}
	}

	events := make([]activity, 0, len(logs)+len(notifications))

	for _, l := range logs {
		events = append(events, activity{
			Type:        "reminder_log",
			Title:       fmt.Sprintf("%s %s", names[l.ReminderID], l.Status),
			Description: fmt.Sprintf("Dose for %s", l.Slot),
			Timestamp:   l.CreatedAt,
		})
	}

	for _, n := range notifications {
		events = append(events, activity{
			Type:        "notification",
			Title:       n.Title,
			Description: n.Message,
			Timestamp:   n.CreatedAt,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	if len(events) > limit {
		events = events[:limit]
	}

	return events, nil
}

func pendingNotificationsSection(tx *gorm.DB, userID uint, _ time.Time) (interface{}, error) {
	var notifications []models.Notification
	err := tx.Where("user_id = ? AND status = ?", userID, types.NotificationPending).
		Order("created_at DESC").
		Limit(5).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(notifications, func(n models.Notification, _ int) map[string]interface{} {
		return map[string]interface{}{
			"id":         n.ID,
			"type":       n.Type,
			"title":      n.Title,
			"message":    n.Message,
			"status":     n.Status,
			"created_at": n.CreatedAt,
		}
	}), nil
}

func widgetsSection(tx *gorm.DB, userID uint, _ time.Time) (interface{}, error) {
	var widgets []models.DashboardWidget
	err := tx.Where("user_id = ? AND is_enabled = ?", userID, true).
		Order("position").
		Find(&widgets).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(widgets, func(w models.DashboardWidget, _ int) map[string]interface{} {
		return map[string]interface{}{
			"id":          w.ID,
			"widget_type": w.WidgetType,
			"position":    w.Position,
			"settings":    w.Settings,
		}
	}), nil
}

type DashboardStats struct {
	TotalReminders        int     `json:"total_reminders"`
	ActiveReminders       int     `json:"active_reminders"`
	AverageAdherence      float64 `json:"average_adherence"`
	TodayAdherence        float64 `json:"today_adherence"`
	UpcomingAppointments  int64   `json:"upcoming_appointments"`
	RecentHealthData      int64   `json:"recent_health_data"`
	UnreadNotifications   int64   `json:"unread_notifications"`
	MentalHealthMoodTrend string  `json:"mental_health_mood_trend"`
}

// BuildDashboardStats collects the headline counters. Average adherence
// covers the last 30 days.
func BuildDashboardStats(tx *gorm.DB, userID uint, now time.Time) (DashboardStats, error) {
	var stats DashboardStats

	counts, err := BuildReminderCounts(tx, userID, now)
	if err != nil {
		return stats, err
	}

	stats.TotalReminders = counts.Total
	stats.ActiveReminders = counts.Active
	stats.TodayAdherence = counts.AdherenceToday

	from := DayStart(now).AddDate(0, 0, -29)

	var reminders []models.Reminder
	if err := tx.Where("user_id = ?", userID).Find(&reminders).Error; err != nil {
		return stats, err
	}

	var logs []models.ReminderLog
	if err := tx.Where("user_id = ? AND scheduled_at >= ?", userID, from).Find(&logs).Error; err != nil {
		return stats, err
	}

	scheduled := lo.SumBy(reminders, func(r models.Reminder) int { return ScheduledDoses(r, from, now) })
	taken := lo.SumBy(reminders, func(r models.Reminder) int { return CountTaken(r, logs, from, now) })
	stats.AverageAdherence = AdherenceRate(taken, scheduled)

	err = tx.Model(&models.Appointment{}).
		Where("user_id = ? AND appointment_date > ? AND status IN ?", userID, now,
			[]string{types.AppointmentScheduled, types.AppointmentConfirmed}).
		Count(&stats.UpcomingAppointments).Error
	if err != nil {
		return stats, err
	}

	err = tx.Model(&models.HealthData{}).
		Where("user_id = ? AND recorded_at >= ?", userID, DayStart(now).AddDate(0, 0, -6)).
		Count(&stats.RecentHealthData).Error
	if err != nil {
		return stats, err
	}

	err = tx.Model(&models.Notification{}).
		Where("user_id = ? AND status IN ?", userID, []string{types.NotificationPending, types.NotificationSent}).
		Count(&stats.UnreadNotifications).Error
	if err != nil {
		return stats, err
	}

	var entries []models.MentalHealthEntry
	if err := tx.Where("user_id = ? AND created_at >= ?", userID, from).Order("created_at").Find(&entries).Error; err != nil {
		return stats, err
	}

	stats.MentalHealthMoodTrend = CalculateTrend(
		lo.Map(entries, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.MoodScore) }),
		true,
	)

	return stats, nil
}
