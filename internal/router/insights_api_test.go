package router

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpcomingAppointments(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("uma")

	doctorID := api.create("/api/doctors", token, gin.H{"name": "Iyer", "specialization": "Endocrinology"})
	now := time.Now().UTC()

	book := func(title string, offset time.Duration, status string) {
		api.create("/api/appointments", token, gin.H{
			"doctor_id":        doctorID,
			"title":            title,
			"appointment_date": now.Add(offset),
			"status":           status,
		})
	}

	book("in two days", 48*time.Hour, types.AppointmentScheduled)
	book("tomorrow", 24*time.Hour, types.AppointmentConfirmed)
	book("cancelled", 36*time.Hour, types.AppointmentCancelled)
	book("completed", 72*time.Hour, types.AppointmentCompleted)
	book("last week", -7*24*time.Hour, types.AppointmentScheduled)

	w := api.do(http.MethodGet, "/api/appointments/upcoming", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var upcoming []struct {
		Title      string `json:"title"`
		DoctorName string `json:"doctor_name"`
	}
	decode(t, w, &upcoming)

	require.Len(t, upcoming, 2)
	assert.Equal(t, "tomorrow", upcoming[0].Title)
	assert.Equal(t, "in two days", upcoming[1].Title)
	assert.Equal(t, "Iyer", upcoming[0].DoctorName)
}

func TestMentalHealthAlertsAreRaisedEveryTime(t *testing.T) {
	api := newAPI(t)
	token, userID := api.register("kavya")

	entry := gin.H{"mood_score": 2, "anxiety_level": 9, "stress_level": 9, "sleep_quality": 5}

	alerts := func() []models.Notification {
		var notifications []models.Notification
		require.NoError(t, api.conn.
			Where("user_id = ? AND type = ?", userID, types.NotificationMentalHealth).
			Order("id").
			Find(&notifications).Error)
		return notifications
	}

	api.create("/api/mental-health", token, entry)

	first := alerts()
	require.Len(t, first, 3)
	assert.ElementsMatch(t,
		[]string{services.LowMoodAlert, services.HighAnxietyAlert, services.HighStressAlert},
		[]string{first[0].Message, first[1].Message, first[2].Message})

	api.create("/api/mental-health", token, entry)
	assert.Len(t, alerts(), 6)

	api.create("/api/mental-health", token, gin.H{"mood_score": 7, "anxiety_level": 3, "stress_level": 4, "sleep_quality": 7})
	assert.Len(t, alerts(), 6)
}

func TestDueTodayAndOverduePills(t *testing.T) {
	now := todayAt(15, 0)
	freezeClock(t, now)

	api := newAPI(t)
	token, _ := api.register("nila")

	dailyID := api.create("/api/reminders", token, dailyReminder("08:00", "14:30", "20:00"))

	notToday := (services.Weekday(now) + 1) % 7
	api.create("/api/reminders", token, gin.H{
		"medicine_name":  "Vitamin D",
		"dosage":         "1000IU",
		"repeat_pattern": "weekly",
		"custom_days":    []int{notToday},
		"times":          []string{"08:00"},
	})

	paused := dailyReminder("08:00")
	paused["status"] = types.ReminderPaused
	api.create("/api/reminders", token, paused)

	w := api.do(http.MethodGet, "/api/reminders/due_today", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var due []struct {
		ID               uint       `json:"id"`
		IsDueToday       bool       `json:"is_due_today"`
		NextReminderTime *time.Time `json:"next_reminder_time"`
	}
	decode(t, w, &due)
	require.Len(t, due, 1)
	assert.Equal(t, dailyID, due[0].ID)
	assert.True(t, due[0].IsDueToday)
	require.NotNil(t, due[0].NextReminderTime)
	assert.True(t, todayAt(19, 45).Equal(*due[0].NextReminderTime))

	type overdueView struct {
		Count   int `json:"count"`
		Overdue []struct {
			ReminderID   uint    `json:"reminder_id"`
			Slot         string  `json:"slot"`
			OverdueHours float64 `json:"overdue_hours"`
		} `json:"overdue"`
	}

	w = api.do(http.MethodGet, "/api/reminders/overdue_pills", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var overdue overdueView
	decode(t, w, &overdue)
	require.Equal(t, 1, overdue.Count)
	assert.Equal(t, dailyID, overdue.Overdue[0].ReminderID)
	assert.Equal(t, "08:00", overdue.Overdue[0].Slot)
	assert.Equal(t, 7.0, overdue.Overdue[0].OverdueHours)

	w = api.do(http.MethodPost, path("/api/reminders/%d/mark_taken", dailyID), token, gin.H{"slot": "08:00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/reminders/overdue_pills", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	overdue = overdueView{}
	decode(t, w, &overdue)
	assert.Zero(t, overdue.Count)
	assert.Empty(t, overdue.Overdue)
}

func TestAdherenceStats(t *testing.T) {
	freezeClock(t, todayAt(15, 0))

	api := newAPI(t)
	token, _ := api.register("ojas")

	reminderID := api.create("/api/reminders", token, dailyReminder("08:00", "20:00"))
	require.Equal(t, http.StatusCreated,
		api.do(http.MethodPost, path("/api/reminders/%d/mark_taken", reminderID), token, gin.H{"slot": "08:00"}).Code)

	w := api.do(http.MethodGet, "/api/reminders/adherence_stats?days=7", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats struct {
		Days           int     `json:"days"`
		To             string  `json:"to"`
		TotalScheduled int     `json:"total_scheduled"`
		TotalTaken     int     `json:"total_taken"`
		AdherenceRate  float64 `json:"adherence_rate"`
		Reminders      []struct {
			ReminderID    uint    `json:"reminder_id"`
			Scheduled     int     `json:"scheduled"`
			Taken         int     `json:"taken"`
			AdherenceRate float64 `json:"adherence_rate"`
		} `json:"reminders"`
	}
	decode(t, w, &stats)

	// The window starts at the reminder's start date, today.
	assert.Equal(t, 7, stats.Days)
	assert.Equal(t, utils.FormatDate(services.Today()), stats.To)
	assert.Equal(t, 2, stats.TotalScheduled)
	assert.Equal(t, 1, stats.TotalTaken)
	assert.Equal(t, 50.0, stats.AdherenceRate)
	require.Len(t, stats.Reminders, 1)
	assert.Equal(t, reminderID, stats.Reminders[0].ReminderID)
	assert.Equal(t, 50.0, stats.Reminders[0].AdherenceRate)

	w = api.do(http.MethodGet, "/api/reminders/adherence_stats?days=1000", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &stats)
	assert.Equal(t, 365, stats.Days)
}

func TestMentalHealthTrends(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("ira")

	w := api.do(http.MethodGet, "/api/mental-health/trends", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total_entries":0`)
	assert.Contains(t, w.Body.String(), `"alerts":[]`)

	api.create("/api/mental-health", token, gin.H{"mood_score": 2, "anxiety_level": 9, "stress_level": 9, "sleep_quality": 5})
	api.create("/api/mental-health", token, gin.H{"mood_score": 8, "anxiety_level": 3, "stress_level": 9, "sleep_quality": 5})

	w = api.do(http.MethodGet, "/api/mental-health/trends?days=7", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Days         int `json:"days"`
		TotalEntries int `json:"total_entries"`
		Trends       map[string]struct {
			Average *float64 `json:"average"`
			Trend   string   `json:"trend"`
		} `json:"trends"`
		Alerts []string `json:"alerts"`
	}
	decode(t, w, &resp)

	assert.Equal(t, 7, resp.Days)
	assert.Equal(t, 2, resp.TotalEntries)

	require.NotNil(t, resp.Trends["mood_score"].Average)
	assert.Equal(t, 5.0, *resp.Trends["mood_score"].Average)
	assert.Equal(t, services.TrendImproving, resp.Trends["mood_score"].Trend)
	// Anxiety fell, which is an improvement.
	assert.Equal(t, services.TrendImproving, resp.Trends["anxiety_level"].Trend)
	assert.Equal(t, services.TrendStable, resp.Trends["stress_level"].Trend)

	assert.Equal(t, []string{services.HighStressAlert}, resp.Alerts)
}

func TestHealthDataTrends(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("jaya")

	now := time.Now().UTC()
	api.create("/api/health-data", token, gin.H{"data_type": "heart_rate", "value": 70, "recorded_at": now.Add(-2 * time.Hour)})
	api.create("/api/health-data", token, gin.H{"data_type": "heart_rate", "value": 90, "recorded_at": now.Add(-time.Hour)})
	api.create("/api/health-data", token, gin.H{"data_type": "weight", "value": 64.5, "recorded_at": now.Add(-time.Hour)})
	api.create("/api/health-data", token, gin.H{"data_type": "weight", "value": 60, "recorded_at": now.AddDate(0, 0, -20)})

	w := api.do(http.MethodGet, "/api/health-data/trends?days=7", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Days   int `json:"days"`
		Trends map[string]struct {
			Average float64  `json:"average"`
			Count   int      `json:"count"`
			Trend   string   `json:"trend"`
			Latest  *float64 `json:"latest"`
		} `json:"trends"`
	}
	decode(t, w, &resp)

	require.Len(t, resp.Trends, 2)

	heart := resp.Trends["heart_rate"]
	assert.Equal(t, 80.0, heart.Average)
	assert.Equal(t, 2, heart.Count)
	// A rising heart rate is labelled as declining health.
	assert.Equal(t, services.TrendDeclining, heart.Trend)
	require.NotNil(t, heart.Latest)
	assert.Equal(t, 90.0, *heart.Latest)

	weight := resp.Trends["weight"]
	assert.Equal(t, 1, weight.Count)
	assert.Equal(t, services.TrendStable, weight.Trend)
}

func TestGoalProgressSummary(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("esha")

	today := services.Today()

	api.create("/api/goals", token, gin.H{"title": "Walk", "category": "physical_health", "target_value": 100, "current_value": 50})
	api.create("/api/goals", token, gin.H{"title": "Meditate", "category": "mental_health", "target_value": 10, "current_value": 20})
	api.create("/api/goals", token, gin.H{
		"title":         "Refill",
		"category":      "medication",
		"target_value":  10,
		"start_date":    utils.FormatDate(today.AddDate(0, 0, -10)),
		"target_date":   utils.FormatDate(today.AddDate(0, 0, -1)),
		"current_value": 0,
	})
	api.create("/api/goals", token, gin.H{"title": "Paused", "category": "lifestyle", "target_value": 5, "status": "paused"})

	w := api.do(http.MethodGet, "/api/goals/progress_summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		TotalActive     int            `json:"total_active"`
		AverageProgress float64        `json:"average_progress"`
		Overdue         int            `json:"overdue"`
		CompletedTarget int            `json:"completed_target"`
		ByCategory      map[string]int `json:"by_category"`
		Goals           []struct {
			Title string `json:"title"`
		} `json:"goals"`
	}
	decode(t, w, &resp)

	assert.Equal(t, 3, resp.TotalActive)
	assert.Equal(t, 50.0, resp.AverageProgress)
	assert.Equal(t, 1, resp.Overdue)
	assert.Equal(t, 1, resp.CompletedTarget)
	assert.Equal(t, map[string]int{"physical_health": 1, "mental_health": 1, "medication": 1}, resp.ByCategory)
	assert.Len(t, resp.Goals, 3)
}
