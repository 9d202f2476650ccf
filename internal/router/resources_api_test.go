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

func dailyReminder(times ...string) gin.H {
	return gin.H{
		"medicine_name":  "Metformin",
		"dosage":         "500mg",
		"repeat_pattern": "daily",
		"times":          times,
		"stock":          10,
	}
}

func TestOtherUsersRowsAreNotFound(t *testing.T) {
	api := newAPI(t)
	owner, _ := api.register("owner")
	intruder, _ := api.register("intruder")

	reminderID := api.create("/api/reminders", owner, dailyReminder("08:00"))
	doctorID := api.create("/api/doctors", owner, gin.H{"name": "Rao", "specialization": "Cardiology"})

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, path("/api/reminders/%d", reminderID), owner, nil).Code)

	for _, req := range []struct{ method, url string }{
		{http.MethodGet, path("/api/reminders/%d", reminderID)},
		{http.MethodPatch, path("/api/reminders/%d", reminderID)},
		{http.MethodDelete, path("/api/reminders/%d", reminderID)},
		{http.MethodPost, path("/api/reminders/%d/mark_taken", reminderID)},
		{http.MethodGet, path("/api/doctors/%d", doctorID)},
	} {
		w := api.do(req.method, req.url, intruder, gin.H{})
		assert.Equalf(t, http.StatusNotFound, w.Code, "%s %s", req.method, req.url)
	}

	// Booking against someone else's doctor is refused too.
	w := api.do(http.MethodPost, "/api/appointments", intruder, gin.H{
		"doctor_id":        doctorID,
		"title":            "Checkup",
		"appointment_date": "2030-01-15T10:00:00Z",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/reminders", intruder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/reminders/abc", owner, nil).Code)
}

func TestCreateReminderValidation(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("priya")

	w := api.do(http.MethodPost, "/api/reminders", token, dailyReminder("8am"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := dailyReminder("08:00")
	body["repeat_pattern"] = "weekly"
	w = api.do(http.MethodPost, "/api/reminders", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "custom_days")

	body["custom_days"] = []int{0, 3}
	w = api.do(http.MethodPost, "/api/reminders", token, body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestMarkTakenOncePerSlotPerDay(t *testing.T) {
	api := newAPI(t)
	token, userID := api.register("arjun")

	reminderID := api.create("/api/reminders", token, dailyReminder("00:00"))
	markTaken := path("/api/reminders/%d/mark_taken", reminderID)

	w := api.do(http.MethodPost, markTaken, token, gin.H{"notes": "with breakfast"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Log struct {
			Slot   string `json:"slot"`
			Status string `json:"status"`
		} `json:"log"`
		Reminder struct {
			Stock int `json:"stock"`
		} `json:"reminder"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "00:00", resp.Log.Slot)
	assert.Equal(t, types.LogTaken, resp.Log.Status)
	assert.Equal(t, 9, resp.Reminder.Stock)

	w = api.do(http.MethodPost, markTaken, token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This dose has already been marked as taken today")

	var logs int64
	api.conn.Model(&models.ReminderLog{}).Where("user_id = ?", userID).Count(&logs)
	assert.Equal(t, int64(1), logs)

	w = api.do(http.MethodPost, markTaken, token, gin.H{"slot": "09:30"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"slot"`)

	w = api.do(http.MethodGet, "/api/reminders/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"taken_today":1`)
}

func TestReminderLogsCannotInflateAdherence(t *testing.T) {
	now := todayAt(15, 0)
	freezeClock(t, now)

	api := newAPI(t)
	token, userID := api.register("tara")

	reminderID := api.create("/api/reminders", token, dailyReminder("00:00"))
	require.Equal(t, http.StatusCreated,
		api.do(http.MethodPost, path("/api/reminders/%d/mark_taken", reminderID), token, gin.H{}).Code)

	midnight := todayAt(0, 0)

	for minute := 1; minute <= 3; minute++ {
		at := midnight.Add(time.Duration(minute) * time.Minute)
		w := api.do(http.MethodPost, "/api/reminder-logs", token, gin.H{
			"reminder_id":  reminderID,
			"scheduled_at": at,
			"taken_at":     at,
			"status":       types.LogTaken,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"scheduled_at"`)
	}

	w := api.do(http.MethodPost, "/api/reminder-logs", token, gin.H{
		"reminder_id":  reminderID,
		"scheduled_at": midnight,
		"taken_at":     midnight.Add(time.Minute),
		"status":       types.LogTaken,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This dose has already been marked as taken today")

	// A snoozed log on the same slot cannot be flipped to a second taken dose.
	w = api.do(http.MethodPost, path("/api/reminders/%d/snooze", reminderID), token, gin.H{"slot": "00:00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var snoozed struct {
		Log struct {
			ID uint `json:"id"`
		} `json:"log"`
	}
	decode(t, w, &snoozed)

	w = api.do(http.MethodPatch, path("/api/reminder-logs/%d", snoozed.Log.ID), token, gin.H{
		"status":   types.LogTaken,
		"taken_at": midnight.Add(10 * time.Minute),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/reminders/adherence_stats?days=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats struct {
		TotalScheduled int     `json:"total_scheduled"`
		TotalTaken     int     `json:"total_taken"`
		AdherenceRate  float64 `json:"adherence_rate"`
	}
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.TotalScheduled)
	assert.Equal(t, 1, stats.TotalTaken)
	assert.Equal(t, 100.0, stats.AdherenceRate)

	// The store refuses a second taken row for the slot even past the handlers.
	duplicate := models.ReminderLog{
		UserID:      userID,
		ReminderID:  reminderID,
		Slot:        "00:00",
		ScheduledAt: midnight,
		TakenAt:     &now,
		Status:      types.LogTaken,
	}
	assert.Error(t, api.conn.Create(&duplicate).Error)

	missed := models.ReminderLog{
		UserID:      userID,
		ReminderID:  reminderID,
		Slot:        "00:00",
		ScheduledAt: midnight,
		Status:      types.LogMissed,
	}
	assert.NoError(t, api.conn.Create(&missed).Error)
}

func TestReminderResponsesShareAdherenceRate(t *testing.T) {
	freezeClock(t, todayAt(15, 0))

	api := newAPI(t)
	token, _ := api.register("veda")

	reminderID := api.create("/api/reminders", token, dailyReminder("00:00"))

	type rated struct {
		AdherenceRate float64 `json:"adherence_rate"`
	}

	w := api.do(http.MethodPost, path("/api/reminders/%d/mark_taken", reminderID), token, gin.H{})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var taken struct {
		Reminder rated `json:"reminder"`
	}
	decode(t, w, &taken)
	assert.Equal(t, 100.0, taken.Reminder.AdherenceRate)

	w = api.do(http.MethodPatch, path("/api/reminders/%d", reminderID), token, gin.H{"dosage": "1000mg"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated rated
	decode(t, w, &updated)
	assert.Equal(t, 100.0, updated.AdherenceRate)

	w = api.do(http.MethodGet, path("/api/reminders/%d", reminderID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched rated
	decode(t, w, &fetched)
	assert.Equal(t, 100.0, fetched.AdherenceRate)

	w = api.do(http.MethodGet, "/api/reminders/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Upcoming []rated `json:"upcoming"`
	}
	decode(t, w, &summary)
	require.Len(t, summary.Upcoming, 1)
	assert.Equal(t, 100.0, summary.Upcoming[0].AdherenceRate)
}

func TestSnoozeRecordsLog(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("lata")

	reminderID := api.create("/api/reminders", token, dailyReminder("00:00"))

	w := api.do(http.MethodPost, path("/api/reminders/%d/snooze", reminderID), token, gin.H{"minutes": 500})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, path("/api/reminders/%d/snooze", reminderID), token, gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Log struct {
			Status        string `json:"status"`
			SnoozeMinutes int    `json:"snooze_minutes"`
		} `json:"log"`
	}
	decode(t, w, &resp)
	assert.Equal(t, types.LogSnoozed, resp.Log.Status)
	assert.Equal(t, 15, resp.Log.SnoozeMinutes)
}

func TestHealthMetricRejectsInvertedBloodPressure(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("vikram")

	w := api.do(http.MethodPost, "/api/health-metrics", token, gin.H{"systolic_bp": 110, "diastolic_bp": 120})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "systolic_bp")

	w = api.do(http.MethodPost, "/api/health-metrics", token, gin.H{"systolic_bp": 120})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "blood_pressure")

	w = api.do(http.MethodPost, "/api/health-metrics", token, gin.H{"systolic_bp": 142, "diastolic_bp": 91})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"blood_pressure":"142/91"`)
	assert.Contains(t, w.Body.String(), `"blood_pressure_status":"high"`)

	// One metric per day.
	w = api.do(http.MethodPost, "/api/health-metrics", token, gin.H{"weight": 70})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"date"`)

	// The alert threshold is not a validation bound.
	yesterday := utils.FormatDate(services.Today().AddDate(0, 0, -1))
	w = api.do(http.MethodPost, "/api/health-metrics", token, gin.H{"date": yesterday, "systolic_bp": 140, "diastolic_bp": 90})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tomorrow := utils.FormatDate(services.Today().AddDate(0, 0, 1))
	w = api.do(http.MethodPost, "/api/health-metrics", token, gin.H{"date": tomorrow, "weight": 70})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthDataRollsUpIntoDailyMetric(t *testing.T) {
	api := newAPI(t)
	token, userID := api.register("zoya")

	w := api.do(http.MethodPost, "/api/health-data", token, gin.H{"data_type": "blood_pressure", "value": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/health-data", token, gin.H{
		"data_type":       "blood_pressure",
		"value":           150,
		"secondary_value": 95,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "High blood pressure")

	api.create("/api/health-data", token, gin.H{"data_type": "weight", "value": 64.5})
	api.create("/api/health-data", token, gin.H{"data_type": "steps", "value": 8000})

	var metrics []models.HealthMetric
	require.NoError(t, api.conn.Where("user_id = ?", userID).Find(&metrics).Error)
	require.Len(t, metrics, 1)

	metric := metrics[0]
	assert.True(t, services.SameDay(metric.Date, services.Now()))
	if assert.NotNil(t, metric.Systolic) && assert.NotNil(t, metric.Diastolic) {
		assert.Equal(t, 150, *metric.Systolic)
		assert.Equal(t, 95, *metric.Diastolic)
	}
	if assert.NotNil(t, metric.Weight) {
		assert.Equal(t, 64.5, *metric.Weight)
	}

	var alerts int64
	api.conn.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, types.NotificationHealthAlert).
		Count(&alerts)
	assert.Equal(t, int64(1), alerts)
}

func TestPrimaryDoctorIsExclusive(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("omar")

	first := api.create("/api/doctors", token, gin.H{"name": "Rao", "specialization": "Cardiology", "is_primary": true})
	second := api.create("/api/doctors", token, gin.H{"name": "Iyer", "specialization": "General", "is_primary": true})

	var doctor struct {
		IsPrimary bool `json:"is_primary"`
	}

	w := api.do(http.MethodGet, path("/api/doctors/%d", first), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &doctor)
	assert.False(t, doctor.IsPrimary)

	w = api.do(http.MethodPatch, path("/api/doctors/%d", first), token, gin.H{"is_primary": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, path("/api/doctors/%d", second), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &doctor)
	assert.False(t, doctor.IsPrimary)

	var primaries int64
	api.conn.Model(&models.Doctor{}).Where("is_primary = ?", true).Count(&primaries)
	assert.Equal(t, int64(1), primaries)
}

func TestNotificationsUnreadAndMarkRead(t *testing.T) {
	api := newAPI(t)
	token, userID := api.register("farah")

	unread := func() int {
		w := api.do(http.MethodGet, "/api/notifications/unread_count", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			UnreadCount int `json:"unread_count"`
		}
		decode(t, w, &resp)
		return resp.UnreadCount
	}

	// The welcome notification.
	assert.Equal(t, 1, unread())

	id := api.create("/api/notifications", token, gin.H{"type": "general", "title": "Hi", "message": "There"})
	assert.Equal(t, 2, unread())

	w := api.do(http.MethodPost, path("/api/notifications/%d/mark_read", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"delivered"`)
	assert.Equal(t, 1, unread())

	// Delivered notifications cannot go back to pending.
	w = api.do(http.MethodPatch, path("/api/notifications/%d", id), token, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	failed := models.Notification{UserID: userID, Type: types.NotificationGeneral, Title: "x", Message: "y", Status: types.NotificationFailed}
	require.NoError(t, api.conn.Create(&failed).Error)

	w = api.do(http.MethodPost, path("/api/notifications/%d/mark_read", failed.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendNotificationFromTemplate(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("irfan")

	templateID := api.create("/api/templates", token, gin.H{
		"name":             "Dose",
		"type":             "pill_reminder",
		"title_template":   "Time for {{medicine}}",
		"message_template": "Take {{dosage}} now",
		"is_active":        true,
	})

	w := api.do(http.MethodPost, "/api/notifications/send", token, gin.H{
		"template_id": templateID,
		"context":     gin.H{"medicine": "Aspirin", "dosage": "75mg"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"title":"Time for Aspirin"`)
	assert.Contains(t, w.Body.String(), `"message":"Take 75mg now"`)
	assert.Contains(t, w.Body.String(), `"delivery":"skipped"`)

	w = api.do(http.MethodPost, "/api/notifications/send", token, gin.H{"template_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGoalProgressUpdates(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("tara")

	w := api.do(http.MethodPost, "/api/goals", token, gin.H{
		"title":       "Walk",
		"category":    "physical_health",
		"start_date":  "2024-01-10",
		"target_date": "2024-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "target_date")

	id := api.create("/api/goals", token, gin.H{"title": "Walk", "category": "physical_health", "target_value": 40})

	w = api.do(http.MethodPost, path("/api/goals/%d/update_progress", id), token, gin.H{"current_value": 10, "progress_note": "first week"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"progress_percentage":25`)
	assert.Contains(t, w.Body.String(), "first week")
	assert.Contains(t, w.Body.String(), `"status":"active"`)
}
