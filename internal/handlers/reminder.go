package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/gorm"
)

type CreateReminderRequest struct {
	MedicineName        string   `json:"medicine_name" binding:"required,max=200"`
	Dosage              string   `json:"dosage" binding:"required,max=100"`
	RepeatPattern       string   `json:"repeat_pattern" binding:"required,oneof=daily weekly monthly custom none"`
	CustomDays          []int    `json:"custom_days"`
	Times               []string `json:"times" binding:"required,min=1,max=12,dive,hhmm"`
	StartDate           string   `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	Status              string   `json:"status" binding:"omitempty,oneof=active paused completed cancelled"`
	Stock               int      `json:"stock" binding:"gte=0"`
	Instructions        string   `json:"instructions"`
	BeforeAfterMeal     string   `json:"before_after_meal" binding:"omitempty,oneof=before after with anytime"`
	NotificationEnabled *bool    `json:"notification_enabled"`
	ReminderBefore      *int     `json:"reminder_before" binding:"omitempty,gte=0,lte=1440"`
	CaregiverNotify     bool     `json:"caregiver_notify"`
}

type UpdateReminderRequest struct {
	MedicineName        *string  `json:"medicine_name" binding:"omitempty,min=1,max=200"`
	Dosage              *string  `json:"dosage" binding:"omitempty,min=1,max=100"`
	RepeatPattern       *string  `json:"repeat_pattern" binding:"omitempty,oneof=daily weekly monthly custom none"`
	CustomDays          []int    `json:"custom_days"`
	Times               []string `json:"times" binding:"omitempty,min=1,max=12,dive,hhmm"`
	StartDate           *string  `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	Status              *string  `json:"status" binding:"omitempty,oneof=active paused completed cancelled"`
	Stock               *int     `json:"stock" binding:"omitempty,gte=0"`
	Instructions        *string  `json:"instructions"`
	BeforeAfterMeal     *string  `json:"before_after_meal" binding:"omitempty,oneof=before after with anytime"`
	NotificationEnabled *bool    `json:"notification_enabled"`
	ReminderBefore      *int     `json:"reminder_before" binding:"omitempty,gte=0,lte=1440"`
	CaregiverNotify     *bool    `json:"caregiver_notify"`
}

type MarkTakenRequest struct {
	Slot    string     `json:"slot" binding:"omitempty,hhmm"`
	TakenAt *time.Time `json:"taken_at"`
	Notes   string     `json:"notes" binding:"max=1000"`
}

type SnoozeRequest struct {
	Minutes *int   `json:"minutes" binding:"omitempty,gte=1,lte=240"`
	Slot    string `json:"slot" binding:"omitempty,hhmm"`
}

type ReminderResponse struct {
	ID                  uint       `json:"id"`
	MedicineName        string     `json:"medicine_name"`
	Dosage              string     `json:"dosage"`
	RepeatPattern       string     `json:"repeat_pattern"`
	CustomDays          []int      `json:"custom_days"`
	Times               []string   `json:"times"`
	StartDate           string     `json:"start_date"`
	Status              string     `json:"status"`
	IsActive            bool       `json:"is_active"`
	Stock               int        `json:"stock"`
	Instructions        string     `json:"instructions"`
	BeforeAfterMeal     string     `json:"before_after_meal"`
	NotificationEnabled bool       `json:"notification_enabled"`
	ReminderBefore      int        `json:"reminder_before"`
	CaregiverNotify     bool       `json:"caregiver_notify"`
	LastTaken           *time.Time `json:"last_taken"`
	IsDueToday          bool       `json:"is_due_today"`
	NextReminderTime    *time.Time `json:"next_reminder_time"`
	AdherenceRate       float64    `json:"adherence_rate"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type ReminderSummaryResponse struct {
	Total       int                `json:"total"`
	Active      int                `json:"active"`
	DueToday    int                `json:"due_today"`
	TakenToday  int                `json:"taken_today"`
	MissedToday int                `json:"missed_today"`
	Upcoming    []ReminderResponse `json:"upcoming"`
}

type ReminderAdherence struct {
	ReminderID    uint    `json:"reminder_id"`
	MedicineName  string  `json:"medicine_name"`
	Scheduled     int     `json:"scheduled"`
	Taken         int     `json:"taken"`
	AdherenceRate float64 `json:"adherence_rate"`
}

type AdherenceStatsResponse struct {
	Days           int                 `json:"days"`
	From           string              `json:"from"`
	To             string              `json:"to"`
	TotalScheduled int                 `json:"total_scheduled"`
	TotalTaken     int                 `json:"total_taken"`
	AdherenceRate  float64             `json:"adherence_rate"`
	Reminders      []ReminderAdherence `json:"reminders"`
}

// adherenceWindow is the look-back used for the per-reminder rate.
const adherenceWindow = 30

func CreateReminder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateReminderRequest

	if !bindJSON(ctx, &body) {
		return
	}

	if err := services.ValidateRecurrence(body.RepeatPattern, body.CustomDays); err != nil {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"custom_days": err.Error()})
		return
	}

	startDate := services.Today()

	if body.StartDate != "" {
		parsed, err := utils.ParseDate(body.StartDate)
		if err != nil {
			utils.RespondFieldErrors(ctx, utils.FieldErrors{"start_date": "Invalid date."})
			return
		}
		startDate = parsed
	}

	reminder := models.Reminder{
		UserID:              userID,
		MedicineName:        strings.TrimSpace(body.MedicineName),
		Dosage:              strings.TrimSpace(body.Dosage),
		RepeatPattern:       body.RepeatPattern,
		CustomDays:          body.CustomDays,
		Times:               services.SortedTimes(body.Times),
		StartDate:           startDate,
		Status:              lo.Ternary(body.Status == "", types.ReminderActive, body.Status),
		Stock:               body.Stock,
		Instructions:        body.Instructions,
		BeforeAfterMeal:     lo.Ternary(body.BeforeAfterMeal == "", "anytime", body.BeforeAfterMeal),
		NotificationEnabled: body.NotificationEnabled == nil || *body.NotificationEnabled,
		ReminderBefore:      lo.FromPtrOr(body.ReminderBefore, 15),
		CaregiverNotify:     body.CaregiverNotify,
	}

	if reminder.RepeatPattern != types.RepeatWeekly && reminder.RepeatPattern != types.RepeatMonthly {
		reminder.CustomDays = nil
	}

	var notification models.Notification

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reminder).Error; err != nil {
			return err
		}

		var err error
		notification, err = services.Notify(tx, userID, types.NotificationReminder,
			"Reminder Created",
			fmt.Sprintf("Reminder for %s (%s) has been created.", reminder.MedicineName, reminder.Dosage),
			map[string]interface{}{"reminder_id": reminder.ID})
		return err
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create reminder")
		return
	}

	deliverAfterCommit(ctx, notification)

	ctx.JSON(http.StatusCreated, buildReminderResponse(reminder, nil, services.Now()))
}

func ListReminders(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	query := db.DB.Scopes(utils.OwnedBy(userID)).Order("created_at DESC")

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reminders []models.Reminder

	if err := query.Find(&reminders).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminders")
		return
	}

	now := services.Now()

	logs, err := loadRecentLogs(userID, now, adherenceWindow)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	ctx.JSON(http.StatusOK, buildReminderResponses(reminders, logs, now))
}

func GetReminder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var reminder models.Reminder

	if err := utils.FindOwned(db.DB, userID, id, &reminder); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder")
		return
	}

	now := services.Now()

	logs, err := loadRecentLogs(userID, now, adherenceWindow)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	ctx.JSON(http.StatusOK, buildReminderResponse(reminder, logs, now))
}

func UpdateReminder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateReminderRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var reminder models.Reminder

	if err := utils.FindOwned(db.DB, userID, id, &reminder); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder")
		return
	}

	if body.MedicineName != nil {
		reminder.MedicineName = strings.TrimSpace(*body.MedicineName)
	}
	if body.Dosage != nil {
		reminder.Dosage = strings.TrimSpace(*body.Dosage)
	}
	if body.RepeatPattern != nil {
		reminder.RepeatPattern = *body.RepeatPattern
	}
	if body.CustomDays != nil {
		reminder.CustomDays = body.CustomDays
	}
	if body.Times != nil {
		reminder.Times = services.SortedTimes(body.Times)
	}
	if body.StartDate != nil {
		parsed, err := utils.ParseDate(*body.StartDate)
		if err != nil {
			utils.RespondFieldErrors(ctx, utils.FieldErrors{"start_date": "Invalid date."})
			return
		}
		reminder.StartDate = parsed
	}
	if body.Status != nil {
		reminder.Status = *body.Status
	}
	if body.Stock != nil {
		reminder.Stock = *body.Stock
	}
	if body.Instructions != nil {
		reminder.Instructions = *body.Instructions
	}
	if body.BeforeAfterMeal != nil {
		reminder.BeforeAfterMeal = *body.BeforeAfterMeal
	}
	if body.NotificationEnabled != nil {
		reminder.NotificationEnabled = *body.NotificationEnabled
	}
	if body.ReminderBefore != nil {
		reminder.ReminderBefore = *body.ReminderBefore
	}
	if body.CaregiverNotify != nil {
		reminder.CaregiverNotify = *body.CaregiverNotify
	}

	if reminder.RepeatPattern != types.RepeatWeekly && reminder.RepeatPattern != types.RepeatMonthly {
		reminder.CustomDays = nil
	}

	if err := services.ValidateRecurrence(reminder.RepeatPattern, reminder.CustomDays); err != nil {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"custom_days": err.Error()})
		return
	}

	if err := db.DB.Save(&reminder).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to update reminder", "reminder_id", reminder.ID)
		return
	}

	now := services.Now()

	logs, err := loadRecentLogs(userID, now, adherenceWindow)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	ctx.JSON(http.StatusOK, buildReminderResponse(reminder, logs, now))
}

func DeleteReminder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var reminder models.Reminder

	if err := utils.FindOwned(db.DB, userID, id, &reminder); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(utils.OwnedBy(userID)).Where("reminder_id = ?", reminder.ID).Delete(&models.ReminderLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&reminder).Error
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete reminder", "reminder_id", reminder.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// MarkTaken logs a dose for one slot of the reminder. A slot can be taken
// once per calendar day.
func MarkTaken(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body MarkTakenRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var reminder models.Reminder

	if err := utils.FindOwned(db.DB, userID, id, &reminder); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder")
		return
	}

	now := services.Now()
	takenAt := now

	if body.TakenAt != nil {
		takenAt = body.TakenAt.UTC()
		if takenAt.After(now.Add(5 * time.Minute)) {
			utils.RespondFieldErrors(ctx, utils.FieldErrors{"taken_at": "Taken time cannot be in the future."})
			return
		}
	}

	slot := body.Slot
	if slot == "" {
		slot = services.CurrentSlot(reminder.Times, takenAt)
	}

	if !lo.Contains(reminder.Times, slot) {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"slot": "Slot is not one of the reminder's times."})
		return
	}

	scheduledAt, err := services.SlotTime(takenAt, slot)

	if err != nil {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"slot": "Invalid time, expected HH:MM."})
		return
	}

	if takenAt.Before(scheduledAt) {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"taken_at": "Taken time cannot be before the scheduled time."})
		return
	}

	log := models.ReminderLog{
		UserID:      userID,
		ReminderID:  reminder.ID,
		Slot:        slot,
		ScheduledAt: scheduledAt,
		TakenAt:     &takenAt,
		Status:      types.LogTaken,
		Notes:       body.Notes,
	}

	var notification models.Notification

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureSlotNotTaken(tx, userID, reminder.ID, slot, scheduledAt, 0); err != nil {
			return err
		}

		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"last_taken": takenAt}
		if reminder.Stock > 0 {
			updates["stock"] = gorm.Expr("stock - 1")
		}

		if err := tx.Model(&reminder).Updates(updates).Error; err != nil {
			return err
		}

		var err error
		notification, err = services.Notify(tx, userID, types.NotificationPillReminder,
			"Pill Taken",
			fmt.Sprintf("You took %s (%s) scheduled for %s.", reminder.MedicineName, reminder.Dosage, slot),
			map[string]interface{}{"reminder_id": reminder.ID, "log_id": log.ID})
		return err
	})

	if isDuplicateDose(err) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "This dose has already been marked as taken today"})
		return
	}

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to mark reminder as taken", "reminder_id", reminder.ID)
		return
	}

	deliverAfterCommit(ctx, notification)

	if err := db.DB.First(&reminder, reminder.ID).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to refresh reminder", "reminder_id", reminder.ID)
		return
	}

	logs, err := loadRecentLogs(userID, now, adherenceWindow)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Reminder marked as taken",
		"log":      buildReminderLogResponse(log),
		"reminder": buildReminderResponse(reminder, logs, now),
	})
}

// Snooze records a delay for a slot without touching the schedule.
func Snooze(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body SnoozeRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var reminder models.Reminder

	if err := utils.FindOwned(db.DB, userID, id, &reminder); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder")
		return
	}

	now := services.Now()
	minutes := lo.FromPtrOr(body.Minutes, 15)

	slot := body.Slot
	if slot == "" {
		slot = services.CurrentSlot(reminder.Times, now)
	}

	if !lo.Contains(reminder.Times, slot) {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"slot": "Slot is not one of the reminder's times."})
		return
	}

	scheduledAt, err := services.SlotTime(now, slot)

	if err != nil {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"slot": "Invalid time, expected HH:MM."})
		return
	}

	log := models.ReminderLog{
		UserID:        userID,
		ReminderID:    reminder.ID,
		Slot:          slot,
		ScheduledAt:   scheduledAt,
		Status:        types.LogSnoozed,
		SnoozeMinutes: minutes,
		Notes:         fmt.Sprintf("Snoozed for %d minutes", minutes),
	}

	if err := db.DB.Create(&log).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to snooze reminder", "reminder_id", reminder.ID)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Reminder snoozed for %d minutes", minutes),
		"next_reminder": now.Add(time.Duration(minutes) * time.Minute),
		"log":           buildReminderLogResponse(log),
	})
}

func DueToday(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	now := services.Now()

	reminders, err := loadActiveReminders(userID)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminders")
		return
	}

	logs, err := loadRecentLogs(userID, now, adherenceWindow)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	due := lo.Filter(reminders, func(r models.Reminder, _ int) bool {
		return services.IsReminderDue(r, now)
	})

	ctx.JSON(http.StatusOK, buildReminderResponses(due, logs, now))
}

func ReminderSummary(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	summary, err := services.BuildReminderCounts(db.DB, userID, services.Now())

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to build reminder summary")
		return
	}

	now := services.Now()

	reminders, err := loadActiveReminders(userID)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminders")
		return
	}

	logs, err := loadRecentLogs(userID, now, adherenceWindow)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	due := lo.Filter(reminders, func(r models.Reminder, _ int) bool {
		return services.IsReminderDue(r, now)
	})

	sort.SliceStable(due, func(i, j int) bool {
		return firstSlot(due[i]) < firstSlot(due[j])
	})

	if len(due) > 5 {
		due = due[:5]
	}

	ctx.JSON(http.StatusOK, ReminderSummaryResponse{
		Total:       summary.Total,
		Active:      summary.Active,
		DueToday:    summary.DueToday,
		TakenToday:  summary.TakenToday,
		MissedToday: summary.MissedToday,
		Upcoming:    buildReminderResponses(due, logs, now),
	})
}

func AdherenceStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := utils.QueryInt(ctx, "days", adherenceWindow, 365)
	now := services.Now()
	from := services.DayStart(now).AddDate(0, 0, -(days - 1))

	var reminders []models.Reminder

	if err := db.DB.Scopes(utils.OwnedBy(userID)).Order("id").Find(&reminders).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminders")
		return
	}

	logs, err := loadRecentLogs(userID, now, days)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	response := AdherenceStatsResponse{
		Days:      days,
		From:      utils.FormatDate(from),
		To:        utils.FormatDate(now),
		Reminders: []ReminderAdherence{},
	}

	for _, r := range reminders {
		scheduled := services.ScheduledDoses(r, from, now)
		taken := services.CountTaken(r, logs, from, now)

		response.TotalScheduled += scheduled
		response.TotalTaken += taken
		response.Reminders = append(response.Reminders, ReminderAdherence{
			ReminderID:    r.ID,
			MedicineName:  r.MedicineName,
			Scheduled:     scheduled,
			Taken:         taken,
			AdherenceRate: services.AdherenceRate(taken, scheduled),
		})
	}

	response.AdherenceRate = services.AdherenceRate(response.TotalTaken, response.TotalScheduled)

	ctx.JSON(http.StatusOK, response)
}

func OverduePills(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	now := services.Now()

	reminders, err := loadActiveReminders(userID)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminders")
		return
	}

	logs, err := loadRecentLogs(userID, now, 1)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	overdue := services.OverduePills(reminders, logs, now)

	ctx.JSON(http.StatusOK, gin.H{
		"count":   len(overdue),
		"overdue": overdue,
	})
}

func loadActiveReminders(userID uint) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := db.DB.Scopes(utils.OwnedBy(userID)).
		Where("status = ?", types.ReminderActive).
		Order("id").
		Find(&reminders).Error
	return reminders, err
}

// loadRecentLogs returns the caller's logs scheduled within the last days
// calendar days, today included.
func loadRecentLogs(userID uint, now time.Time, days int) ([]models.ReminderLog, error) {
	from := services.DayStart(now).AddDate(0, 0, -(days - 1))

	var logs []models.ReminderLog
	err := db.DB.Scopes(utils.OwnedBy(userID)).
		Where("scheduled_at >= ?", from).
		Order("scheduled_at").
		Find(&logs).Error
	return logs, err
}

func firstSlot(r models.Reminder) string {
	times := services.SortedTimes(r.Times)
	if len(times) == 0 {
		return ""
	}
	return times[0]
}

func ensureSlotNotTaken(tx *gorm.DB, userID, reminderID uint, slot string, day time.Time, excludeLogID uint) error {
	var logs []models.ReminderLog

	query := tx.Scopes(utils.OwnedBy(userID)).
		Where("reminder_id = ? AND slot = ? AND status = ?", reminderID, slot, types.LogTaken)

	if excludeLogID != 0 {
		query = query.Where("id <> ?", excludeLogID)
	}

	if err := query.Find(&logs).Error; err != nil {
		return err
	}

	if services.SlotTaken(logs, reminderID, slot, day) {
		return services.ErrDuplicateDose
	}

	return nil
}

// isDuplicateDose matches both the read check and the unique index on
// taken doses.
func isDuplicateDose(err error) bool {
	return errors.Is(err, services.ErrDuplicateDose) || errors.Is(err, gorm.ErrDuplicatedKey)
}

func buildReminderResponses(reminders []models.Reminder, logs []models.ReminderLog, now time.Time) []ReminderResponse {
	response := make([]ReminderResponse, 0, len(reminders))
	for _, r := range reminders {
		response = append(response, buildReminderResponse(r, logs, now))
	}
	return response
}

// buildReminderResponse derives the schedule fields at now. Adherence is
// computed from logs, which may be nil when the caller has none loaded.
func buildReminderResponse(r models.Reminder, logs []models.ReminderLog, now time.Time) ReminderResponse {
	var adherence float64

	if logs != nil {
		from := services.DayStart(now).AddDate(0, 0, -(adherenceWindow - 1))
		adherence = services.AdherenceRate(
			services.CountTaken(r, logs, from, now),
			services.ScheduledDoses(r, from, now),
		)
	}

	customDays := []int(r.CustomDays)
	if customDays == nil {
		customDays = []int{}
	}

	return ReminderResponse{
		ID:                  r.ID,
		MedicineName:        r.MedicineName,
		Dosage:              r.Dosage,
		RepeatPattern:       r.RepeatPattern,
		CustomDays:          customDays,
		Times:               []string(r.Times),
		StartDate:           utils.FormatDate(r.StartDate),
		Status:              r.Status,
		IsActive:            r.Status == types.ReminderActive,
		Stock:               r.Stock,
		Instructions:        r.Instructions,
		BeforeAfterMeal:     r.BeforeAfterMeal,
		NotificationEnabled: r.NotificationEnabled,
		ReminderBefore:      r.ReminderBefore,
		CaregiverNotify:     r.CaregiverNotify,
		LastTaken:           r.LastTaken,
		IsDueToday:          services.IsReminderDue(r, now),
		NextReminderTime:    services.NextReminderTime(r, now),
		AdherenceRate:       adherence,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}
