package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/gorm"
)

type CreateReminderLogRequest struct {
	ReminderID    uint       `json:"reminder_id" binding:"required"`
	ScheduledAt   time.Time  `json:"scheduled_at" binding:"required"`
	TakenAt       *time.Time `json:"taken_at"`
	Status        string     `json:"status" binding:"required,oneof=taken missed snoozed cancelled"`
	SnoozeMinutes int        `json:"snooze_minutes" binding:"gte=0,lte=240"`
	Notes         string     `json:"notes" binding:"max=1000"`
}

type UpdateReminderLogRequest struct {
	TakenAt       *time.Time `json:"taken_at"`
	Status        *string    `json:"status" binding:"omitempty,oneof=taken missed snoozed cancelled"`
	SnoozeMinutes *int       `json:"snooze_minutes" binding:"omitempty,gte=0,lte=240"`
	Notes         *string    `json:"notes" binding:"omitempty,max=1000"`
}

type ReminderLogResponse struct {
	ID            uint       `json:"id"`
	ReminderID    uint       `json:"reminder_id"`
	Slot          string     `json:"slot"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	TakenAt       *time.Time `json:"taken_at"`
	Status        string     `json:"status"`
	SnoozeMinutes int        `json:"snooze_minutes"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
}

func CreateReminderLog(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateReminderLogRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var reminder models.Reminder

	if err := utils.FindOwned(db.DB, userID, body.ReminderID, &reminder); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder")
		return
	}

	scheduledAt := body.ScheduledAt.UTC().Truncate(time.Minute)
	slot := scheduledAt.Format("15:04")

	if !services.IsScheduledSlot(reminder, slot, scheduledAt) {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"scheduled_at": "Scheduled time is not one of the reminder's slots on that day."})
		return
	}

	log := models.ReminderLog{
		UserID:        userID,
		ReminderID:    reminder.ID,
		Slot:          slot,
		ScheduledAt:   scheduledAt,
		Status:        body.Status,
		SnoozeMinutes: body.SnoozeMinutes,
		Notes:         body.Notes,
	}

	if body.TakenAt != nil {
		takenAt := body.TakenAt.UTC()
		log.TakenAt = &takenAt
	}

	if fields := validateLogTimes(log); fields != nil {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if log.Status == types.LogTaken {
			if err := ensureSlotNotTaken(tx, userID, reminder.ID, log.Slot, log.ScheduledAt, 0); err != nil {
				return err
			}
		}
		return tx.Create(&log).Error
	})

	if isDuplicateDose(err) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "This dose has already been marked as taken today"})
		return
	}

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create reminder log", "reminder_id", reminder.ID)
		return
	}

	ctx.JSON(http.StatusCreated, buildReminderLogResponse(log))
}

func ListReminderLogs(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	query := db.DB.Scopes(utils.OwnedBy(userID)).Order("scheduled_at DESC")

	if raw := ctx.Query("reminder_id"); raw != "" {
		reminderID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder_id"})
			return
		}
		query = query.Where("reminder_id = ?", reminderID)
	}

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var logs []models.ReminderLog

	if err := query.Find(&logs).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve reminder logs")
		return
	}

	response := make([]ReminderLogResponse, 0, len(logs))
	for _, l := range logs {
		response = append(response, buildReminderLogResponse(l))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetReminderLog(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var log models.ReminderLog

	if err := utils.FindOwned(db.DB, userID, id, &log); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder log")
		return
	}

	ctx.JSON(http.StatusOK, buildReminderLogResponse(log))
}

func UpdateReminderLog(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateReminderLogRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var log models.ReminderLog

	if err := utils.FindOwned(db.DB, userID, id, &log); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder log")
		return
	}

	if body.TakenAt != nil {
		takenAt := body.TakenAt.UTC()
		log.TakenAt = &takenAt
	}
	if body.Status != nil {
		log.Status = *body.Status
	}
	if body.SnoozeMinutes != nil {
		log.SnoozeMinutes = *body.SnoozeMinutes
	}
	if body.Notes != nil {
		log.Notes = *body.Notes
	}

	if fields := validateLogTimes(log); fields != nil {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	if log.Status == types.LogTaken {
		var reminder models.Reminder

		if err := utils.FindOwned(db.DB, userID, log.ReminderID, &reminder); err != nil {
			utils.RespondLookupError(ctx, err, "Reminder")
			return
		}

		if !services.IsScheduledSlot(reminder, log.Slot, log.ScheduledAt) {
			utils.RespondFieldErrors(ctx, utils.FieldErrors{"status": "Only a scheduled slot of the reminder can be marked as taken."})
			return
		}
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if log.Status == types.LogTaken {
			if err := ensureSlotNotTaken(tx, userID, log.ReminderID, log.Slot, log.ScheduledAt, log.ID); err != nil {
				return err
			}
		}
		return tx.Save(&log).Error
	})

	if isDuplicateDose(err) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "This dose has already been marked as taken today"})
		return
	}

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to update reminder log", "log_id", log.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildReminderLogResponse(log))
}

func DeleteReminderLog(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var log models.ReminderLog

	if err := utils.FindOwned(db.DB, userID, id, &log); err != nil {
		utils.RespondLookupError(ctx, err, "Reminder log")
		return
	}

	if err := db.DB.Delete(&log).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete reminder log", "log_id", log.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func validateLogTimes(log models.ReminderLog) utils.FieldErrors {
	if log.Status == types.LogTaken && log.TakenAt == nil {
		return utils.FieldErrors{"taken_at": "Taken time is required when status is taken."}
	}
	if log.TakenAt != nil && log.TakenAt.Before(log.ScheduledAt) {
		return utils.FieldErrors{"taken_at": "Taken time cannot be before the scheduled time."}
	}
	return nil
}

func buildReminderLogResponse(l models.ReminderLog) ReminderLogResponse {
	return ReminderLogResponse{
		ID:            l.ID,
		ReminderID:    l.ReminderID,
		Slot:          l.Slot,
		ScheduledAt:   l.ScheduledAt,
		TakenAt:       l.TakenAt,
		Status:        l.Status,
		SnoozeMinutes: l.SnoozeMinutes,
		Notes:         l.Notes,
		CreatedAt:     l.CreatedAt,
	}
}
