package handlers

import (
	"fmt"
	"net/http"
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

type CreateAppointmentRequest struct {
	DoctorID        uint      `json:"doctor_id" binding:"required"`
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Duration        *int      `json:"duration" binding:"omitempty,gte=5,lte=480"`
	Status          string    `json:"status" binding:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Notes           string    `json:"notes"`
}

type UpdateAppointmentRequest struct {
	DoctorID        *uint      `json:"doctor_id"`
	Title           *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description     *string    `json:"description"`
	AppointmentDate *time.Time `json:"appointment_date"`
	Duration        *int       `json:"duration" binding:"omitempty,gte=5,lte=480"`
	Status          *string    `json:"status" binding:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Notes           *string    `json:"notes"`
}

type AppointmentResponse struct {
	ID                   uint      `json:"id"`
	DoctorID             uint      `json:"doctor_id"`
	DoctorName           string    `json:"doctor_name"`
	DoctorSpecialization string    `json:"doctor_specialization"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	AppointmentDate      time.Time `json:"appointment_date"`
	Duration             int       `json:"duration"`
	Status               string    `json:"status"`
	Notes                string    `json:"notes"`
	IsUpcoming           bool      `json:"is_upcoming"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func CreateAppointment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateAppointmentRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var doctor models.Doctor

	if err := utils.FindOwned(db.DB, userID, body.DoctorID, &doctor); err != nil {
		utils.RespondLookupError(ctx, err, "Doctor")
		return
	}

	appointment := models.Appointment{
		UserID:          userID,
		DoctorID:        doctor.ID,
		Title:           strings.TrimSpace(body.Title),
		Description:     body.Description,
		AppointmentDate: body.AppointmentDate.UTC(),
		Duration:        lo.FromPtrOr(body.Duration, 30),
		Status:          lo.Ternary(body.Status == "", types.AppointmentScheduled, body.Status),
		Notes:           body.Notes,
	}

	var notification models.Notification

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&appointment).Error; err != nil {
			return err
		}

		var err error
		notification, err = services.Notify(tx, userID, types.NotificationAppointment,
			"Appointment Scheduled",
			fmt.Sprintf("%s with Dr. %s on %s.", appointment.Title, doctor.Name,
				appointment.AppointmentDate.Format("Jan 2, 2006 at 15:04 UTC")),
			map[string]interface{}{"appointment_id": appointment.ID, "doctor_id": doctor.ID})
		return err
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create appointment")
		return
	}

	deliverAfterCommit(ctx, notification)

	ctx.JSON(http.StatusCreated, buildAppointmentResponse(appointment, doctor, services.Now()))
}

func ListAppointments(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	query := db.DB.Scopes(utils.OwnedBy(userID)).Order("appointment_date DESC")

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment

	if err := query.Find(&appointments).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve appointments")
		return
	}

	response, err := buildAppointmentResponses(userID, appointments)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve doctors")
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func GetAppointment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var appointment models.Appointment

	if err := utils.FindOwned(db.DB, userID, id, &appointment); err != nil {
		utils.RespondLookupError(ctx, err, "Appointment")
		return
	}

	response, err := buildAppointmentResponses(userID, []models.Appointment{appointment})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve doctor")
		return
	}

	ctx.JSON(http.StatusOK, response[0])
}

func UpdateAppointment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateAppointmentRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var appointment models.Appointment

	if err := utils.FindOwned(db.DB, userID, id, &appointment); err != nil {
		utils.RespondLookupError(ctx, err, "Appointment")
		return
	}

	if body.DoctorID != nil {
		appointment.DoctorID = *body.DoctorID
	}

	var doctor models.Doctor

	if err := utils.FindOwned(db.DB, userID, appointment.DoctorID, &doctor); err != nil {
		utils.RespondLookupError(ctx, err, "Doctor")
		return
	}

	if body.Title != nil {
		appointment.Title = strings.TrimSpace(*body.Title)
	}
	if body.Description != nil {
		appointment.Description = *body.Description
	}
	if body.AppointmentDate != nil {
		appointment.AppointmentDate = body.AppointmentDate.UTC()
	}
	if body.Duration != nil {
		appointment.Duration = *body.Duration
	}
	if body.Status != nil {
		appointment.Status = *body.Status
	}
	if body.Notes != nil {
		appointment.Notes = *body.Notes
	}

	if err := db.DB.Save(&appointment).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to update appointment", "appointment_id", appointment.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildAppointmentResponse(appointment, doctor, services.Now()))
}

func DeleteAppointment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var appointment models.Appointment

	if err := utils.FindOwned(db.DB, userID, id, &appointment); err != nil {
		utils.RespondLookupError(ctx, err, "Appointment")
		return
	}

	if err := db.DB.Delete(&appointment).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete appointment", "appointment_id", appointment.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// UpcomingAppointments lists future scheduled or confirmed appointments,
// soonest first.
func UpcomingAppointments(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var appointments []models.Appointment

	err := db.DB.Scopes(utils.OwnedBy(userID)).
		Where("appointment_date > ? AND status IN ?", services.Now(),
			[]string{types.AppointmentScheduled, types.AppointmentConfirmed}).
		Order("appointment_date").
		Find(&appointments).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve appointments")
		return
	}

	response, err := buildAppointmentResponses(userID, appointments)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve doctors")
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func buildAppointmentResponses(userID uint, appointments []models.Appointment) ([]AppointmentResponse, error) {
	response := make([]AppointmentResponse, 0, len(appointments))
	if len(appointments) == 0 {
		return response, nil
	}

	ids := lo.Uniq(lo.Map(appointments, func(a models.Appointment, _ int) uint { return a.DoctorID }))

	var doctors []models.Doctor
	if err := db.DB.Scopes(utils.OwnedBy(userID)).Where("id IN ?", ids).Find(&doctors).Error; err != nil {
		return nil, err
	}

	byID := lo.KeyBy(doctors, func(d models.Doctor) uint { return d.ID })
	now := services.Now()

	for _, a := range appointments {
		response = append(response, buildAppointmentResponse(a, byID[a.DoctorID], now))
	}

	return response, nil
}

func buildAppointmentResponse(a models.Appointment, doctor models.Doctor, now time.Time) AppointmentResponse {
	upcoming := a.AppointmentDate.After(now) &&
		(a.Status == types.AppointmentScheduled || a.Status == types.AppointmentConfirmed)

	return AppointmentResponse{
		ID:                   a.ID,
		DoctorID:             a.DoctorID,
		DoctorName:           doctor.Name,
		DoctorSpecialization: doctor.Specialization,
		Title:                a.Title,
		Description:          a.Description,
		AppointmentDate:      a.AppointmentDate,
		Duration:             a.Duration,
		Status:               a.Status,
		Notes:                a.Notes,
		IsUpcoming:           upcoming,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}
