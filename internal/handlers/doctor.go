package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/gorm"
)

type CreateDoctorRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Specialization string `json:"specialization" binding:"required,max=100"`
	Phone          string `json:"phone" binding:"max=20"`
	Email          string `json:"email" binding:"omitempty,email"`
	Address        string `json:"address"`
	Notes          string `json:"notes"`
	IsPrimary      bool   `json:"is_primary"`
}

type UpdateDoctorRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	Specialization *string `json:"specialization" binding:"omitempty,min=1,max=100"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Address        *string `json:"address"`
	Notes          *string `json:"notes"`
	IsPrimary      *bool   `json:"is_primary"`
}

type DoctorResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	Notes          string    `json:"notes"`
	IsPrimary      bool      `json:"is_primary"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func CreateDoctor(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateDoctorRequest

	if !bindJSON(ctx, &body) {
		return
	}

	doctor := models.Doctor{
		UserID:         userID,
		Name:           strings.TrimSpace(body.Name),
		Specialization: strings.TrimSpace(body.Specialization),
		Phone:          strings.TrimSpace(body.Phone),
		Email:          strings.TrimSpace(body.Email),
		Address:        body.Address,
		Notes:          body.Notes,
		IsPrimary:      body.IsPrimary,
	}

	var notification models.Notification

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if doctor.IsPrimary {
			if err := clearPrimaryDoctor(tx, userID, 0); err != nil {
				return err
			}
		}

		if err := tx.Create(&doctor).Error; err != nil {
			return err
		}

		var err error
		notification, err = services.Notify(tx, userID, types.NotificationGeneral,
			"Doctor Added",
			fmt.Sprintf("Dr. %s (%s) has been added to your doctors.", doctor.Name, doctor.Specialization),
			map[string]interface{}{"doctor_id": doctor.ID})
		return err
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create doctor")
		return
	}

	deliverAfterCommit(ctx, notification)

	ctx.JSON(http.StatusCreated, buildDoctorResponse(doctor))
}

func ListDoctors(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var doctors []models.Doctor

	if err := db.DB.Scopes(utils.OwnedBy(userID)).Order("is_primary DESC, name").Find(&doctors).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve doctors")
		return
	}

	response := make([]DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		response = append(response, buildDoctorResponse(d))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetDoctor(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var doctor models.Doctor

	if err := utils.FindOwned(db.DB, userID, id, &doctor); err != nil {
		utils.RespondLookupError(ctx, err, "Doctor")
		return
	}

	ctx.JSON(http.StatusOK, buildDoctorResponse(doctor))
}

func UpdateDoctor(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateDoctorRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var doctor models.Doctor

	if err := utils.FindOwned(db.DB, userID, id, &doctor); err != nil {
		utils.RespondLookupError(ctx, err, "Doctor")
		return
	}

	if body.Name != nil {
		doctor.Name = strings.TrimSpace(*body.Name)
	}
	if body.Specialization != nil {
		doctor.Specialization = strings.TrimSpace(*body.Specialization)
	}
	if body.Phone != nil {
		doctor.Phone = strings.TrimSpace(*body.Phone)
	}
	if body.Email != nil {
		doctor.Email = strings.TrimSpace(*body.Email)
	}
	if body.Address != nil {
		doctor.Address = *body.Address
	}
	if body.Notes != nil {
		doctor.Notes = *body.Notes
	}
	if body.IsPrimary != nil {
		doctor.IsPrimary = *body.IsPrimary
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if doctor.IsPrimary {
			if err := clearPrimaryDoctor(tx, userID, doctor.ID); err != nil {
				return err
			}
		}
		return tx.Omit("Appointments").Save(&doctor).Error
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to update doctor", "doctor_id", doctor.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildDoctorResponse(doctor))
}

// DeleteDoctor removes the doctor together with its appointments.
func DeleteDoctor(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var doctor models.Doctor

	if err := utils.FindOwned(db.DB, userID, id, &doctor); err != nil {
		utils.RespondLookupError(ctx, err, "Doctor")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(utils.OwnedBy(userID)).Where("doctor_id = ?", doctor.ID).Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&doctor).Error
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete doctor", "doctor_id", doctor.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// clearPrimaryDoctor unsets the primary flag on every doctor of userID
// other than keepID.
func clearPrimaryDoctor(tx *gorm.DB, userID, keepID uint) error {
	query := tx.Model(&models.Doctor{}).Scopes(utils.OwnedBy(userID)).Where("is_primary = ?", true)
	if keepID != 0 {
		query = query.Where("id <> ?", keepID)
	}
	return query.Update("is_primary", false).Error
}

func buildDoctorResponse(d models.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:             d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		Phone:          d.Phone,
		Email:          d.Email,
		Address:        d.Address,
		Notes:          d.Notes,
		IsPrimary:      d.IsPrimary,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
