package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/auth"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	FirstName            *string `json:"first_name" binding:"omitempty,max=150"`
	LastName             *string `json:"last_name" binding:"omitempty,max=150"`
	DateOfBirth          *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender               *string `json:"gender" binding:"omitempty,oneof=M F O P"`
	PhoneNumber          *string `json:"phone_number" binding:"omitempty,max=20"`
	Address              *string `json:"address"`
	EmergencyContact     *string `json:"emergency_contact" binding:"omitempty,max=20"`
	EmergencyContactName *string `json:"emergency_contact_name" binding:"omitempty,max=100"`
	BloodType            *string `json:"blood_type" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies            *string `json:"allergies"`
	MedicalConditions    *string `json:"medical_conditions"`
	CurrentMedications   *string `json:"current_medications"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
}

type UpdatePushTokenRequest struct {
	PushToken string `json:"push_token" binding:"required,max=512"`
}

const maxPictureSize = 5 << 20

func GetProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	user, profile, err := loadUserAndProfile(userID)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, buildProfileResponse(user, profile))
}

func UpdateProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body UpdateProfileRequest

	if !bindJSON(ctx, &body) {
		return
	}

	userUpdates := map[string]interface{}{}

	if body.FirstName != nil {
		userUpdates["first_name"] = strings.TrimSpace(*body.FirstName)
	}
	if body.LastName != nil {
		userUpdates["last_name"] = strings.TrimSpace(*body.LastName)
	}

	profileUpdates := map[string]interface{}{}

	if body.DateOfBirth != nil {
		dob, err := utils.ParseDate(*body.DateOfBirth)
		if err != nil || dob.After(services.Today()) {
			utils.RespondFieldErrors(ctx, utils.FieldErrors{"date_of_birth": "Date of birth cannot be in the future."})
			return
		}
		profileUpdates["date_of_birth"] = dob
	}

	for column, value := range map[string]*string{
		"gender":                 body.Gender,
		"phone_number":           body.PhoneNumber,
		"address":                body.Address,
		"emergency_contact":      body.EmergencyContact,
		"emergency_contact_name": body.EmergencyContactName,
		"blood_type":             body.BloodType,
		"allergies":              body.Allergies,
		"medical_conditions":     body.MedicalConditions,
		"current_medications":    body.CurrentMedications,
	} {
		if value != nil {
			profileUpdates[column] = strings.TrimSpace(*value)
		}
	}

	if len(userUpdates) == 0 && len(profileUpdates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	var notification models.Notification

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}

		if len(profileUpdates) > 0 {
			if err := tx.Model(&models.Profile{}).Scopes(utils.OwnedBy(userID)).Updates(profileUpdates).Error; err != nil {
				return err
			}
		}

		var err error
		notification, err = services.Notify(tx, userID, types.NotificationGeneral,
			"Profile Updated", "Your profile information has been updated.", nil)
		return err
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to update profile")
		return
	}

	deliverAfterCommit(ctx, notification)

	user, profile, err := loadUserAndProfile(userID)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to refresh profile")
		return
	}

	ctx.JSON(http.StatusOK, buildProfileResponse(user, profile))
}

// ChangePassword replaces the password, revokes every session and returns a
// fresh token for the caller.
func ChangePassword(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body ChangePasswordRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to fetch user")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, body.OldPassword) {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"old_password": "Old password is incorrect."})
		return
	}

	if err := auth.ValidateNewPassword(body.NewPassword, body.ConfirmNewPassword, user.Username, user.Email); err != nil {
		field := "new_password"
		if errors.Is(err, auth.ErrPasswordsDontMatch) {
			field = "confirm_new_password"
		}
		utils.RespondFieldErrors(ctx, utils.FieldErrors{field: err.Error()})
		return
	}

	passwordHash, err := auth.HashPassword(body.NewPassword)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to hash password")
		return
	}

	var token string

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", passwordHash).Error; err != nil {
			return err
		}

		if err := auth.RevokeAllSessions(tx, user.ID); err != nil {
			return err
		}

		var err error
		token, err = auth.IssueSession(tx, user)
		return err
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to change password")
		return
	}

	setTokenCookie(ctx, token, auth.TokenTTL())

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
		"token":   token,
	})
}

func UpdatePushToken(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body UpdatePushTokenRequest

	if !bindJSON(ctx, &body) {
		return
	}

	err := db.DB.Model(&models.Profile{}).
		Scopes(utils.OwnedBy(userID)).
		Update("push_token", strings.TrimSpace(body.PushToken)).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to update push token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Push token updated successfully"})
}

// UploadProfilePicture stores an image in the object store and links it to
// the profile.
func UploadProfilePicture(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	store := services.Current().Objects

	if store == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	header, err := ctx.FormFile("file")

	if err != nil {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"file": "This field is required."})
		return
	}

	if header.Size > maxPictureSize {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"file": "Image must be 5MB or smaller."})
		return
	}

	file, err := header.Open()

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to open upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPictureSize+1))

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to read upload")
		return
	}

	contentType := http.DetectContentType(data)

	if len(data) > maxPictureSize || !strings.HasPrefix(contentType, "image/") {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"file": "Upload a valid image no larger than 5MB."})
		return
	}

	key := fmt.Sprintf("profile-pictures/%d/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(header.Filename)))

	url, err := store.Put(ctx.Request.Context(), key, contentType, data)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to store profile picture")
		return
	}

	err = db.DB.Model(&models.Profile{}).Scopes(utils.OwnedBy(userID)).Update("profile_picture_url", url).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to update profile")
		return
	}

	user, profile, err := loadUserAndProfile(userID)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to refresh profile")
		return
	}

	ctx.JSON(http.StatusOK, buildProfileResponse(user, profile))
}
