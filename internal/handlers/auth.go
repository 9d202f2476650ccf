package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/auth"
	"github.com/sanjeevni-health/sanjeevni/internal/logger"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/gorm"
)

// mailTimeout bounds the reset email so a stalled SMTP server cannot hold
// the request.
const mailTimeout = 15 * time.Second

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"required,username"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"max=150"`
	LastName        string `json:"last_name" binding:"max=150"`
	Role            string `json:"role" binding:"omitempty,oneof=patient doctor"`
	PhoneNumber     string `json:"phone_number" binding:"max=20"`
	DateOfBirth     string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender          string `json:"gender" binding:"omitempty,oneof=M F O P"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	NewPassword        string `json:"new_password" binding:"required"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
}

type AuthResponse struct {
	User    types.UserResponse     `json:"user"`
	Profile *types.ProfileResponse `json:"profile,omitempty"`
	Token   string                 `json:"token"`
}

const (
	welcomeTitle   = "Welcome to Sanjeevni"
	welcomeMessage = "Your account is ready. Start by adding your medications and health goals."

	resetRequestedMessage = "If the email exists, a password reset link has been sent."
)

func Register(ctx *gin.Context) {
	var body RegisterRequest

	if !bindJSON(ctx, &body) {
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	body.Username = strings.TrimSpace(body.Username)

	if err := auth.ValidateNewPassword(body.Password, body.ConfirmPassword, body.Username, body.Email); err != nil {
		field := "password"
		if errors.Is(err, auth.ErrPasswordsDontMatch) {
			field = "confirm_password"
		}
		utils.RespondFieldErrors(ctx, utils.FieldErrors{field: err.Error()})
		return
	}

	fields := utils.FieldErrors{}

	for column, value := range map[string]string{"email": body.Email, "username": body.Username} {
		var count int64
		if err := db.DB.Model(&models.User{}).Where(column+" = ?", value).Count(&count).Error; err != nil {
			utils.RespondInternal(ctx, err, "Database error when checking existing user")
			return
		}
		if count > 0 {
			fields[column] = fmt.Sprintf("A user with that %s already exists.", column)
		}
	}

	if len(fields) > 0 {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	profile := models.Profile{
		Role:        body.Role,
		PhoneNumber: body.PhoneNumber,
		Gender:      body.Gender,
	}

	if profile.Role == "" {
		profile.Role = types.RolePatient
	}

	if body.DateOfBirth != "" {
		dob, err := utils.ParseDate(body.DateOfBirth)
		if err != nil || dob.After(services.Today()) {
			utils.RespondFieldErrors(ctx, utils.FieldErrors{"date_of_birth": "Date of birth cannot be in the future."})
			return
		}
		profile.DateOfBirth = &dob
	}

	passwordHash, err := auth.HashPassword(body.Password)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to hash password")
		return
	}

	user := models.User{
		Email:        body.Email,
		Username:     body.Username,
		FirstName:    strings.TrimSpace(body.FirstName),
		LastName:     strings.TrimSpace(body.LastName),
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	var token string

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile.UserID = user.ID
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}

		var err error
		if token, err = auth.IssueSession(tx, user); err != nil {
			return err
		}

		_, err = services.Notify(tx, user.ID, types.NotificationGeneral, welcomeTitle, welcomeMessage, nil)
		return err
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email or username already exists"})
			return
		}
		utils.RespondInternal(ctx, err, "Failed to create user")
		return
	}

	setTokenCookie(ctx, token, auth.TokenTTL())

	profileResponse := buildProfileResponse(user, profile)

	ctx.JSON(http.StatusCreated, AuthResponse{
		User:    buildUserResponse(user),
		Profile: &profileResponse,
		Token:   token,
	})
}

func Login(ctx *gin.Context) {
	var body LoginRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var user models.User

	err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(body.Email))).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
			return
		}
		utils.RespondInternal(ctx, err, "Database error when fetching user")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, body.Password) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}

	if !user.IsActive {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "User account is disabled"})
		return
	}

	token, err := auth.IssueSession(db.DB, user)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to issue token")
		return
	}

	setTokenCookie(ctx, token, auth.TokenTTL())

	ctx.JSON(http.StatusOK, AuthResponse{
		User:  buildUserResponse(user),
		Token: token,
	})
}

// RefreshToken revokes the presented token and issues a new one.
func RefreshToken(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var user models.User
	var token string

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		if err := auth.RevokeSession(tx, userID, utils.GetSessionID(ctx)); err != nil {
			return err
		}

		var err error
		token, err = auth.IssueSession(tx, user)
		return err
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to rotate token")
		return
	}

	setTokenCookie(ctx, token, auth.TokenTTL())

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func Logout(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := auth.RevokeSession(db.DB, userID, utils.GetSessionID(ctx)); err != nil {
		utils.RespondInternal(ctx, err, "Failed to revoke session")
		return
	}

	clearTokenCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	user, profile, err := loadUserAndProfile(userID)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":    buildUserResponse(user),
		"profile": buildProfileResponse(user, profile),
	})
}

// DeleteAccount removes the caller and every row they own.
func DeleteAccount(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body DeleteAccountRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Password is required for account deletion"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to fetch user")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, body.Password) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect password"})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range models.Owned() {
			if err := tx.Scopes(utils.OwnedBy(userID)).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		return tx.Delete(&user).Error
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete user")
		return
	}

	clearTokenCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// RequestPasswordReset answers the same way whether or not the email is
// registered.
func RequestPasswordReset(ctx *gin.Context) {
	var body PasswordResetRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var user models.User

	err := db.DB.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(body.Email)), true).First(&user).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondInternal(ctx, err, "Database error when fetching user")
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": resetRequestedMessage})
		return
	}

	token, err := auth.GenerateResetToken(user.ID, user.PasswordHash, services.Now())

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to generate reset token")
		return
	}

	link := fmt.Sprintf("%s/reset-password/%s/%s", settings.ClientURL, auth.EncodeUID(user.ID), token)

	email := services.Email{
		To:      user.Email,
		Subject: "Password Reset Request",
		Body: fmt.Sprintf("Hello %s,\n\nYou requested a password reset. Open the link below to choose a new password:\n\n%s\n\nIf you didn't request this, you can ignore this email.\n",
			user.FullName(), link),
	}

	sendCtx, cancel := context.WithTimeout(ctx.Request.Context(), mailTimeout)
	defer cancel()

	if err := services.Current().Mailer.Send(sendCtx, email); err != nil {
		logger.L().Errorw("failed to send password reset email",
			"request_id", utils.GetRequestID(ctx), "user_id", user.ID, "error", err)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": resetRequestedMessage})
}

func ConfirmPasswordReset(ctx *gin.Context) {
	var body PasswordResetConfirmRequest

	if !bindJSON(ctx, &body) {
		return
	}

	userID, err := auth.DecodeUID(ctx.Param("uid"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": auth.ErrInvalidResetToken.Error()})
		return
	}

	var user models.User

	if err := db.DB.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": auth.ErrInvalidResetToken.Error()})
			return
		}
		utils.RespondInternal(ctx, err, "Database error when fetching user")
		return
	}

	if err := auth.VerifyResetToken(ctx.Param("token"), user.ID, user.PasswordHash); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		return auth.RevokeAllSessions(tx, user.ID)
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to reset password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully."})
}

func loadUserAndProfile(userID uint) (models.User, models.Profile, error) {
	var user models.User
	var profile models.Profile

	if err := db.DB.First(&user, userID).Error; err != nil {
		return user, profile, err
	}

	if err := db.DB.Scopes(utils.OwnedBy(userID)).First(&profile).Error; err != nil {
		return user, profile, err
	}

	return user, profile, nil
}
