package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/middleware"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
)

type Settings struct {
	CookieDomain  string
	SecureCookies bool
	ClientURL     string
}

var settings = Settings{
	SecureCookies: true,
	ClientURL:     "http://localhost:3000",
}

func Configure(s Settings) {
	settings = s
}

func setTokenCookie(ctx *gin.Context, token string, maxAge time.Duration) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		Domain:   settings.CookieDomain,
		MaxAge:   int(maxAge.Seconds()),
		Secure:   settings.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearTokenCookie(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   settings.CookieDomain,
		MaxAge:   -1,
		Secure:   settings.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// currentUserID aborts with 401 when the request carries no user.
func currentUserID(ctx *gin.Context) (uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}

	return userID, true
}

// pathID parses the :id path parameter and answers 400 when it is not a
// positive integer.
func pathID(ctx *gin.Context) (uint, bool) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}

	return id, true
}

func bindJSON(ctx *gin.Context, dest interface{}) bool {
	if err := ctx.ShouldBindJSON(dest); err != nil {
		utils.RespondBindError(ctx, err)
		return false
	}
	return true
}

// deliverAfterCommit hands freshly committed notifications to the push
// collaborator. Delivery never fails the request.
func deliverAfterCommit(ctx *gin.Context, notifications ...models.Notification) {
	if len(notifications) == 0 {
		return
	}
	services.DeliverAll(ctx.Request.Context(), db.DB, notifications)
}

func buildUserResponse(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		FullName:   user.FullName(),
		IsActive:   user.IsActive,
		DateJoined: user.CreatedAt,
	}
}

func buildProfileResponse(user models.User, profile models.Profile) types.ProfileResponse {
	return types.ProfileResponse{
		ID:                   profile.ID,
		UserID:               profile.UserID,
		Role:                 profile.Role,
		DateOfBirth:          utils.FormatDatePtr(profile.DateOfBirth),
		Age:                  profile.Age(services.Now()),
		Gender:               profile.Gender,
		PhoneNumber:          profile.PhoneNumber,
		Address:              profile.Address,
		EmergencyContact:     profile.EmergencyContact,
		EmergencyContactName: profile.EmergencyContactName,
		BloodType:            profile.BloodType,
		Allergies:            profile.Allergies,
		MedicalConditions:    profile.MedicalConditions,
		CurrentMedications:   profile.CurrentMedications,
		ProfilePictureURL:    profile.ProfilePictureURL,
		HasPushToken:         profile.PushToken != "",
		FullName:             user.FullName(),
		UpdatedAt:            profile.UpdatedAt,
	}
}
