package router

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestRegisterCreatesUserProfileAndWelcome(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":            "Asha@Example.com",
		"username":         "asha",
		"password":         testPassword,
		"confirm_password": testPassword,
		"role":             "doctor",
		"date_of_birth":    "1990-04-12",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
		Profile struct {
			Role string `json:"role"`
		} `json:"profile"`
	}
	decode(t, w, &resp)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, types.RoleDoctor, resp.Profile.Role)

	var notifications int64
	api.conn.Model(&models.Notification{}).Count(&notifications)
	assert.Equal(t, int64(1), notifications)

	w = api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":            "asha@example.com",
		"username":         "asha",
		"password":         testPassword,
		"confirm_password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"email"`)
	assert.Contains(t, w.Body.String(), `"username"`)
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":            "ravi@example.com",
		"username":         "ravi",
		"password":         testPassword,
		"confirm_password": testPassword + "!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "confirm_password")

	var users int64
	api.conn.Model(&models.User{}).Count(&users)
	assert.Zero(t, users)

	w = api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":            "ravi@example.com",
		"username":         "ravi",
		"password":         "12345678",
		"confirm_password": "12345678",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"password"`)
}

func TestLoginAndLogoutRevokesToken(t *testing.T) {
	api := newAPI(t)
	api.register("meera")

	w := api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "meera@example.com", "password": "wrong-pass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "MEERA@example.com", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/auth/me", resp.Token, nil).Code)

	w = api.do(http.MethodPost, "/api/auth/logout", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/auth/me", resp.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/reminders", resp.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/reminders", "", nil).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("kiran")

	w := api.do(http.MethodPost, "/api/auth/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)

	assert.NotEqual(t, token, resp.Token)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/auth/me", token, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/auth/me", resp.Token, nil).Code)
}

var resetLink = regexp.MustCompile(`/reset-password/([^/\s]+)/(\S+)`)

func TestPasswordResetRoundTrip(t *testing.T) {
	api := newAPI(t)
	mailer := &captureMailer{}
	services.Configure(services.Collaborators{Mailer: mailer})

	oldToken, _ := api.register("nisha")

	w := api.do(http.MethodPost, "/api/auth/password-reset", "", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	_, sent := mailer.last()
	assert.False(t, sent)

	w = api.do(http.MethodPost, "/api/auth/password-reset", "", gin.H{"email": "nisha@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	email, sent := mailer.last()
	require.True(t, sent)
	assert.Equal(t, "nisha@example.com", email.To)

	match := resetLink.FindStringSubmatch(email.Body)
	require.Len(t, match, 3)
	confirm := path("/api/auth/password-reset/%s/%s", match[1], match[2])

	w = api.do(http.MethodPost, confirm, "", gin.H{"new_password": "N3w-Secret-Pw", "confirm_new_password": "other"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, confirm, "", gin.H{"new_password": "N3w-Secret-Pw", "confirm_new_password": "N3w-Secret-Pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The link is spent once the password hash changes.
	w = api.do(http.MethodPost, confirm, "", gin.H{"new_password": "An0ther-Secret", "confirm_new_password": "An0ther-Secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/auth/me", oldToken, nil).Code)

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "nisha@example.com", "password": "N3w-Secret-Pw"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteAccountRemovesEverything(t *testing.T) {
	api := newAPI(t)
	token, userID := api.register("dev")
	other, _ := api.register("sam")

	reminderID := api.create("/api/reminders", token, gin.H{
		"medicine_name":  "Aspirin",
		"dosage":         "75mg",
		"repeat_pattern": "daily",
		"times":          []string{"00:00"},
	})
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, path("/api/reminders/%d/mark_taken", reminderID), token, gin.H{}).Code)

	doctorID := api.create("/api/doctors", token, gin.H{"name": "Rao", "specialization": "Cardiology"})
	api.create("/api/appointments", token, gin.H{
		"doctor_id":        doctorID,
		"title":            "Checkup",
		"appointment_date": "2030-01-15T10:00:00Z",
	})
	api.create("/api/health-data", token, gin.H{"data_type": "heart_rate", "value": 72})
	api.create("/api/mental-health", token, gin.H{"mood_score": 6, "anxiety_level": 3, "stress_level": 4, "sleep_quality": 7})
	api.create("/api/goals", token, gin.H{"title": "Walk", "category": "physical_health", "target_value": 10000})
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/widgets/reset_defaults", token, nil).Code)

	w := api.do(http.MethodDelete, "/api/auth/me", token, gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodDelete, "/api/auth/me", token, gin.H{"password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, model := range models.Owned() {
		var count int64
		require.NoError(t, api.conn.Model(model).Where("user_id = ?", userID).Count(&count).Error)
		assert.Zerof(t, count, "%T rows left behind", model)
	}

	var users int64
	api.conn.Model(&models.User{}).Where("id = ?", userID).Count(&users)
	assert.Zero(t, users)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/auth/me", token, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/auth/me", other, nil).Code)
}
