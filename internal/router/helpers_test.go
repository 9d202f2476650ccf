package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/internal/auth"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Tr1cky-Horse"

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	conn   *gorm.DB
}

type captureMailer struct {
	mu   sync.Mutex
	sent []services.Email
}

func (m *captureMailer) Send(_ context.Context, email services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *captureMailer) last() (services.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return services.Email{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()

	gin.SetMode(gin.TestMode)
	auth.Configure("router-test-secret", time.Hour, time.Hour)

	conn := testutil.OpenDB(t)

	previous := services.Current()
	services.Configure(services.Collaborators{})
	t.Cleanup(func() { services.Configure(previous) })

	return &apiClient{t: t, router: NewRouter([]string{"http://localhost:3000"}), conn: conn}
}

func (c *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its bearer token and user id.
func (c *apiClient) register(username string) (string, uint) {
	c.t.Helper()

	w := c.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":            username + "@example.com",
		"username":         username,
		"password":         testPassword,
		"confirm_password": testPassword,
		"first_name":       "Test",
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decode(c.t, w, &resp)
	require.NotEmpty(c.t, resp.Token)

	return resp.Token, resp.User.ID
}

// create posts body to path and returns the id of the created row.
func (c *apiClient) create(path, token string, body interface{}) uint {
	c.t.Helper()

	w := c.do(http.MethodPost, path, token, body)
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID uint `json:"id"`
	}
	decode(c.t, w, &resp)
	require.NotZero(c.t, resp.ID)

	return resp.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

// freezeClock pins the service clock to at for the rest of the test.
// Tokens and sessions keep using wall time.
func freezeClock(t *testing.T, at time.Time) {
	t.Helper()

	previous := services.Now
	services.Now = func() time.Time { return at }
	t.Cleanup(func() { services.Now = previous })
}

// todayAt returns the current UTC date at hour:min.
func todayAt(hour, min int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, time.UTC)
}
