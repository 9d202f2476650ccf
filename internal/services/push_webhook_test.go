package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPusherPostsGenericPayload(t *testing.T) {
	var got GenericWebhookRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pusher := NewWebhookPusher(server.URL)
	result, err := pusher.Push(context.Background(), PushMessage{
		Token: "device-1",
		Title: "Medication Reminder",
		Body:  "Time to take Aspirin",
		Data:  map[string]string{"notification_id": "4"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.MessageID)
	assert.Equal(t, "device-1", got.Token)
	assert.Equal(t, "Medication Reminder", got.Title)
	assert.Equal(t, "4", got.Data["notification_id"])
	assert.NotEmpty(t, got.SentAt)
}

func TestWebhookPusherReportsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewWebhookPusher(server.URL).Push(context.Background(), PushMessage{Title: "x"})
	assert.ErrorContains(t, err, "status 502")
}
