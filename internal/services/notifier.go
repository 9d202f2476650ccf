package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sanjeevni-health/sanjeevni/internal/logger"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/storage"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Collaborators are the external services the API calls out to.
type Collaborators struct {
	Pusher  Pusher
	Mailer  Mailer
	Objects storage.ObjectStore
}

var (
	collabMu sync.RWMutex
	collab   = Collaborators{Pusher: NoopPusher{}, Mailer: LogMailer{}}
)

const pushTimeout = 10 * time.Second

// Configure installs the collaborators. Nil pusher or mailer fall back to
// the no-op implementations; a nil object store disables uploads.
func Configure(c Collaborators) {
	if c.Pusher == nil {
		c.Pusher = NoopPusher{}
	}
	if c.Mailer == nil {
		c.Mailer = LogMailer{}
	}
	collabMu.Lock()
	defer collabMu.Unlock()
	collab = c
}

func Current() Collaborators {
	collabMu.RLock()
	defer collabMu.RUnlock()
	return collab
}

// Notify records a pending notification for userID inside tx.
func Notify(tx *gorm.DB, userID uint, kind, title, message string, data map[string]interface{}) (models.Notification, error) {
	n := models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    datatypes.JSONMap(data),
		Status:  types.NotificationPending,
	}

	if err := tx.Create(&n).Error; err != nil {
		return n, fmt.Errorf("create notification: %w", err)
	}

	return n, nil
}

const (
	DeliverySkipped = "skipped"
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
)

// Deliver pushes n to its owner's device and records the outcome on the
// row. Without a device token or a configured pusher the notification
// stays pending. Failures are final; nothing is retried.
func Deliver(ctx context.Context, tx *gorm.DB, n *models.Notification) string {
	var profile models.Profile
	if err := tx.Where("user_id = ?", n.UserID).First(&profile).Error; err != nil || profile.PushToken == "" {
		return DeliverySkipped
	}

	pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	result, err := Current().Pusher.Push(pushCtx, PushMessage{
		Token: profile.PushToken,
		Title: n.Title,
		Body:  n.Message,
		Data: map[string]string{
			"notification_id": fmt.Sprint(n.ID),
			"type":            n.Type,
		},
	})

	if errors.Is(err, ErrPushDisabled) {
		return DeliverySkipped
	}

	n.PushToken = profile.PushToken
	outcome := DeliverySent

	if err != nil {
		logger.L().Warnw("push delivery failed", "notification_id", n.ID, "user_id", n.UserID, "error", err)
		n.Status = types.NotificationFailed
		outcome = DeliveryFailed
	} else {
		now := Now()
		n.Status = types.NotificationSent
		n.SentAt = &now
		n.PushMessageID = result.MessageID
	}

	if err := tx.Model(n).Select("push_token", "status", "sent_at", "push_message_id").Updates(n).Error; err != nil {
		logger.L().Errorw("failed to record delivery outcome", "notification_id", n.ID, "error", err)
	}

	return outcome
}

// DeliverAll delivers each notification in turn.
func DeliverAll(ctx context.Context, tx *gorm.DB, notifications []models.Notification) {
	for i := range notifications {
		Deliver(ctx, tx, &notifications[i])
	}
}

// CanTransition reports whether a notification may move from one status to
// another. Reading a pending notification skips the sent step.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case types.NotificationPending:
		return to != types.NotificationPending
	case types.NotificationSent:
		return to == types.NotificationDelivered || to == types.NotificationFailed
	default:
		return false
	}
}
