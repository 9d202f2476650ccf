package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/datatypes"
)

type CreateNotificationRequest struct {
	Type    string                 `json:"type" binding:"required,oneof=reminder pill_reminder appointment health_alert mental_health general emergency"`
	Title   string                 `json:"title" binding:"required,max=200"`
	Message string                 `json:"message" binding:"required"`
	Data    map[string]interface{} `json:"data"`
}

type UpdateNotificationRequest struct {
	Title   *string                `json:"title" binding:"omitempty,min=1,max=200"`
	Message *string                `json:"message" binding:"omitempty,min=1"`
	Status  *string                `json:"status" binding:"omitempty,oneof=pending sent delivered failed"`
	Data    map[string]interface{} `json:"data"`
}

type SendNotificationRequest struct {
	Type       string                 `json:"type" binding:"omitempty,oneof=reminder pill_reminder appointment health_alert mental_health general emergency"`
	Title      string                 `json:"title" binding:"max=200"`
	Message    string                 `json:"message"`
	Data       map[string]interface{} `json:"data"`
	TemplateID *uint                  `json:"template_id"`
	Context    map[string]interface{} `json:"context"`
}

type NotificationResponse struct {
	ID            uint                   `json:"id"`
	Type          string                 `json:"type"`
	Title         string                 `json:"title"`
	Message       string                 `json:"message"`
	Data          map[string]interface{} `json:"data"`
	Status        string                 `json:"status"`
	PushMessageID string                 `json:"push_message_id"`
	SentAt        *time.Time             `json:"sent_at"`
	DeliveredAt   *time.Time             `json:"delivered_at"`
	CreatedAt     time.Time              `json:"created_at"`
}

func CreateNotification(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateNotificationRequest

	if !bindJSON(ctx, &body) {
		return
	}

	notification, err := services.Notify(db.DB, userID, body.Type, strings.TrimSpace(body.Title), body.Message, body.Data)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create notification")
		return
	}

	ctx.JSON(http.StatusCreated, buildNotificationResponse(notification))
}

func ListNotifications(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	query := db.DB.Scopes(utils.OwnedBy(userID)).Order("created_at DESC")

	if kind := ctx.Query("type"); kind != "" {
		query = query.Where("type = ?", kind)
	}

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var notifications []models.Notification

	if err := query.Find(&notifications).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve notifications")
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, buildNotificationResponse(n))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetNotification(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var notification models.Notification

	if err := utils.FindOwned(db.DB, userID, id, &notification); err != nil {
		utils.RespondLookupError(ctx, err, "Notification")
		return
	}

	ctx.JSON(http.StatusOK, buildNotificationResponse(notification))
}

// UpdateNotification edits content and moves the status along its
// lifecycle. Backwards moves are rejected.
func UpdateNotification(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateNotificationRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var notification models.Notification

	if err := utils.FindOwned(db.DB, userID, id, &notification); err != nil {
		utils.RespondLookupError(ctx, err, "Notification")
		return
	}

	if body.Title != nil {
		notification.Title = strings.TrimSpace(*body.Title)
	}
	if body.Message != nil {
		notification.Message = *body.Message
	}
	if body.Data != nil {
		notification.Data = datatypes.JSONMap(body.Data)
	}

	if body.Status != nil {
		if !services.CanTransition(notification.Status, *body.Status) {
			utils.RespondFieldErrors(ctx, utils.FieldErrors{
				"status": "Cannot change status from " + notification.Status + " to " + *body.Status + ".",
			})
			return
		}
		applyStatus(&notification, *body.Status, services.Now())
	}

	if err := db.DB.Save(&notification).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to update notification", "notification_id", notification.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildNotificationResponse(notification))
}

func DeleteNotification(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var notification models.Notification

	if err := utils.FindOwned(db.DB, userID, id, &notification); err != nil {
		utils.RespondLookupError(ctx, err, "Notification")
		return
	}

	if err := db.DB.Delete(&notification).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete notification", "notification_id", notification.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func MarkNotificationRead(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var notification models.Notification

	if err := utils.FindOwned(db.DB, userID, id, &notification); err != nil {
		utils.RespondLookupError(ctx, err, "Notification")
		return
	}

	if notification.Status == types.NotificationFailed {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed notifications cannot be marked as read"})
		return
	}

	applyStatus(&notification, types.NotificationDelivered, services.Now())

	err := db.DB.Model(&notification).
		Select("status", "sent_at", "delivered_at").
		Updates(&notification).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to mark notification as read", "notification_id", notification.ID)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Notification marked as read",
		"notification": buildNotificationResponse(notification),
	})
}

func UnreadCount(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var count int64

	err := db.DB.Model(&models.Notification{}).
		Scopes(utils.OwnedBy(userID)).
		Where("status IN ?", []string{types.NotificationPending, types.NotificationSent}).
		Count(&count).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to count notifications")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// SendNotification creates a notification, optionally rendered from one of
// the caller's templates, and pushes it to the registered device.
func SendNotification(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body SendNotificationRequest

	if !bindJSON(ctx, &body) {
		return
	}

	kind := body.Type
	title := strings.TrimSpace(body.Title)
	message := body.Message

	if body.TemplateID != nil {
		var template models.NotificationTemplate

		if err := utils.FindOwned(db.DB, userID, *body.TemplateID, &template); err != nil {
			utils.RespondLookupError(ctx, err, "Template")
			return
		}

		if !template.IsActive {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Template is not active"})
			return
		}

		title = services.RenderTemplate(template.TitleTemplate, body.Context)
		message = services.RenderTemplate(template.MessageTemplate, body.Context)
		if kind == "" {
			kind = template.Type
		}
	}

	fields := utils.FieldErrors{}
	if title == "" {
		fields["title"] = "This field is required."
	}
	if message == "" {
		fields["message"] = "This field is required."
	}
	if len(fields) > 0 {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	if kind == "" {
		kind = types.NotificationGeneral
	}

	notification, err := services.Notify(db.DB, userID, kind, title, message, body.Data)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create notification")
		return
	}

	outcome := services.Deliver(ctx.Request.Context(), db.DB, &notification)

	ctx.JSON(http.StatusCreated, gin.H{
		"delivery":     outcome,
		"notification": buildNotificationResponse(notification),
	})
}

// applyStatus sets status and stamps the matching timestamps.
func applyStatus(n *models.Notification, status string, now time.Time) {
	n.Status = status
	switch status {
	case types.NotificationSent:
		if n.SentAt == nil {
			n.SentAt = &now
		}
	case types.NotificationDelivered:
		if n.SentAt == nil {
			n.SentAt = &now
		}
		n.DeliveredAt = &now
	}
}

func buildNotificationResponse(n models.Notification) NotificationResponse {
	data := map[string]interface{}(n.Data)
	if data == nil {
		data = map[string]interface{}{}
	}

	return NotificationResponse{
		ID:            n.ID,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		Data:          data,
		Status:        n.Status,
		PushMessageID: n.PushMessageID,
		SentAt:        n.SentAt,
		DeliveredAt:   n.DeliveredAt,
		CreatedAt:     n.CreatedAt,
	}
}
