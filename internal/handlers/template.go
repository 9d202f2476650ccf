package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
)

type CreateTemplateRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Type            string `json:"type" binding:"required,oneof=reminder pill_reminder appointment health_alert mental_health general emergency"`
	TitleTemplate   string `json:"title_template" binding:"required,max=200"`
	MessageTemplate string `json:"message_template" binding:"required"`
	IsActive        *bool  `json:"is_active"`
}

type UpdateTemplateRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	Type            *string `json:"type" binding:"omitempty,oneof=reminder pill_reminder appointment health_alert mental_health general emergency"`
	TitleTemplate   *string `json:"title_template" binding:"omitempty,min=1,max=200"`
	MessageTemplate *string `json:"message_template" binding:"omitempty,min=1"`
	IsActive        *bool   `json:"is_active"`
}

type RenderTemplateRequest struct {
	Context map[string]interface{} `json:"context"`
}

type TemplateResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	TitleTemplate   string    `json:"title_template"`
	MessageTemplate string    `json:"message_template"`
	Variables       []string  `json:"variables"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func CreateTemplate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateTemplateRequest

	if !bindJSON(ctx, &body) {
		return
	}

	template := models.NotificationTemplate{
		UserID:          userID,
		Name:            strings.TrimSpace(body.Name),
		Type:            body.Type,
		TitleTemplate:   body.TitleTemplate,
		MessageTemplate: body.MessageTemplate,
		Variables:       services.ExtractVariables(body.TitleTemplate, body.MessageTemplate),
		IsActive:        body.IsActive == nil || *body.IsActive,
	}

	if err := db.DB.Create(&template).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to create template")
		return
	}

	ctx.JSON(http.StatusCreated, buildTemplateResponse(template))
}

func ListTemplates(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var templates []models.NotificationTemplate

	if err := db.DB.Scopes(utils.OwnedBy(userID)).Order("name").Find(&templates).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve templates")
		return
	}

	response := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		response = append(response, buildTemplateResponse(t))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTemplate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var template models.NotificationTemplate

	if err := utils.FindOwned(db.DB, userID, id, &template); err != nil {
		utils.RespondLookupError(ctx, err, "Template")
		return
	}

	ctx.JSON(http.StatusOK, buildTemplateResponse(template))
}

func UpdateTemplate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateTemplateRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var template models.NotificationTemplate

	if err := utils.FindOwned(db.DB, userID, id, &template); err != nil {
		utils.RespondLookupError(ctx, err, "Template")
		return
	}

	if body.Name != nil {
		template.Name = strings.TrimSpace(*body.Name)
	}
	if body.Type != nil {
		template.Type = *body.Type
	}
	if body.TitleTemplate != nil {
		template.TitleTemplate = *body.TitleTemplate
	}
	if body.MessageTemplate != nil {
		template.MessageTemplate = *body.MessageTemplate
	}
	if body.IsActive != nil {
		template.IsActive = *body.IsActive
	}

	template.Variables = services.ExtractVariables(template.TitleTemplate, template.MessageTemplate)

	if err := db.DB.Save(&template).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to update template", "template_id", template.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildTemplateResponse(template))
}

func DeleteTemplate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var template models.NotificationTemplate

	if err := utils.FindOwned(db.DB, userID, id, &template); err != nil {
		utils.RespondLookupError(ctx, err, "Template")
		return
	}

	if err := db.DB.Delete(&template).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete template", "template_id", template.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// RenderTemplate previews a template against the supplied context without
// creating a notification.
func RenderTemplate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body RenderTemplateRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var template models.NotificationTemplate

	if err := utils.FindOwned(db.DB, userID, id, &template); err != nil {
		utils.RespondLookupError(ctx, err, "Template")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"title":   services.RenderTemplate(template.TitleTemplate, body.Context),
		"message": services.RenderTemplate(template.MessageTemplate, body.Context),
	})
}

func buildTemplateResponse(t models.NotificationTemplate) TemplateResponse {
	variables := []string(t.Variables)
	if variables == nil {
		variables = []string{}
	}

	return TemplateResponse{
		ID:              t.ID,
		Name:            t.Name,
		Type:            t.Type,
		TitleTemplate:   t.TitleTemplate,
		MessageTemplate: t.MessageTemplate,
		Variables:       variables,
		IsActive:        t.IsActive,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
