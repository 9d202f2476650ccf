package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateWidgetRequest struct {
	WidgetType string                 `json:"widget_type" binding:"required,oneof=reminders mental_health appointments community ai_analysis health_stats"`
	Position   *int                   `json:"position" binding:"omitempty,gte=0"`
	IsEnabled  *bool                  `json:"is_enabled"`
	Settings   map[string]interface{} `json:"settings"`
}

type UpdateWidgetRequest struct {
	Position  *int                   `json:"position" binding:"omitempty,gte=0"`
	IsEnabled *bool                  `json:"is_enabled"`
	Settings  map[string]interface{} `json:"settings"`
}

type WidgetOrder struct {
	WidgetID uint `json:"widget_id" binding:"required"`
	Position *int `json:"position" binding:"required,gte=0"`
}

type ReorderWidgetsRequest struct {
	WidgetOrders []WidgetOrder `json:"widget_orders" binding:"required,min=1,dive"`
}

type WidgetResponse struct {
	ID         uint                   `json:"id"`
	WidgetType string                 `json:"widget_type"`
	Position   int                    `json:"position"`
	IsEnabled  bool                   `json:"is_enabled"`
	Settings   map[string]interface{} `json:"settings"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

var errDuplicateWidget = errors.New("widget type already on dashboard")

func CreateWidget(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateWidgetRequest

	if !bindJSON(ctx, &body) {
		return
	}

	widget := models.DashboardWidget{
		UserID:     userID,
		WidgetType: body.WidgetType,
		IsEnabled:  body.IsEnabled == nil || *body.IsEnabled,
		Settings:   datatypes.JSONMap(lo.Ternary(body.Settings == nil, map[string]interface{}{}, body.Settings)),
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var existing []models.DashboardWidget
		if err := tx.Scopes(utils.OwnedBy(userID)).Find(&existing).Error; err != nil {
			return err
		}

		if lo.ContainsBy(existing, func(w models.DashboardWidget) bool { return w.WidgetType == widget.WidgetType }) {
			return errDuplicateWidget
		}

		widget.Position = lo.FromPtrOr(body.Position, len(existing))

		return tx.Create(&widget).Error
	})

	if errors.Is(err, errDuplicateWidget) || errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"widget_type": "Widget of this type already exists."})
		return
	}

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create widget")
		return
	}

	ctx.JSON(http.StatusCreated, buildWidgetResponse(widget))
}

func ListWidgets(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	widgets, err := loadWidgets(db.DB, userID)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve widgets")
		return
	}

	ctx.JSON(http.StatusOK, buildWidgetResponses(widgets))
}

func GetWidget(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var widget models.DashboardWidget

	if err := utils.FindOwned(db.DB, userID, id, &widget); err != nil {
		utils.RespondLookupError(ctx, err, "Widget")
		return
	}

	ctx.JSON(http.StatusOK, buildWidgetResponse(widget))
}

func UpdateWidget(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateWidgetRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var widget models.DashboardWidget

	if err := utils.FindOwned(db.DB, userID, id, &widget); err != nil {
		utils.RespondLookupError(ctx, err, "Widget")
		return
	}

	if body.Position != nil {
		widget.Position = *body.Position
	}
	if body.IsEnabled != nil {
		widget.IsEnabled = *body.IsEnabled
	}
	if body.Settings != nil {
		widget.Settings = datatypes.JSONMap(body.Settings)
	}

	if err := db.DB.Save(&widget).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to update widget", "widget_id", widget.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildWidgetResponse(widget))
}

func DeleteWidget(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var widget models.DashboardWidget

	if err := utils.FindOwned(db.DB, userID, id, &widget); err != nil {
		utils.RespondLookupError(ctx, err, "Widget")
		return
	}

	if err := db.DB.Delete(&widget).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete widget", "widget_id", widget.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ReorderWidgets applies the new positions atomically. Ids that do not
// belong to the caller are skipped.
func ReorderWidgets(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body ReorderWidgetsRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var widgets []models.DashboardWidget

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		for _, order := range body.WidgetOrders {
			err := tx.Model(&models.DashboardWidget{}).
				Scopes(utils.OwnedBy(userID)).
				Where("id = ?", order.WidgetID).
				Update("position", *order.Position).Error
			if err != nil {
				return err
			}
		}

		var err error
		widgets, err = loadWidgets(tx, userID)
		return err
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to reorder widgets")
		return
	}

	ctx.JSON(http.StatusOK, buildWidgetResponses(widgets))
}

// ResetWidgets replaces the caller's layout with the default widgets.
func ResetWidgets(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var widgets []models.DashboardWidget

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(utils.OwnedBy(userID)).Delete(&models.DashboardWidget{}).Error; err != nil {
			return err
		}

		widgets = lo.Map(types.DefaultWidgets, func(kind string, i int) models.DashboardWidget {
			return models.DashboardWidget{
				UserID:     userID,
				WidgetType: kind,
				Position:   i,
				IsEnabled:  true,
				Settings:   datatypes.JSONMap{},
			}
		})

		return tx.Create(&widgets).Error
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to reset widgets")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Dashboard reset to default layout",
		"widgets": buildWidgetResponses(widgets),
	})
}

func loadWidgets(tx *gorm.DB, userID uint) ([]models.DashboardWidget, error) {
	var widgets []models.DashboardWidget
	err := tx.Scopes(utils.OwnedBy(userID)).Order("position, id").Find(&widgets).Error
	return widgets, err
}

func buildWidgetResponses(widgets []models.DashboardWidget) []WidgetResponse {
	return lo.Map(widgets, func(w models.DashboardWidget, _ int) WidgetResponse {
		return buildWidgetResponse(w)
	})
}

func buildWidgetResponse(w models.DashboardWidget) WidgetResponse {
	settings := map[string]interface{}(w.Settings)
	if settings == nil {
		settings = map[string]interface{}{}
	}

	return WidgetResponse{
		ID:         w.ID,
		WidgetType: w.WidgetType,
		Position:   w.Position,
		IsEnabled:  w.IsEnabled,
		Settings:   settings,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}
