package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
)

type CreateGoalRequest struct {
	Title         string   `json:"title" binding:"required,max=200"`
	Description   string   `json:"description"`
	Category      string   `json:"category" binding:"required,oneof=medication mental_health physical_health lifestyle community"`
	TargetValue   *float64 `json:"target_value" binding:"omitempty,gte=0"`
	CurrentValue  float64  `json:"current_value" binding:"gte=0"`
	Unit          string   `json:"unit" binding:"max=50"`
	StartDate     string   `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	TargetDate    string   `json:"target_date" binding:"omitempty,datetime=2006-01-02"`
	Status        string   `json:"status" binding:"omitempty,oneof=active completed paused cancelled"`
	Milestones    []string `json:"milestones"`
	ProgressNotes string   `json:"progress_notes"`
}

type UpdateGoalRequest struct {
	Title         *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category" binding:"omitempty,oneof=medication mental_health physical_health lifestyle community"`
	TargetValue   *float64 `json:"target_value" binding:"omitempty,gte=0"`
	CurrentValue  *float64 `json:"current_value" binding:"omitempty,gte=0"`
	Unit          *string  `json:"unit" binding:"omitempty,max=50"`
	StartDate     *string  `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	TargetDate    *string  `json:"target_date" binding:"omitempty,datetime=2006-01-02"`
	Status        *string  `json:"status" binding:"omitempty,oneof=active completed paused cancelled"`
	Milestones    []string `json:"milestones"`
	ProgressNotes *string  `json:"progress_notes"`
}

type UpdateProgressRequest struct {
	CurrentValue *float64 `json:"current_value" binding:"required,gte=0"`
	ProgressNote string   `json:"progress_note" binding:"max=1000"`
}

type GoalResponse struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	TargetValue        *float64  `json:"target_value"`
	CurrentValue       float64   `json:"current_value"`
	Unit               string    `json:"unit"`
	StartDate          string    `json:"start_date"`
	TargetDate         *string   `json:"target_date"`
	Status             string    `json:"status"`
	Milestones         []string  `json:"milestones"`
	ProgressNotes      string    `json:"progress_notes"`
	ProgressPercentage float64   `json:"progress_percentage"`
	IsOverdue          bool      `json:"is_overdue"`
	DaysRemaining      *int      `json:"days_remaining"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func CreateGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateGoalRequest

	if !bindJSON(ctx, &body) {
		return
	}

	goal := models.Goal{
		UserID:        userID,
		Title:         strings.TrimSpace(body.Title),
		Description:   body.Description,
		Category:      body.Category,
		TargetValue:   body.TargetValue,
		CurrentValue:  body.CurrentValue,
		Unit:          body.Unit,
		StartDate:     services.Today(),
		Status:        lo.Ternary(body.Status == "", types.GoalActive, body.Status),
		Milestones:    body.Milestones,
		ProgressNotes: body.ProgressNotes,
	}

	if fields := applyGoalDates(&goal, lo.EmptyableToPtr(body.StartDate), lo.EmptyableToPtr(body.TargetDate)); len(fields) > 0 {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	if err := db.DB.Create(&goal).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to create goal")
		return
	}

	ctx.JSON(http.StatusCreated, buildGoalResponse(goal, services.Now()))
}

func ListGoals(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	query := db.DB.Scopes(utils.OwnedBy(userID)).Order("created_at DESC")

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if category := ctx.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var goals []models.Goal

	if err := query.Find(&goals).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve goals")
		return
	}

	now := services.Now()

	ctx.JSON(http.StatusOK, lo.Map(goals, func(g models.Goal, _ int) GoalResponse {
		return buildGoalResponse(g, now)
	}))
}

func GetGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var goal models.Goal

	if err := utils.FindOwned(db.DB, userID, id, &goal); err != nil {
		utils.RespondLookupError(ctx, err, "Goal")
		return
	}

	ctx.JSON(http.StatusOK, buildGoalResponse(goal, services.Now()))
}

func UpdateGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateGoalRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var goal models.Goal

	if err := utils.FindOwned(db.DB, userID, id, &goal); err != nil {
		utils.RespondLookupError(ctx, err, "Goal")
		return
	}

	if body.Title != nil {
		goal.Title = strings.TrimSpace(*body.Title)
	}
	if body.Description != nil {
		goal.Description = *body.Description
	}
	if body.Category != nil {
		goal.Category = *body.Category
	}
	if body.TargetValue != nil {
		goal.TargetValue = body.TargetValue
	}
	if body.CurrentValue != nil {
		goal.CurrentValue = *body.CurrentValue
	}
	if body.Unit != nil {
		goal.Unit = *body.Unit
	}
	if body.Status != nil {
		goal.Status = *body.Status
	}
	if body.Milestones != nil {
		goal.Milestones = body.Milestones
	}
	if body.ProgressNotes != nil {
		goal.ProgressNotes = *body.ProgressNotes
	}

	if fields := applyGoalDates(&goal, body.StartDate, body.TargetDate); len(fields) > 0 {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	if err := db.DB.Save(&goal).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to update goal", "goal_id", goal.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildGoalResponse(goal, services.Now()))
}

func DeleteGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var goal models.Goal

	if err := utils.FindOwned(db.DB, userID, id, &goal); err != nil {
		utils.RespondLookupError(ctx, err, "Goal")
		return
	}

	if err := db.DB.Delete(&goal).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete goal", "goal_id", goal.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// UpdateGoalProgress records a new current value. Reaching the target does
// not complete the goal.
func UpdateGoalProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateProgressRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var goal models.Goal

	if err := utils.FindOwned(db.DB, userID, id, &goal); err != nil {
		utils.RespondLookupError(ctx, err, "Goal")
		return
	}

	now := services.Now()
	goal.CurrentValue = *body.CurrentValue

	if note := strings.TrimSpace(body.ProgressNote); note != "" {
		entry := fmt.Sprintf("[%s] %s", utils.FormatDate(now), note)
		if goal.ProgressNotes == "" {
			goal.ProgressNotes = entry
		} else {
			goal.ProgressNotes += "\n" + entry
		}
	}

	err := db.DB.Model(&goal).
		Select("current_value", "progress_notes").
		Updates(&goal).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to update goal progress", "goal_id", goal.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildGoalResponse(goal, now))
}

func GoalProgressSummary(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var goals []models.Goal

	err := db.DB.Scopes(utils.OwnedBy(userID)).
		Where("status = ?", types.GoalActive).
		Order("target_date").
		Find(&goals).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve goals")
		return
	}

	now := services.Now()
	responses := lo.Map(goals, func(g models.Goal, _ int) GoalResponse {
		return buildGoalResponse(g, now)
	})

	var average float64
	if len(responses) > 0 {
		average = services.Round2(lo.SumBy(responses, func(r GoalResponse) float64 { return r.ProgressPercentage }) / float64(len(responses)))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"total_active":     len(responses),
		"average_progress": average,
		"overdue":          lo.CountBy(responses, func(r GoalResponse) bool { return r.IsOverdue }),
		"completed_target": lo.CountBy(responses, func(r GoalResponse) bool { return r.ProgressPercentage >= 100 }),
		"by_category":      lo.CountValuesBy(responses, func(r GoalResponse) string { return r.Category }),
		"goals":            responses,
	})
}

// applyGoalDates parses the optional dates onto goal and checks their order.
func applyGoalDates(goal *models.Goal, startDate, targetDate *string) utils.FieldErrors {
	if startDate != nil {
		day, err := utils.ParseDate(*startDate)
		if err != nil {
			return utils.FieldErrors{"start_date": "Invalid date."}
		}
		goal.StartDate = day
	}

	if targetDate != nil {
		if *targetDate == "" {
			goal.TargetDate = nil
		} else {
			day, err := utils.ParseDate(*targetDate)
			if err != nil {
				return utils.FieldErrors{"target_date": "Invalid date."}
			}
			goal.TargetDate = &day
		}
	}

	if goal.TargetDate != nil && !goal.TargetDate.After(goal.StartDate) {
		return utils.FieldErrors{"target_date": "Target date must be after start date."}
	}

	return nil
}

func buildGoalResponse(g models.Goal, now time.Time) GoalResponse {
	milestones := []string(g.Milestones)
	if milestones == nil {
		milestones = []string{}
	}

	return GoalResponse{
		ID:                 g.ID,
		Title:              g.Title,
		Description:        g.Description,
		Category:           g.Category,
		TargetValue:        g.TargetValue,
		CurrentValue:       g.CurrentValue,
		Unit:               g.Unit,
		StartDate:          utils.FormatDate(g.StartDate),
		TargetDate:         utils.FormatDatePtr(g.TargetDate),
		Status:             g.Status,
		Milestones:         milestones,
		ProgressNotes:      g.ProgressNotes,
		ProgressPercentage: services.GoalProgress(g.TargetValue, g.CurrentValue),
		IsOverdue:          services.IsGoalOverdue(g.Status, g.TargetDate, now),
		DaysRemaining:      services.DaysRemaining(g.TargetDate, now),
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}
