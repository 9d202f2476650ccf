package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/gorm"
)

type CreateMentalHealthRequest struct {
	MoodScore    int    `json:"mood_score" binding:"required,gte=1,lte=10"`
	AnxietyLevel int    `json:"anxiety_level" binding:"required,gte=1,lte=10"`
	StressLevel  int    `json:"stress_level" binding:"required,gte=1,lte=10"`
	SleepQuality int    `json:"sleep_quality" binding:"required,gte=1,lte=10"`
	Notes        string `json:"notes"`
}

type UpdateMentalHealthRequest struct {
	MoodScore    *int    `json:"mood_score" binding:"omitempty,gte=1,lte=10"`
	AnxietyLevel *int    `json:"anxiety_level" binding:"omitempty,gte=1,lte=10"`
	StressLevel  *int    `json:"stress_level" binding:"omitempty,gte=1,lte=10"`
	SleepQuality *int    `json:"sleep_quality" binding:"omitempty,gte=1,lte=10"`
	Notes        *string `json:"notes"`
}

type MentalHealthResponse struct {
	ID           uint      `json:"id"`
	MoodScore    int       `json:"mood_score"`
	AnxietyLevel int       `json:"anxiety_level"`
	StressLevel  int       `json:"stress_level"`
	SleepQuality int       `json:"sleep_quality"`
	Notes        string    `json:"notes"`
	Alerts       []string  `json:"alerts"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ScoreTrend struct {
	Average *float64 `json:"average"`
	Trend   string   `json:"trend"`
}

// CreateMentalHealthEntry stores the entry and raises one notification per
// concerning score.
func CreateMentalHealthEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateMentalHealthRequest

	if !bindJSON(ctx, &body) {
		return
	}

	entry := models.MentalHealthEntry{
		UserID:       userID,
		MoodScore:    body.MoodScore,
		AnxietyLevel: body.AnxietyLevel,
		StressLevel:  body.StressLevel,
		SleepQuality: body.SleepQuality,
		Notes:        body.Notes,
	}

	alerts := entryAlerts(entry)

	var notifications []models.Notification

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		for _, alert := range alerts {
			n, err := services.Notify(tx, userID, types.NotificationMentalHealth, "Mental Health Alert", alert,
				map[string]interface{}{"entry_id": entry.ID})
			if err != nil {
				return err
			}
			notifications = append(notifications, n)
		}

		return nil
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create mental health entry")
		return
	}

	deliverAfterCommit(ctx, notifications...)

	ctx.JSON(http.StatusCreated, buildMentalHealthResponse(entry))
}

func ListMentalHealthEntries(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var entries []models.MentalHealthEntry

	if err := db.DB.Scopes(utils.OwnedBy(userID)).Order("created_at DESC").Find(&entries).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve mental health entries")
		return
	}

	ctx.JSON(http.StatusOK, lo.Map(entries, func(e models.MentalHealthEntry, _ int) MentalHealthResponse {
		return buildMentalHealthResponse(e)
	}))
}

func GetMentalHealthEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var entry models.MentalHealthEntry

	if err := utils.FindOwned(db.DB, userID, id, &entry); err != nil {
		utils.RespondLookupError(ctx, err, "Mental health entry")
		return
	}

	ctx.JSON(http.StatusOK, buildMentalHealthResponse(entry))
}

func UpdateMentalHealthEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateMentalHealthRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var entry models.MentalHealthEntry

	if err := utils.FindOwned(db.DB, userID, id, &entry); err != nil {
		utils.RespondLookupError(ctx, err, "Mental health entry")
		return
	}

	entry.MoodScore = lo.FromPtrOr(body.MoodScore, entry.MoodScore)
	entry.AnxietyLevel = lo.FromPtrOr(body.AnxietyLevel, entry.AnxietyLevel)
	entry.StressLevel = lo.FromPtrOr(body.StressLevel, entry.StressLevel)
	entry.SleepQuality = lo.FromPtrOr(body.SleepQuality, entry.SleepQuality)
	entry.Notes = lo.FromPtrOr(body.Notes, entry.Notes)

	if err := db.DB.Save(&entry).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to update mental health entry", "entry_id", entry.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildMentalHealthResponse(entry))
}

func DeleteMentalHealthEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var entry models.MentalHealthEntry

	if err := utils.FindOwned(db.DB, userID, id, &entry); err != nil {
		utils.RespondLookupError(ctx, err, "Mental health entry")
		return
	}

	if err := db.DB.Delete(&entry).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete mental health entry", "entry_id", entry.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func MentalHealthTrends(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := utils.QueryInt(ctx, "days", 30, 365)
	from := services.Today().AddDate(0, 0, -(days - 1))

	var entries []models.MentalHealthEntry

	err := db.DB.Scopes(utils.OwnedBy(userID)).
		Where("created_at >= ?", from).
		Order("created_at, id").
		Find(&entries).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve mental health entries")
		return
	}

	scores := map[string][]float64{
		"mood_score":    lo.Map(entries, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.MoodScore) }),
		"anxiety_level": lo.Map(entries, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.AnxietyLevel) }),
		"stress_level":  lo.Map(entries, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.StressLevel) }),
		"sleep_quality": lo.Map(entries, func(e models.MentalHealthEntry, _ int) float64 { return float64(e.SleepQuality) }),
	}

	trends := map[string]ScoreTrend{}
	for field, values := range scores {
		trend := ScoreTrend{Trend: services.CalculateTrend(values, services.HigherIsBetter(field))}
		if len(values) > 0 {
			avg := services.Round2(services.Average(values))
			trend.Average = &avg
		}
		trends[field] = trend
	}

	alerts := []string{}
	if len(entries) > 0 {
		alerts = append(alerts, services.MentalHealthAlerts(
			*trends["mood_score"].Average,
			*trends["anxiety_level"].Average,
			*trends["stress_level"].Average,
		)...)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"days":          days,
		"total_entries": len(entries),
		"trends":        trends,
		"alerts":        alerts,
	})
}

func entryAlerts(e models.MentalHealthEntry) []string {
	return services.MentalHealthAlerts(float64(e.MoodScore), float64(e.AnxietyLevel), float64(e.StressLevel))
}

func buildMentalHealthResponse(e models.MentalHealthEntry) MentalHealthResponse {
	alerts := entryAlerts(e)
	if alerts == nil {
		alerts = []string{}
	}

	return MentalHealthResponse{
		ID:           e.ID,
		MoodScore:    e.MoodScore,
		AnxietyLevel: e.AnxietyLevel,
		StressLevel:  e.StressLevel,
		SleepQuality: e.SleepQuality,
		Notes:        e.Notes,
		Alerts:       alerts,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
