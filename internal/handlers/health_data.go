package handlers

import (
	"errors"
	"fmt"
	"math"
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
	"gorm.io/gorm"
)

type CreateHealthDataRequest struct {
	DataType       string     `json:"data_type" binding:"required,oneof=blood_pressure heart_rate weight blood_sugar temperature oxygen_saturation steps sleep_hours mood pain_level"`
	Value          *float64   `json:"value" binding:"required"`
	SecondaryValue *float64   `json:"secondary_value"`
	Unit           string     `json:"unit" binding:"max=20"`
	Notes          string     `json:"notes"`
	RecordedAt     *time.Time `json:"recorded_at"`
}

type UpdateHealthDataRequest struct {
	Value          *float64   `json:"value"`
	SecondaryValue *float64   `json:"secondary_value"`
	Unit           *string    `json:"unit" binding:"omitempty,max=20"`
	Notes          *string    `json:"notes"`
	RecordedAt     *time.Time `json:"recorded_at"`
}

type HealthDataResponse struct {
	ID             uint      `json:"id"`
	DataType       string    `json:"data_type"`
	Value          float64   `json:"value"`
	SecondaryValue *float64  `json:"secondary_value"`
	Unit           string    `json:"unit"`
	DisplayValue   string    `json:"display_value"`
	Notes          string    `json:"notes"`
	RecordedAt     time.Time `json:"recorded_at"`
	Alerts         []string  `json:"alerts,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type HealthDataTrend struct {
	Average float64  `json:"average"`
	Count   int      `json:"count"`
	Trend   string   `json:"trend"`
	Latest  *float64 `json:"latest"`
}

var defaultUnits = map[string]string{
	types.DataBloodPressure:    "mmHg",
	types.DataHeartRate:        "bpm",
	types.DataWeight:           "kg",
	types.DataBloodSugar:       "mg/dL",
	types.DataTemperature:      "°C",
	types.DataOxygenSaturation: "%",
	types.DataSteps:            "steps",
	types.DataSleepHours:       "hours",
	types.DataMood:             "score",
	types.DataPainLevel:        "score",
}

func CreateHealthData(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateHealthDataRequest

	if !bindJSON(ctx, &body) {
		return
	}

	now := services.Now()

	entry := models.HealthData{
		UserID:         userID,
		DataType:       body.DataType,
		Value:          *body.Value,
		SecondaryValue: body.SecondaryValue,
		Unit:           lo.Ternary(body.Unit == "", defaultUnits[body.DataType], strings.TrimSpace(body.Unit)),
		Notes:          body.Notes,
		RecordedAt:     now,
	}

	if body.RecordedAt != nil {
		entry.RecordedAt = body.RecordedAt.UTC()
	}

	if fields := validateHealthData(entry, now); len(fields) > 0 {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	alerts := services.HealthDataAlerts(entry.DataType, entry.Value, entry.SecondaryValue)

	var notifications []models.Notification

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := rollUpHealthData(tx, entry); err != nil {
			return err
		}

		data := map[string]interface{}{"health_data_id": entry.ID, "data_type": entry.DataType}

		for _, alert := range alerts {
			n, err := services.Notify(tx, userID, types.NotificationHealthAlert, "Health Alert", alert, data)
			if err != nil {
				return err
			}
			notifications = append(notifications, n)
		}

		if len(alerts) == 0 {
			n, err := services.Notify(tx, userID, types.NotificationGeneral, "Health Data Recorded",
				fmt.Sprintf("Your %s reading of %s has been recorded.", dataTypeLabel(entry.DataType), displayValue(entry)),
				data)
			if err != nil {
				return err
			}
			notifications = append(notifications, n)
		}

		return nil
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to record health data")
		return
	}

	deliverAfterCommit(ctx, notifications...)

	response := buildHealthDataResponse(entry)
	response.Alerts = alerts

	ctx.JSON(http.StatusCreated, response)
}

func ListHealthData(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	query := db.DB.Scopes(utils.OwnedBy(userID)).Order("recorded_at DESC")

	if dataType := ctx.Query("data_type"); dataType != "" {
		query = query.Where("data_type = ?", dataType)
	}

	var entries []models.HealthData

	if err := query.Find(&entries).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve health data")
		return
	}

	ctx.JSON(http.StatusOK, buildHealthDataResponses(entries))
}

func GetHealthData(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var entry models.HealthData

	if err := utils.FindOwned(db.DB, userID, id, &entry); err != nil {
		utils.RespondLookupError(ctx, err, "Health data")
		return
	}

	ctx.JSON(http.StatusOK, buildHealthDataResponse(entry))
}

func UpdateHealthData(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body UpdateHealthDataRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var entry models.HealthData

	if err := utils.FindOwned(db.DB, userID, id, &entry); err != nil {
		utils.RespondLookupError(ctx, err, "Health data")
		return
	}

	if body.Value != nil {
		entry.Value = *body.Value
	}
	if body.SecondaryValue != nil {
		entry.SecondaryValue = body.SecondaryValue
	}
	if body.Unit != nil {
		entry.Unit = strings.TrimSpace(*body.Unit)
	}
	if body.Notes != nil {
		entry.Notes = *body.Notes
	}
	if body.RecordedAt != nil {
		entry.RecordedAt = body.RecordedAt.UTC()
	}

	if fields := validateHealthData(entry, services.Now()); len(fields) > 0 {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		return rollUpHealthData(tx, entry)
	})

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to update health data", "health_data_id", entry.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildHealthDataResponse(entry))
}

func DeleteHealthData(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var entry models.HealthData

	if err := utils.FindOwned(db.DB, userID, id, &entry); err != nil {
		utils.RespondLookupError(ctx, err, "Health data")
		return
	}

	if err := db.DB.Delete(&entry).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete health data", "health_data_id", entry.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func LatestHealthData(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var entries []models.HealthData

	err := db.DB.Scopes(utils.OwnedBy(userID)).
		Order("recorded_at DESC").
		Limit(10).
		Find(&entries).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve health data")
		return
	}

	ctx.JSON(http.StatusOK, buildHealthDataResponses(entries))
}

func HealthDataTrends(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := utils.QueryInt(ctx, "days", 30, 365)
	from := services.Today().AddDate(0, 0, -(days - 1))

	var entries []models.HealthData

	err := db.DB.Scopes(utils.OwnedBy(userID)).
		Where("recorded_at >= ?", from).
		Order("recorded_at, id").
		Find(&entries).Error

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve health data")
		return
	}

	trends := map[string]HealthDataTrend{}

	for dataType, group := range lo.GroupBy(entries, func(e models.HealthData) string { return e.DataType }) {
		values := lo.Map(group, func(e models.HealthData, _ int) float64 { return e.Value })
		latest := values[len(values)-1]

		trends[dataType] = HealthDataTrend{
			Average: services.Round2(services.Average(values)),
			Count:   len(values),
			Trend:   services.CalculateTrend(values, services.HigherIsBetter(dataType)),
			Latest:  &latest,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"days":   days,
		"trends": trends,
	})
}

// validateHealthData applies the per-type plausibility ranges. Blood
// pressure carries systolic in value and diastolic in secondary_value.
func validateHealthData(entry models.HealthData, now time.Time) utils.FieldErrors {
	fields := utils.FieldErrors{}
	v := entry.Value

	if entry.RecordedAt.After(now.Add(5 * time.Minute)) {
		fields["recorded_at"] = "Recorded time cannot be in the future."
	}

	rangeCheck := func(min, max float64, msg string) {
		if v < min || v > max {
			fields["value"] = msg
		}
	}

	switch entry.DataType {
	case types.DataBloodPressure:
		if entry.SecondaryValue == nil {
			fields["secondary_value"] = "Diastolic value is required for blood pressure."
			return fields
		}
		errs := services.ValidateVitals(services.Vitals{Systolic: &v, Diastolic: entry.SecondaryValue})
		for key, msg := range errs {
			if key == "diastolic_bp" {
				fields["secondary_value"] = msg
			} else {
				fields["value"] = msg
			}
		}
	case types.DataHeartRate:
		if errs := services.ValidateVitals(services.Vitals{HeartRate: &v}); len(errs) > 0 {
			fields["value"] = errs["heart_rate"]
		}
	case types.DataTemperature:
		if errs := services.ValidateVitals(services.Vitals{Temperature: &v}); len(errs) > 0 {
			fields["value"] = errs["temperature"]
		}
	case types.DataMood:
		if errs := services.ValidateVitals(services.Vitals{Mood: &v}); len(errs) > 0 {
			fields["value"] = errs["mood_score"]
		}
	case types.DataPainLevel:
		if errs := services.ValidateVitals(services.Vitals{Pain: &v}); len(errs) > 0 {
			fields["value"] = errs["pain_level"]
		}
	case types.DataWeight:
		rangeCheck(1, 500, "Weight must be between 1 and 500 kg.")
	case types.DataBloodSugar:
		rangeCheck(10, 1000, "Blood sugar must be between 10 and 1000 mg/dL.")
	case types.DataOxygenSaturation:
		rangeCheck(50, 100, "Oxygen saturation must be between 50 and 100%.")
	case types.DataSteps:
		rangeCheck(0, 100000, "Steps must be between 0 and 100000.")
	case types.DataSleepHours:
		rangeCheck(0, 24, "Sleep hours must be between 0 and 24.")
	}

	return fields
}

// rollUpHealthData copies a typed observation into the daily metric of the
// day it was recorded, creating that row when missing. Types without a
// daily field are left alone.
func rollUpHealthData(tx *gorm.DB, entry models.HealthData) error {
	updates := map[string]interface{}{}
	rounded := int(math.Round(entry.Value))

	switch entry.DataType {
	case types.DataBloodPressure:
		updates["systolic"] = rounded
		updates["diastolic"] = int(math.Round(lo.FromPtr(entry.SecondaryValue)))
	case types.DataHeartRate:
		updates["heart_rate"] = rounded
	case types.DataWeight:
		updates["weight"] = entry.Value
	case types.DataTemperature:
		updates["temperature"] = entry.Value
	case types.DataSleepHours:
		updates["sleep_hours"] = entry.Value
	case types.DataMood:
		updates["mood_score"] = rounded
	default:
		return nil
	}

	day := services.DayStart(entry.RecordedAt)

	var metric models.HealthMetric
	err := tx.Scopes(utils.OwnedBy(entry.UserID)).Where("date = ?", day).First(&metric).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		metric = models.HealthMetric{UserID: entry.UserID, Date: day}
		if err := tx.Create(&metric).Error; err != nil {
			return fmt.Errorf("create daily metric: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("load daily metric: %w", err)
	}

	if err := tx.Model(&metric).Updates(updates).Error; err != nil {
		return fmt.Errorf("roll up %s: %w", entry.DataType, err)
	}

	return nil
}

func dataTypeLabel(dataType string) string {
	return strings.ReplaceAll(dataType, "_", " ")
}

func displayValue(e models.HealthData) string {
	if e.DataType == types.DataBloodPressure && e.SecondaryValue != nil {
		return strings.TrimSpace(fmt.Sprintf("%g/%g %s", e.Value, *e.SecondaryValue, e.Unit))
	}
	return strings.TrimSpace(fmt.Sprintf("%g %s", e.Value, e.Unit))
}

func buildHealthDataResponses(entries []models.HealthData) []HealthDataResponse {
	return lo.Map(entries, func(e models.HealthData, _ int) HealthDataResponse {
		return buildHealthDataResponse(e)
	})
}

func buildHealthDataResponse(e models.HealthData) HealthDataResponse {
	return HealthDataResponse{
		ID:             e.ID,
		DataType:       e.DataType,
		Value:          e.Value,
		SecondaryValue: e.SecondaryValue,
		Unit:           e.Unit,
		DisplayValue:   displayValue(e),
		Notes:          e.Notes,
		RecordedAt:     e.RecordedAt,
		CreatedAt:      e.CreatedAt,
	}
}
