package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
	"gorm.io/gorm"
)

// HealthMetricRequest serves both create and partial update; absent fields
// are left untouched.
type HealthMetricRequest struct {
	Date             *string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Weight           *float64 `json:"weight" binding:"omitempty,gt=0,lte=500"`
	SystolicBP       *int     `json:"systolic_bp"`
	DiastolicBP      *int     `json:"diastolic_bp"`
	HeartRate        *int     `json:"heart_rate"`
	Temperature      *float64 `json:"temperature"`
	MoodScore        *int     `json:"mood_score"`
	StressLevel      *int     `json:"stress_level"`
	SleepHours       *float64 `json:"sleep_hours" binding:"omitempty,gte=0,lte=24"`
	ExerciseMinutes  *int     `json:"exercise_minutes" binding:"omitempty,gte=0,lte=1440"`
	MedicationsTaken *int     `json:"medications_taken" binding:"omitempty,gte=0"`
	MedicationsTotal *int     `json:"medications_total" binding:"omitempty,gte=0"`
	Notes            *string  `json:"notes"`
}

type HealthMetricResponse struct {
	ID                      uint      `json:"id"`
	Date                    string    `json:"date"`
	Weight                  *float64  `json:"weight"`
	SystolicBP              *int      `json:"systolic_bp"`
	DiastolicBP             *int      `json:"diastolic_bp"`
	BloodPressure           *string   `json:"blood_pressure"`
	BloodPressureStatus     string    `json:"blood_pressure_status"`
	HeartRate               *int      `json:"heart_rate"`
	Temperature             *float64  `json:"temperature"`
	MoodScore               *int      `json:"mood_score"`
	StressLevel             *int      `json:"stress_level"`
	SleepHours              *float64  `json:"sleep_hours"`
	ExerciseMinutes         *int      `json:"exercise_minutes"`
	MedicationsTaken        int       `json:"medications_taken"`
	MedicationsTotal        int       `json:"medications_total"`
	MedicationAdherenceRate float64   `json:"medication_adherence_rate"`
	Notes                   string    `json:"notes"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

var errDuplicateMetric = errors.New("health metric for this date already exists")

func CreateHealthMetric(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body HealthMetricRequest

	if !bindJSON(ctx, &body) {
		return
	}

	metric := models.HealthMetric{UserID: userID, Date: services.Today()}

	if fields := applyHealthMetric(&metric, body); len(fields) > 0 {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureMetricDateFree(tx, userID, metric.Date, 0); err != nil {
			return err
		}
		return tx.Create(&metric).Error
	})

	if errors.Is(err, errDuplicateMetric) || errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"date": "Health metric for this date already exists."})
		return
	}

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create health metric")
		return
	}

	ctx.JSON(http.StatusCreated, buildHealthMetricResponse(metric))
}

func ListHealthMetrics(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	query := db.DB.Scopes(utils.OwnedBy(userID)).Order("date DESC")

	for param, clause := range map[string]string{"from": "date >= ?", "to": "date <= ?"} {
		raw := ctx.Query(param)
		if raw == "" {
			continue
		}
		day, err := utils.ParseDate(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s date", param)})
			return
		}
		query = query.Where(clause, day)
	}

	var metrics []models.HealthMetric

	if err := query.Find(&metrics).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve health metrics")
		return
	}

	ctx.JSON(http.StatusOK, lo.Map(metrics, func(m models.HealthMetric, _ int) HealthMetricResponse {
		return buildHealthMetricResponse(m)
	}))
}

func GetHealthMetric(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var metric models.HealthMetric

	if err := utils.FindOwned(db.DB, userID, id, &metric); err != nil {
		utils.RespondLookupError(ctx, err, "Health metric")
		return
	}

	ctx.JSON(http.StatusOK, buildHealthMetricResponse(metric))
}

func UpdateHealthMetric(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var body HealthMetricRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var metric models.HealthMetric

	if err := utils.FindOwned(db.DB, userID, id, &metric); err != nil {
		utils.RespondLookupError(ctx, err, "Health metric")
		return
	}

	if fields := applyHealthMetric(&metric, body); len(fields) > 0 {
		utils.RespondFieldErrors(ctx, fields)
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureMetricDateFree(tx, userID, metric.Date, metric.ID); err != nil {
			return err
		}
		return tx.Save(&metric).Error
	})

	if errors.Is(err, errDuplicateMetric) || errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.RespondFieldErrors(ctx, utils.FieldErrors{"date": "Health metric for this date already exists."})
		return
	}

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to update health metric", "metric_id", metric.ID)
		return
	}

	ctx.JSON(http.StatusOK, buildHealthMetricResponse(metric))
}

func DeleteHealthMetric(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var metric models.HealthMetric

	if err := utils.FindOwned(db.DB, userID, id, &metric); err != nil {
		utils.RespondLookupError(ctx, err, "Health metric")
		return
	}

	if err := db.DB.Delete(&metric).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to delete health metric", "metric_id", metric.ID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HealthMetricTrends returns one series per field over the window, aligned
// with dates. Missing readings are null.
func HealthMetricTrends(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := utils.QueryInt(ctx, "days", 30, 365)

	metrics, err := loadMetricWindow(userID, days)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve health metrics")
		return
	}

	series := metricSeries(metrics)

	trends := map[string]string{}
	for field, values := range series {
		trends[field] = services.CalculateTrend(values.present(), services.HigherIsBetter(field))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"days": days,
		"dates": lo.Map(metrics, func(m models.HealthMetric, _ int) string {
			return utils.FormatDate(m.Date)
		}),
		"weight":           series["weight"].values,
		"systolic_bp":      series["systolic_bp"].values,
		"diastolic_bp":     series["diastolic_bp"].values,
		"heart_rate":       series["heart_rate"].values,
		"temperature":      series["temperature"].values,
		"mood_score":       series["mood_score"].values,
		"stress_level":     series["stress_level"].values,
		"sleep_hours":      series["sleep_hours"].values,
		"exercise_minutes": series["exercise_minutes"].values,
		"trends":           trends,
	})
}

func HealthMetricSummary(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	metrics, err := loadMetricWindow(userID, 30)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve health metrics")
		return
	}

	var latest interface{}

	var newest []models.HealthMetric
	if err := db.DB.Scopes(utils.OwnedBy(userID)).Order("date DESC").Limit(1).Find(&newest).Error; err != nil {
		utils.RespondInternal(ctx, err, "Failed to retrieve latest health metric")
		return
	}
	if len(newest) > 0 {
		latest = buildHealthMetricResponse(newest[0])
	}

	series := metricSeries(metrics)

	averages := map[string]*float64{}
	for field, values := range series {
		averages[field] = values.average()
	}

	ctx.JSON(http.StatusOK, gin.H{
		"latest":        latest,
		"total_entries": len(metrics),
		"averages":      averages,
		"trends": gin.H{
			"weight":       services.CalculateTrend(series["weight"].present(), services.HigherIsBetter("weight")),
			"mood_score":   services.CalculateTrend(series["mood_score"].present(), services.HigherIsBetter("mood_score")),
			"stress_level": services.CalculateTrend(series["stress_level"].present(), services.HigherIsBetter("stress_level")),
		},
	})
}

// applyHealthMetric merges the request into metric and validates the result.
func applyHealthMetric(metric *models.HealthMetric, body HealthMetricRequest) utils.FieldErrors {
	if body.Date != nil {
		day, err := utils.ParseDate(*body.Date)
		if err != nil {
			return utils.FieldErrors{"date": "Invalid date."}
		}
		if day.After(services.Today()) {
			return utils.FieldErrors{"date": "Date cannot be in the future."}
		}
		metric.Date = day
	}

	if body.Weight != nil {
		metric.Weight = body.Weight
	}
	if body.SystolicBP != nil {
		metric.Systolic = body.SystolicBP
	}
	if body.DiastolicBP != nil {
		metric.Diastolic = body.DiastolicBP
	}
	if body.HeartRate != nil {
		metric.HeartRate = body.HeartRate
	}
	if body.Temperature != nil {
		metric.Temperature = body.Temperature
	}
	if body.MoodScore != nil {
		metric.MoodScore = body.MoodScore
	}
	if body.StressLevel != nil {
		metric.StressLevel = body.StressLevel
	}
	if body.SleepHours != nil {
		metric.SleepHours = body.SleepHours
	}
	if body.ExerciseMinutes != nil {
		metric.ExerciseMinutes = body.ExerciseMinutes
	}
	if body.MedicationsTaken != nil {
		metric.MedicationsTaken = *body.MedicationsTaken
	}
	if body.MedicationsTotal != nil {
		metric.MedicationsTotal = *body.MedicationsTotal
	}
	if body.Notes != nil {
		metric.Notes = *body.Notes
	}

	errs := services.ValidateVitals(services.Vitals{
		Systolic:    intToFloat(metric.Systolic),
		Diastolic:   intToFloat(metric.Diastolic),
		HeartRate:   intToFloat(metric.HeartRate),
		Temperature: metric.Temperature,
		Mood:        intToFloat(metric.MoodScore),
		Stress:      intToFloat(metric.StressLevel),
	})

	fields := utils.FieldErrors(errs)

	if metric.MedicationsTaken > metric.MedicationsTotal {
		fields["medications_taken"] = "Medications taken cannot exceed medications total."
	}

	return fields
}

func ensureMetricDateFree(tx *gorm.DB, userID uint, date time.Time, excludeID uint) error {
	var count int64

	query := tx.Model(&models.HealthMetric{}).Scopes(utils.OwnedBy(userID)).Where("date = ?", services.DayStart(date))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return errDuplicateMetric
	}

	return nil
}

func loadMetricWindow(userID uint, days int) ([]models.HealthMetric, error) {
	from := services.Today().AddDate(0, 0, -(days - 1))

	var metrics []models.HealthMetric
	err := db.DB.Scopes(utils.OwnedBy(userID)).
		Where("date >= ?", from).
		Order("date").
		Find(&metrics).Error
	return metrics, err
}

type fieldSeries struct {
	values []*float64
}

func (s fieldSeries) present() []float64 {
	return services.Present(s.values)
}

func (s fieldSeries) average() *float64 {
	return services.AveragePtr(s.values)
}

// metricSeries splits chronologically ordered metrics into one series per
// field.
func metricSeries(metrics []models.HealthMetric) map[string]fieldSeries {
	pick := func(f func(models.HealthMetric) *float64) fieldSeries {
		return fieldSeries{values: lo.Map(metrics, func(m models.HealthMetric, _ int) *float64 { return f(m) })}
	}

	return map[string]fieldSeries{
		"weight":           pick(func(m models.HealthMetric) *float64 { return m.Weight }),
		"systolic_bp":      pick(func(m models.HealthMetric) *float64 { return intToFloat(m.Systolic) }),
		"diastolic_bp":     pick(func(m models.HealthMetric) *float64 { return intToFloat(m.Diastolic) }),
		"heart_rate":       pick(func(m models.HealthMetric) *float64 { return intToFloat(m.HeartRate) }),
		"temperature":      pick(func(m models.HealthMetric) *float64 { return m.Temperature }),
		"mood_score":       pick(func(m models.HealthMetric) *float64 { return intToFloat(m.MoodScore) }),
		"stress_level":     pick(func(m models.HealthMetric) *float64 { return intToFloat(m.StressLevel) }),
		"sleep_hours":      pick(func(m models.HealthMetric) *float64 { return m.SleepHours }),
		"exercise_minutes": pick(func(m models.HealthMetric) *float64 { return intToFloat(m.ExerciseMinutes) }),
	}
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func buildHealthMetricResponse(m models.HealthMetric) HealthMetricResponse {
	var bp *string
	if m.Systolic != nil && m.Diastolic != nil {
		s := fmt.Sprintf("%d/%d", *m.Systolic, *m.Diastolic)
		bp = &s
	}

	return HealthMetricResponse{
		ID:                      m.ID,
		Date:                    utils.FormatDate(m.Date),
		Weight:                  m.Weight,
		SystolicBP:              m.Systolic,
		DiastolicBP:             m.Diastolic,
		BloodPressure:           bp,
		BloodPressureStatus:     services.BloodPressureStatus(m.Systolic, m.Diastolic),
		HeartRate:               m.HeartRate,
		Temperature:             m.Temperature,
		MoodScore:               m.MoodScore,
		StressLevel:             m.StressLevel,
		SleepHours:              m.SleepHours,
		ExerciseMinutes:         m.ExerciseMinutes,
		MedicationsTaken:        m.MedicationsTaken,
		MedicationsTotal:        m.MedicationsTotal,
		MedicationAdherenceRate: services.AdherenceRate(m.MedicationsTaken, m.MedicationsTotal),
		Notes:                   m.Notes,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}
