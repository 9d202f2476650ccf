package services

import (
	"math"
	"time"

	"github.com/sanjeevni-health/sanjeevni/internal/types"
)

// GoalProgress is current/target as a percentage capped at 100. A missing
// or non-positive target has no progress.
func GoalProgress(target *float64, current float64) float64 {
	if target == nil || *target <= 0 {
		return 0
	}
	return Round2(math.Min(current / *target * 100, 100))
}

// IsGoalOverdue reports an active goal whose target date is before today.
func IsGoalOverdue(status string, targetDate *time.Time, today time.Time) bool {
	if status != types.GoalActive || targetDate == nil {
		return false
	}
	return DayStart(today).After(DayStart(*targetDate))
}

// DaysRemaining until the target date, negative once it has passed.
func DaysRemaining(targetDate *time.Time, today time.Time) *int {
	if targetDate == nil {
		return nil
	}
	days := int(DayStart(*targetDate).Sub(DayStart(today)).Hours() / 24)
	return &days
}
