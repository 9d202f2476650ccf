package services

import (
	"math"
	"time"
)

// Now is the service clock. All calendar math happens in UTC.
var Now = func() time.Time {
	return time.Now().UTC()
}

func Today() time.Time {
	return DayStart(Now())
}

func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
