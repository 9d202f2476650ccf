package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
)

// Weekday returns the day index with Monday as 0 and Sunday as 6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsDueOn evaluates the recurrence rule for day, ignoring status.
func IsDueOn(pattern string, customDays []int, startDate, day time.Time) bool {
	switch pattern {
	case types.RepeatDaily, types.RepeatCustom:
		return true
	case types.RepeatWeekly:
		return lo.Contains(customDays, Weekday(day))
	case types.RepeatMonthly:
		return lo.Contains(customDays, day.Day())
	case types.RepeatNone:
		return SameDay(startDate, day)
	default:
		return false
	}
}

// IsReminderDue reports whether an active reminder is due on day.
func IsReminderDue(r models.Reminder, day time.Time) bool {
	if r.Status != types.ReminderActive {
		return false
	}
	if DayStart(day).Before(DayStart(r.StartDate)) {
		return false
	}
	return IsDueOn(r.RepeatPattern, r.CustomDays, r.StartDate, day)
}

// ValidateRecurrence checks the day list against the pattern.
func ValidateRecurrence(pattern string, customDays []int) error {
	switch pattern {
	case types.RepeatWeekly:
		if len(customDays) == 0 {
			return fmt.Errorf("Weekly reminders need at least one weekday")
		}
		for _, d := range customDays {
			if d < 0 || d > 6 {
				return fmt.Errorf("Weekly days must be 0-6 (Monday=0, Sunday=6)")
			}
		}
	case types.RepeatMonthly:
		if len(customDays) == 0 {
			return fmt.Errorf("Monthly reminders need at least one day of the month")
		}
		for _, d := range customDays {
			if d < 1 || d > 31 {
				return fmt.Errorf("Monthly days must be 1-31")
			}
		}
	}
	return nil
}

// SlotTime places an "HH:MM" slot on day.
func SlotTime(day time.Time, slot string) (time.Time, error) {
	clock, err := time.Parse("15:04", slot)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %q: %w", slot, err)
	}
	d := DayStart(day)
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
}

// SortedTimes returns the reminder slots in clock order without duplicates.
func SortedTimes(times []string) []string {
	out := lo.Uniq(times)
	sort.Strings(out)
	return out
}

// NextReminderTime is the next notification moment today: the first slot
// still ahead of now, less the reminder lead time. Nil when no slot is left
// today or the reminder is not due.
func NextReminderTime(r models.Reminder, now time.Time) *time.Time {
	if !IsReminderDue(r, now) {
		return nil
	}

	for _, slot := range SortedTimes(r.Times) {
		at, err := SlotTime(now, slot)
		if err != nil {
			continue
		}
		if at.After(now) {
			notify := at.Add(-time.Duration(r.ReminderBefore) * time.Minute)
			return &notify
		}
	}

	return nil
}

// CurrentSlot picks the slot a dose taken at now most likely belongs to:
// the latest slot not after now, or the first slot of the day.
func CurrentSlot(times []string, now time.Time) string {
	sorted := SortedTimes(times)
	if len(sorted) == 0 {
		return ""
	}

	current := sorted[0]
	for _, slot := range sorted {
		at, err := SlotTime(now, slot)
		if err != nil {
			continue
		}
		if !at.After(now) {
			current = slot
		}
	}

	return current
}
