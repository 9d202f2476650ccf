package services

import (
	"testing"
	"time"

	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestWeekdayStartsOnMonday(t *testing.T) {
	// 2024-01-01 was a Monday.
	assert.Equal(t, 0, Weekday(day(2024, 1, 1)))
	assert.Equal(t, 6, Weekday(day(2024, 1, 7)))
}

func TestIsDueOn(t *testing.T) {
	start := day(2024, 1, 1)

	tests := []struct {
		name    string
		pattern string
		days    []int
		on      time.Time
		want    bool
	}{
		{"daily", types.RepeatDaily, nil, day(2024, 3, 9), true},
		{"custom always due", types.RepeatCustom, nil, day(2024, 3, 9), true},
		{"weekly on listed day", types.RepeatWeekly, []int{0, 2}, day(2024, 1, 3), true},
		{"weekly on other day", types.RepeatWeekly, []int{0, 2}, day(2024, 1, 4), false},
		{"monthly on listed date", types.RepeatMonthly, []int{15}, day(2024, 2, 15), true},
		{"monthly on other date", types.RepeatMonthly, []int{15}, day(2024, 2, 16), false},
		{"none on start date", types.RepeatNone, nil, start, true},
		{"none after start date", types.RepeatNone, nil, day(2024, 1, 2), false},
		{"unknown pattern", "hourly", nil, start, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDueOn(tt.pattern, tt.days, start, tt.on))
		})
	}
}

func TestIsReminderDueRespectsStatusAndStart(t *testing.T) {
	r := models.Reminder{
		RepeatPattern: types.RepeatDaily,
		StartDate:     day(2024, 5, 10),
		Status:        types.ReminderActive,
	}

	assert.False(t, IsReminderDue(r, day(2024, 5, 9)))
	assert.True(t, IsReminderDue(r, at(2024, 5, 10, 23, 59)))

	r.Status = types.ReminderPaused
	assert.False(t, IsReminderDue(r, day(2024, 5, 11)))
}

func TestValidateRecurrence(t *testing.T) {
	assert.NoError(t, ValidateRecurrence(types.RepeatDaily, nil))
	assert.NoError(t, ValidateRecurrence(types.RepeatWeekly, []int{0, 6}))
	assert.Error(t, ValidateRecurrence(types.RepeatWeekly, nil))
	assert.Error(t, ValidateRecurrence(types.RepeatWeekly, []int{7}))
	assert.NoError(t, ValidateRecurrence(types.RepeatMonthly, []int{1, 31}))
	assert.Error(t, ValidateRecurrence(types.RepeatMonthly, []int{0}))
	assert.Error(t, ValidateRecurrence(types.RepeatMonthly, []int{}))
}

func TestNextReminderTime(t *testing.T) {
	r := models.Reminder{
		RepeatPattern:  types.RepeatDaily,
		Times:          []string{"20:00", "08:00"},
		StartDate:      day(2024, 1, 1),
		Status:         types.ReminderActive,
		ReminderBefore: 15,
	}

	next := NextReminderTime(r, at(2024, 1, 2, 9, 0))
	if assert.NotNil(t, next) {
		assert.Equal(t, at(2024, 1, 2, 19, 45), *next)
	}

	assert.Nil(t, NextReminderTime(r, at(2024, 1, 2, 21, 0)))
}

func TestCurrentSlot(t *testing.T) {
	times := []string{"21:00", "08:00", "13:00"}

	assert.Equal(t, "08:00", CurrentSlot(times, at(2024, 1, 1, 6, 0)))
	assert.Equal(t, "13:00", CurrentSlot(times, at(2024, 1, 1, 13, 0)))
	assert.Equal(t, "21:00", CurrentSlot(times, at(2024, 1, 1, 23, 30)))
	assert.Equal(t, "", CurrentSlot(nil, at(2024, 1, 1, 6, 0)))
}
