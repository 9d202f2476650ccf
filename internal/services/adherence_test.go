package services

import (
	"testing"
	"time"

	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
	"github.com/stretchr/testify/assert"
)

func takenLog(reminderID uint, slot string, scheduled time.Time) models.ReminderLog {
	return models.ReminderLog{
		ReminderID:  reminderID,
		Slot:        slot,
		ScheduledAt: scheduled,
		TakenAt:     &scheduled,
		Status:      types.LogTaken,
	}
}

func TestScheduledDoses(t *testing.T) {
	daily := models.Reminder{
		RepeatPattern: types.RepeatDaily,
		Times:         []string{"08:00", "20:00", "08:00"},
		StartDate:     day(2024, 1, 5),
	}

	// Clamped to the start date: 5th through 10th is six days of two slots.
	assert.Equal(t, 12, ScheduledDoses(daily, day(2024, 1, 1), day(2024, 1, 10)))

	weekly := models.Reminder{
		RepeatPattern: types.RepeatWeekly,
		CustomDays:    []int{0},
		Times:         []string{"09:00"},
		StartDate:     day(2024, 1, 1),
	}
	assert.Equal(t, 2, ScheduledDoses(weekly, day(2024, 1, 1), day(2024, 1, 14)))

	empty := models.Reminder{RepeatPattern: types.RepeatDaily, StartDate: day(2024, 1, 1)}
	assert.Equal(t, 0, ScheduledDoses(empty, day(2024, 1, 1), day(2024, 1, 3)))
}

func TestAdherenceRate(t *testing.T) {
	assert.Equal(t, 0.0, AdherenceRate(3, 0))
	assert.Equal(t, 66.67, AdherenceRate(2, 3))
	assert.Equal(t, 100.0, AdherenceRate(4, 4))
}

func TestCountTakenAndSlotTaken(t *testing.T) {
	reminder := models.Reminder{
		BaseModel:     models.BaseModel{ID: 1},
		RepeatPattern: types.RepeatDaily,
		Times:         []string{"08:00", "20:00"},
		StartDate:     day(2024, 1, 1),
	}

	logs := []models.ReminderLog{
		takenLog(1, "08:00", at(2024, 1, 2, 8, 0)),
		takenLog(1, "20:00", at(2024, 1, 2, 20, 0)),
		takenLog(2, "08:00", at(2024, 1, 3, 8, 0)),
		{ReminderID: 1, Slot: "08:00", ScheduledAt: at(2024, 1, 3, 8, 0), Status: types.LogMissed},
	}

	assert.Equal(t, 2, CountTaken(reminder, logs, day(2024, 1, 1), day(2024, 1, 3)))
	assert.Equal(t, 0, CountTaken(reminder, logs, day(2024, 1, 3), day(2024, 1, 3)))

	assert.True(t, SlotTaken(logs, 1, "08:00", at(2024, 1, 2, 23, 0)))
	assert.False(t, SlotTaken(logs, 1, "08:00", day(2024, 1, 3)))
	assert.False(t, SlotTaken(logs, 2, "20:00", day(2024, 1, 3)))
}

func TestCountTakenIgnoresRepeatsAndOffScheduleLogs(t *testing.T) {
	reminder := models.Reminder{
		BaseModel:     models.BaseModel{ID: 1},
		RepeatPattern: types.RepeatWeekly,
		CustomDays:    []int{0},
		Times:         []string{"00:00"},
		StartDate:     day(2024, 1, 1),
	}

	logs := []models.ReminderLog{
		takenLog(1, "00:00", at(2024, 1, 1, 0, 0)),
		takenLog(1, "00:00", at(2024, 1, 1, 0, 0)),
		takenLog(1, "00:01", at(2024, 1, 1, 0, 1)),
		takenLog(1, "00:02", at(2024, 1, 1, 0, 2)),
		// Tuesday is not a scheduled day.
		takenLog(1, "00:00", at(2024, 1, 2, 0, 0)),
	}

	taken := CountTaken(reminder, logs, day(2024, 1, 1), day(2024, 1, 7))
	scheduled := ScheduledDoses(reminder, day(2024, 1, 1), day(2024, 1, 7))

	assert.Equal(t, 1, taken)
	assert.Equal(t, 1, scheduled)
	assert.Equal(t, 100.0, AdherenceRate(taken, scheduled))

	assert.True(t, IsScheduledSlot(reminder, "00:00", day(2024, 1, 8)))
	assert.False(t, IsScheduledSlot(reminder, "00:01", day(2024, 1, 8)))
	assert.False(t, IsScheduledSlot(reminder, "00:00", day(2024, 1, 9)))
	assert.False(t, IsScheduledSlot(reminder, "00:00", day(2023, 12, 25)))
}

func TestOverduePills(t *testing.T) {
	reminders := []models.Reminder{
		{
			BaseModel:     models.BaseModel{ID: 1},
			MedicineName:  "Metformin",
			Dosage:        "500mg",
			RepeatPattern: types.RepeatDaily,
			Times:         []string{"08:00", "12:30", "20:00"},
			StartDate:     day(2024, 1, 1),
			Status:        types.ReminderActive,
		},
		{
			BaseModel:     models.BaseModel{ID: 2},
			MedicineName:  "Paused",
			RepeatPattern: types.RepeatDaily,
			Times:         []string{"07:00"},
			StartDate:     day(2024, 1, 1),
			Status:        types.ReminderPaused,
		},
	}

	now := at(2024, 1, 10, 13, 0)
	logs := []models.ReminderLog{takenLog(1, "08:00", at(2024, 1, 10, 8, 0))}

	// 12:30 is still inside the grace hour and 20:00 has not come yet.
	assert.Empty(t, OverduePills(reminders, logs, now))

	overdue := OverduePills(reminders, logs, at(2024, 1, 10, 14, 0))
	if assert.Len(t, overdue, 1) {
		assert.Equal(t, uint(1), overdue[0].ReminderID)
		assert.Equal(t, "12:30", overdue[0].Slot)
		assert.Equal(t, 1.5, overdue[0].OverdueHours)
	}
}
