package services

import (
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
)

// ErrDuplicateDose is returned when a slot already has a taken log that day.
var ErrDuplicateDose = errors.New("dose already taken for this slot today")

// ScheduledDoses counts the slots r was due for between from and to,
// inclusive, never earlier than its start date.
func ScheduledDoses(r models.Reminder, from, to time.Time) int {
	from = DayStart(from)
	to = DayStart(to)

	if start := DayStart(r.StartDate); from.Before(start) {
		from = start
	}

	slots := len(SortedTimes(r.Times))
	if slots == 0 {
		return 0
	}

	count := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if IsDueOn(r.RepeatPattern, r.CustomDays, r.StartDate, day) {
			count += slots
		}
	}

	return count
}

// AdherenceRate is taken/scheduled as a percentage, zero when nothing was
// scheduled.
func AdherenceRate(taken, scheduled int) float64 {
	if scheduled <= 0 {
		return 0
	}
	return Round2(float64(taken) / float64(scheduled) * 100)
}

// CountTaken counts the scheduled slots of r inside [from, to] that have a
// taken log. Several taken logs for one slot and day count once, and logs
// off the schedule count not at all.
func CountTaken(r models.Reminder, logs []models.ReminderLog, from, to time.Time) int {
	from = DayStart(from)
	to = DayStart(to)

	if start := DayStart(r.StartDate); from.Before(start) {
		from = start
	}

	type dose struct {
		slot string
		day  time.Time
	}

	seen := map[dose]bool{}
	for _, l := range logs {
		if l.Status != types.LogTaken || l.ReminderID != r.ID {
			continue
		}
		day := DayStart(l.ScheduledAt)
		if day.Before(from) || day.After(to) {
			continue
		}
		if !IsScheduledSlot(r, l.Slot, day) {
			continue
		}
		seen[dose{slot: l.Slot, day: day}] = true
	}

	return len(seen)
}

// IsScheduledSlot reports whether slot is one of r's times and r's rule
// puts a dose on day, from its start date on. Status is ignored so past
// doses of a paused reminder still count.
func IsScheduledSlot(r models.Reminder, slot string, day time.Time) bool {
	if !lo.Contains(r.Times, slot) {
		return false
	}
	if DayStart(day).Before(DayStart(r.StartDate)) {
		return false
	}
	return IsDueOn(r.RepeatPattern, r.CustomDays, r.StartDate, day)
}

// SlotTaken reports whether logs hold a taken entry for reminderID and slot
// on day.
func SlotTaken(logs []models.ReminderLog, reminderID uint, slot string, day time.Time) bool {
	for _, l := range logs {
		if l.ReminderID == reminderID && l.Slot == slot && l.Status == types.LogTaken && SameDay(l.ScheduledAt, day) {
			return true
		}
	}
	return false
}

type OverduePill struct {
	ReminderID     uint      `json:"reminder_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	Slot           string    `json:"slot"`
	ScheduledTime  time.Time `json:"scheduled_time"`
	OverdueHours   float64   `json:"overdue_hours"`
}

// OverdueGrace is how long after a slot a dose may still be logged before
// it counts as overdue.
const OverdueGrace = time.Hour

// OverduePills lists today's slots that passed the grace window without a
// taken log.
func OverduePills(reminders []models.Reminder, logs []models.ReminderLog, now time.Time) []OverduePill {
	overdue := []OverduePill{}
	cutoff := now.Add(-OverdueGrace)

	for _, r := range reminders {
		if !IsReminderDue(r, now) {
			continue
		}

		for _, slot := range SortedTimes(r.Times) {
			at, err := SlotTime(now, slot)
			if err != nil || !at.Before(cutoff) {
				continue
			}
			if SlotTaken(logs, r.ID, slot, now) {
				continue
			}
			overdue = append(overdue, OverduePill{
				ReminderID:     r.ID,
				MedicationName: r.MedicineName,
				Dosage:         r.Dosage,
				Slot:           slot,
				ScheduledTime:  at,
				OverdueHours:   Round2(now.Sub(at).Hours()),
			})
		}
	}

	return overdue
}
