package engine

import (
	"fmt"
	"time"

	"lifelevel/internal/models"
)

// NextDueDate advances t by one period of f.
func NextDueDate(t time.Time, f models.Frequency) (time.Time, error) {
	switch f {
	case models.FrequencyDaily:
		return t.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return t.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return t.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, fmt.Errorf("invalid frequency: %q", f)
	}
}

// occurrence returns the most recent reminder instant of p at or before now,
// or false if the first one is still ahead.
func occurrence(p models.PlannedActivity, now time.Time, loc *time.Location) (time.Time, bool) {
	h, m, err := ParseClock(p.ReminderTime)
	if err != nil {
		return time.Time{}, false
	}
	d := p.TargetDate.In(loc)
	at := time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc)
	if at.After(now) {
		return time.Time{}, false
	}
	if !p.Recurring {
		return at, true
	}
	for {
		next, err := NextDueDate(at, p.Frequency)
		if err != nil || next.After(now) {
			return at, true
		}
		at = next
	}
}

// DueReminders returns the planned activities whose reminder has come due
// and has not yet fired for the current period.
func DueReminders(s models.UserState, now time.Time, loc *time.Location) []models.PlannedActivity {
	if loc == nil {
		loc = time.UTC
	}
	var due []models.PlannedActivity
	for _, p := range s.PlannedActivities {
		if !p.Reminder {
			continue
		}
		at, ok := occurrence(p, now, loc)
		if !ok {
			continue
		}
		if p.LastReminded != nil && !p.LastReminded.Before(at) {
			continue
		}
		due = append(due, p)
	}
	return due
}

// MarkReminded stamps LastReminded on the given plans.
func MarkReminded(s models.UserState, ids []string, now time.Time) models.UserState {
	next := s.Clone()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	at := now.UTC()
	for i := range next.PlannedActivities {
		if want[next.PlannedActivities[i].ID] {
			t := at
			next.PlannedActivities[i].LastReminded = &t
		}
	}
	return next
}
