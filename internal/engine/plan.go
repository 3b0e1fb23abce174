package engine

import (
	"fmt"
	"time"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

const defaultReminderTime = "09:00"

type PlanInput struct {
	ActivityID   string
	TargetDate   time.Time
	Recurring    bool
	Frequency    models.Frequency
	Reminder     bool
	ReminderTime string
}

// PlanActivity schedules a catalog activity.
func PlanActivity(s models.UserState, cat *catalog.Catalog, in PlanInput, env Env) (models.UserState, models.PlannedActivity, error) {
	a, err := cat.Activity(in.ActivityID)
	if err != nil {
		return s, models.PlannedActivity{}, err
	}

	freq := in.Frequency
	if freq == "" {
		freq = models.FrequencyOnce
		if in.Recurring {
			freq = a.Frequency
		}
	}
	if !freq.IsValid() {
		return s, models.PlannedActivity{}, &ValidationError{Field: "frequency", Message: fmt.Sprintf("invalid frequency %q", freq)}
	}
	if in.Recurring && freq == models.FrequencyOnce {
		return s, models.PlannedActivity{}, &ValidationError{Field: "frequency", Message: "recurring plans need a daily, weekly or monthly frequency"}
	}

	target := in.TargetDate
	if target.IsZero() {
		target = env.Now
	}

	reminderTime := in.ReminderTime
	if in.Reminder {
		if reminderTime == "" {
			reminderTime = s.Settings.ReminderTime
		}
		if reminderTime == "" {
			reminderTime = defaultReminderTime
		}
		if _, _, err := ParseClock(reminderTime); err != nil {
			return s, models.PlannedActivity{}, err
		}
	}

	p := models.PlannedActivity{
		ID:           env.NewID(),
		ActivityID:   a.ID,
		TargetDate:   target.UTC(),
		Recurring:    in.Recurring,
		Frequency:    freq,
		Reminder:     in.Reminder,
		ReminderTime: reminderTime,
	}
	next := s.Clone()
	next.PlannedActivities = append(next.PlannedActivities, p)
	return next, p, nil
}

// RemovePlan deletes a planned activity by ID.
func RemovePlan(s models.UserState, planID string) (models.UserState, error) {
	next := s.Clone()
	for i, p := range next.PlannedActivities {
		if p.ID == planID {
			next.PlannedActivities = append(next.PlannedActivities[:i], next.PlannedActivities[i+1:]...)
			return next, nil
		}
	}
	return s, fmt.Errorf("planned activity %q: %w", planID, ErrNotFound)
}
