package engine

import (
	"time"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

type EventType string

const (
	EventCompletion     EventType = "completion"
	EventLevelUp        EventType = "level_up"
	EventSkillUnlocked  EventType = "skill_unlocked"
	EventQuestCompleted EventType = "quest_completed"
	EventAchievement    EventType = "achievement"
	EventReminder       EventType = "reminder"
)

// Event is what subscribers receive after a transition has been persisted.
type Event struct {
	Type    EventType `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

// ReminderNotice is the payload of an EventReminder.
type ReminderNotice struct {
	Plan     models.PlannedActivity `json:"plan"`
	Activity catalog.Activity       `json:"activity"`
}

func transitionEvents(t Transition, at time.Time) []Event {
	evs := []Event{{Type: EventCompletion, At: at, Payload: t.Completion}}
	if t.LevelUp != nil {
		evs = append(evs, Event{Type: EventLevelUp, At: at, Payload: *t.LevelUp})
	}
	for _, q := range t.CompletedQuests {
		evs = append(evs, Event{Type: EventQuestCompleted, At: at, Payload: q})
	}
	for _, a := range t.NewAchievements {
		evs = append(evs, Event{Type: EventAchievement, At: at, Payload: a})
	}
	return evs
}
