package engine

import (
	"fmt"
	"strings"
	"time"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

type NewUserInput struct {
	Name  string
	Email string
}

// NewUserState seeds a fresh user: every area at level 1 with no XP, every
// quest available.
func NewUserState(cat *catalog.Catalog, in NewUserInput, env Env) models.UserState {
	now := env.Now.UTC()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Adventurer"
	}

	s := models.UserState{
		Profile: models.UserProfile{
			ID:         env.NewID(),
			Name:       name,
			Email:      strings.TrimSpace(in.Email),
			JoinDate:   now,
			LastActive: now,
		},
		Settings: DefaultSettings(),
	}
	for _, a := range cat.Areas() {
		s.Progress = append(s.Progress, models.AreaProgress{
			AreaID:                a.ID,
			CurrentLevel:          1,
			ExperienceToNextLevel: NextThreshold(a, 1),
		})
	}
	for _, q := range cat.Quests() {
		s.Quests = append(s.Quests, models.QuestState{QuestID: q.ID, Status: models.QuestAvailable})
	}
	return s
}

func DefaultSettings() models.UserSettings {
	return models.UserSettings{
		Theme:         "light",
		Notifications: true,
		ReminderTime:  defaultReminderTime,
		WeeklyGoals:   map[string]int{},
	}
}

// Reconcile adds progress and quest entries for catalog items missing from
// a stored state, so a state saved against an older catalog stays usable.
func Reconcile(s models.UserState, cat *catalog.Catalog) models.UserState {
	next := s.Clone()
	for _, a := range cat.Areas() {
		if next.ProgressFor(a.ID) < 0 {
			next.Progress = append(next.Progress, models.AreaProgress{
				AreaID:                a.ID,
				CurrentLevel:          1,
				ExperienceToNextLevel: NextThreshold(a, 1),
			})
		}
	}
	for _, q := range cat.Quests() {
		if next.QuestFor(q.ID) < 0 {
			next.Quests = append(next.Quests, models.QuestState{QuestID: q.ID, Status: models.QuestAvailable})
		}
	}
	if next.Settings.WeeklyGoals == nil {
		next.Settings.WeeklyGoals = map[string]int{}
	}
	return next
}

// SetEnneagramType records the user's enneagram type (1-9).
func SetEnneagramType(s models.UserState, cat *catalog.Catalog, n int) (models.UserState, error) {
	if _, err := cat.EnneagramType(n); err != nil {
		return s, &ValidationError{Field: "enneagramType", Message: fmt.Sprintf("must be between 1 and 9, got %d", n)}
	}
	next := s.Clone()
	next.Profile.EnneagramType = n
	return next, nil
}

// SetPriorityAreas replaces the user's priority areas.
func SetPriorityAreas(s models.UserState, cat *catalog.Catalog, areaIDs []string) (models.UserState, error) {
	ids := make([]string, 0, len(areaIDs))
	for _, id := range areaIDs {
		a, err := cat.Area(id)
		if err != nil {
			return s, err
		}
		ids = append(ids, a.ID)
	}
	next := s.Clone()
	next.Settings.PriorityAreas = ids
	return next, nil
}

// ValidateAvatar rejects an avatar with no visible choices made.
func ValidateAvatar(a models.AvatarSettings) error {
	if strings.TrimSpace(a.SkinColor) == "" {
		return &ValidationError{Field: "skinColor", Message: "is required"}
	}
	if strings.TrimSpace(a.HairStyle) == "" {
		return &ValidationError{Field: "hairStyle", Message: "is required"}
	}
	return nil
}

// History returns completions newest first, optionally limited to one area.
func History(s models.UserState, areaID string, limit int) []models.ActivityCompletion {
	var out []models.ActivityCompletion
	for i := len(s.ActivityHistory) - 1; i >= 0; i-- {
		c := s.ActivityHistory[i]
		if areaID != "" && c.AreaID != areaID {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// CompletionsSince counts completions in an area on or after t.
func CompletionsSince(s models.UserState, areaID string, t time.Time) int {
	n := 0
	for _, c := range s.ActivityHistory {
		if c.AreaID == areaID && !c.Date.Before(t) {
			n++
		}
	}
	return n
}
