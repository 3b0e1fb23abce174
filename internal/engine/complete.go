package engine

import (
	"fmt"
	"strings"
	"time"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

type CompletionInput struct {
	Reflection string
	Proof      string
}

// LevelUpEvent is the celebratory signal for the presentation layer.
type LevelUpEvent struct {
	AreaID    string `json:"areaId"`
	AreaName  string `json:"areaName"`
	AreaIcon  string `json:"areaIcon"`
	NewLevel  int    `json:"newLevel"`
	Title     string `json:"title"`
	XPGained  int    `json:"xpGained"`
	Threshold int    `json:"threshold"`
}

// Transition is the result of applying one completion.
type Transition struct {
	State           models.UserState
	Completion      models.ActivityCompletion
	LevelUp         *LevelUpEvent
	NewAchievements []models.Achievement
	CompletedQuests []catalog.Quest
}

// Clock and ID generation are injected so transitions stay pure.
type Env struct {
	Now      time.Time
	Location *time.Location
	NewID    func() string
}

// ValidateCompletion checks the reflection/proof preconditions.
func ValidateCompletion(a catalog.Activity, in CompletionInput) error {
	if a.RequiresReflection && strings.TrimSpace(in.Reflection) == "" {
		return &ValidationError{Field: "reflection", Message: "please add a reflection before completing this activity"}
	}
	if a.RequiresProof && strings.TrimSpace(in.Proof) == "" {
		return &ValidationError{Field: "proof", Message: "please provide proof before completing this activity"}
	}
	return nil
}

// CompleteActivity applies a completed activity to s. On error the returned
// transition holds s unchanged.
func CompleteActivity(s models.UserState, cat *catalog.Catalog, a catalog.Activity, in CompletionInput, env Env) (Transition, error) {
	if err := ValidateCompletion(a, in); err != nil {
		return Transition{State: s}, err
	}
	area, err := cat.Area(a.AreaID)
	if err != nil {
		return Transition{State: s}, err
	}
	idx := s.ProgressFor(area.ID)
	if idx < 0 {
		return Transition{State: s}, fmt.Errorf("progress for area %q: %w", area.ID, ErrNotFound)
	}
	if cur := s.Progress[idx].CurrentLevel; a.Level > cur {
		return Transition{State: s}, &LockedActivityError{ActivityID: a.ID, Required: a.Level, CurrentLevel: cur}
	}

	next := s.Clone()
	now := env.Now.UTC()

	completion := models.ActivityCompletion{
		ID:               env.NewID(),
		ActivityID:       a.ID,
		AreaID:           area.ID,
		Date:             now,
		ExperienceGained: a.XPReward,
		Reflection:       strings.TrimSpace(in.Reflection),
		Proof:            strings.TrimSpace(in.Proof),
		Tags:             append([]string(nil), a.Tags...),
	}
	next.ActivityHistory = append(next.ActivityHistory, completion)

	p := next.Progress[idx]
	p.Experience += a.XPReward
	p.SpendableExperience += a.XPReward
	p.LastCheckin = now
	p.StreakDays = CalculateStreak(completionDates(next.ActivityHistory, area.ID), now, env.Location)

	var levelUp *LevelUpEvent
	if p.Experience >= p.ExperienceToNextLevel && p.CurrentLevel < area.MaxLevel() {
		p.CurrentLevel++
		p.ExperienceToNextLevel = NextThreshold(area, p.CurrentLevel)
		info, _ := area.LevelInfo(p.CurrentLevel)
		levelUp = &LevelUpEvent{
			AreaID:    area.ID,
			AreaName:  area.Name,
			AreaIcon:  area.Icon,
			NewLevel:  p.CurrentLevel,
			Title:     info.Title,
			XPGained:  a.XPReward,
			Threshold: p.ExperienceToNextLevel,
		}
	}
	next.Progress[idx] = p

	next.Profile.Streak = CalculateStreak(completionDates(next.ActivityHistory, ""), now, env.Location)
	next.Profile.LastActive = now

	var achieved []models.Achievement
	next, achieved = AwardAchievements(next, cat, now)

	var completed []catalog.Quest
	var questBadges []models.Achievement
	next, completed, questBadges = CompleteSatisfiedQuests(next, cat, now)
	achieved = append(achieved, questBadges...)

	return Transition{
		State:           next,
		Completion:      completion,
		LevelUp:         levelUp,
		NewAchievements: achieved,
		CompletedQuests: completed,
	}, nil
}
