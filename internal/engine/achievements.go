package engine

import (
	"fmt"
	"time"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

// Milestone is an achievement the user earns by crossing a threshold.
type Milestone struct {
	ID          string
	Name        string
	Description string
	Icon        string
	AreaID      string

	earned func(s models.UserState) bool
}

// Milestones returns the built-in milestone achievements for the catalog.
func Milestones(cat *catalog.Catalog) []Milestone {
	ms := []Milestone{
		completionCountMilestone("first-steps", "First Steps", "Complete your first activity", "🌱", 1),
		completionCountMilestone("getting-going", "Getting Going", "Complete 10 activities", "🌿", 10),
		completionCountMilestone("committed", "Committed", "Complete 50 activities", "🌳", 50),
		completionCountMilestone("centurion", "Centurion", "Complete 100 activities", "🏆", 100),

		streakMilestone("week-warrior", "Week Warrior", "Keep a 7 day streak", "🔥", 7),
		streakMilestone("month-of-momentum", "Month of Momentum", "Keep a 30 day streak", "⚡", 30),

		areaCountMilestone("fitness-enthusiast", "Fitness Enthusiast", "Complete 5 fitness activities", "💪", "fitness", 5),
		areaLevelMilestone("finance-starter", "Finance Starter", "Reach level 2 in Finance", "💰", "finance", 2),
	}

	for _, a := range cat.Areas() {
		ms = append(ms, areaLevelMilestone(
			a.ID+"-adept",
			a.Name+" Adept",
			fmt.Sprintf("Reach level 3 in %s", a.Name),
			a.Icon,
			a.ID, 3,
		))
	}

	ms = append(ms, Milestone{
		ID:          "well-rounded",
		Name:        "Well-Rounded",
		Description: "Reach level 2 in every area",
		Icon:        "⭐",
		earned: func(s models.UserState) bool {
			if len(s.Progress) == 0 {
				return false
			}
			for _, p := range s.Progress {
				if p.CurrentLevel < 2 {
					return false
				}
			}
			return true
		},
	})
	return ms
}

func completionCountMilestone(id, name, desc, icon string, n int) Milestone {
	return Milestone{ID: id, Name: name, Description: desc, Icon: icon, earned: func(s models.UserState) bool {
		return len(s.ActivityHistory) >= n
	}}
}

func streakMilestone(id, name, desc, icon string, days int) Milestone {
	return Milestone{ID: id, Name: name, Description: desc, Icon: icon, earned: func(s models.UserState) bool {
		return s.Profile.Streak >= days
	}}
}

func areaCountMilestone(id, name, desc, icon, areaID string, n int) Milestone {
	return Milestone{ID: id, Name: name, Description: desc, Icon: icon, AreaID: areaID, earned: func(s models.UserState) bool {
		return countCompletions(s.ActivityHistory, areaID) >= n
	}}
}

func areaLevelMilestone(id, name, desc, icon, areaID string, level int) Milestone {
	return Milestone{ID: id, Name: name, Description: desc, Icon: icon, AreaID: areaID, earned: func(s models.UserState) bool {
		i := s.ProgressFor(areaID)
		return i >= 0 && s.Progress[i].CurrentLevel >= level
	}}
}

// Earned reports whether s satisfies the milestone.
func (m Milestone) Earned(s models.UserState) bool {
	return m.earned != nil && m.earned(s)
}

// AwardAchievements appends every milestone s now satisfies and has not yet
// earned. Each achievement ID is earned at most once.
func AwardAchievements(s models.UserState, cat *catalog.Catalog, now time.Time) (models.UserState, []models.Achievement) {
	s = s.Clone()
	var added []models.Achievement
	for _, m := range Milestones(cat) {
		if s.HasAchievement(m.ID) || !m.Earned(s) {
			continue
		}
		a := models.Achievement{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Icon:        m.Icon,
			AreaID:      m.AreaID,
			DateEarned:  now,
		}
		s.Achievements = append(s.Achievements, a)
		added = append(added, a)
	}
	return s, added
}

// questBadge is the achievement granted for completing q. The quest reward
// XP is recorded on the badge.
func questBadge(q catalog.Quest, now time.Time) models.Achievement {
	icon := q.Reward.Badge
	if icon == "" {
		icon = "🏅"
	}
	var area string
	if len(q.Areas) == 1 {
		area = q.Areas[0]
	}
	return models.Achievement{
		ID:               "quest-" + q.ID,
		Name:             q.Title,
		Description:      q.Description,
		Icon:             icon,
		AreaID:           area,
		DateEarned:       now,
		ExperienceGained: q.Reward.XP,
	}
}

func countCompletions(history []models.ActivityCompletion, areaID string) int {
	n := 0
	for _, c := range history {
		if areaID == "" || c.AreaID == areaID {
			n++
		}
	}
	return n
}

func sumExperience(history []models.ActivityCompletion, areaID string) int {
	n := 0
	for _, c := range history {
		if areaID == "" || c.AreaID == areaID {
			n += c.ExperienceGained
		}
	}
	return n
}
