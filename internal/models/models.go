package models

import "time"

// UserProfile is the identity part of the user state.
type UserProfile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EnneagramType int       `json:"enneagramType"`
	JoinDate      time.Time `json:"joinDate"`
	Streak        int       `json:"streak"`
	LastActive    time.Time `json:"lastActive"`
}

// AreaProgress tracks one life area.
//
// Experience is lifetime XP earned in the area and only ever grows; level
// progress is measured against it. SpendableExperience is the skill-tree
// balance: it grows with Experience and shrinks when skills are bought.
type AreaProgress struct {
	AreaID                string    `json:"areaId"`
	CurrentLevel          int       `json:"currentLevel"`
	Experience            int       `json:"experience"`
	SpendableExperience   int       `json:"spendableExperience"`
	ExperienceToNextLevel int       `json:"experienceToNextLevel"`
	StreakDays            int       `json:"streakDays"`
	LastCheckin           time.Time `json:"lastCheckin"`
}

type ActivityCompletion struct {
	ID               string    `json:"id"`
	ActivityID       string    `json:"activityId"`
	AreaID           string    `json:"areaId"`
	Date             time.Time `json:"date"`
	ExperienceGained int       `json:"experienceGained"`
	Reflection       string    `json:"reflection,omitempty"`
	Proof            string    `json:"proof,omitempty"`
	Tags             []string  `json:"tags"`
}

type Achievement struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	AreaID           string    `json:"areaId,omitempty"`
	DateEarned       time.Time `json:"dateEarned"`
	ExperienceGained int       `json:"experienceGained"`
}

type QuestStatus string

const (
	QuestAvailable QuestStatus = "available"
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
)

func (s QuestStatus) IsValid() bool {
	switch s {
	case QuestAvailable, QuestActive, QuestCompleted:
		return true
	default:
		return false
	}
}

type QuestState struct {
	QuestID     string      `json:"questId"`
	Status      QuestStatus `json:"status"`
	AcceptedAt  *time.Time  `json:"acceptedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// SkillUnlock records a purchased skill node.
type SkillUnlock struct {
	AreaID     string    `json:"areaId"`
	SkillID    string    `json:"skillId"`
	UnlockedAt time.Time `json:"unlockedAt"`
	XPSpent    int       `json:"xpSpent"`
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyOnce    Frequency = "once"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyOnce:
		return true
	default:
		return false
	}
}

type PlannedActivity struct {
	ID           string     `json:"id"`
	ActivityID   string     `json:"activityId"`
	TargetDate   time.Time  `json:"targetDate"`
	Recurring    bool       `json:"recurring"`
	Frequency    Frequency  `json:"frequency,omitempty"`
	Reminder     bool       `json:"reminder"`
	ReminderTime string     `json:"reminderTime,omitempty"` // HH:MM
	LastReminded *time.Time `json:"lastReminded,omitempty"`
}

type UserSettings struct {
	Theme         string         `json:"theme"`
	Notifications bool           `json:"notifications"`
	ReminderTime  string         `json:"reminderTime"`
	WeeklyGoals   map[string]int `json:"weeklyGoals"`
	PriorityAreas []string       `json:"priorityAreas"`
}

// AvatarSettings is stored as an opaque JSON blob under AvatarKey.
type AvatarSettings struct {
	SkinColor string `json:"skinColor"`
	HairStyle string `json:"hairStyle"`
	HairColor string `json:"hairColor"`
	EyeColor  string `json:"eyeColor"`
	Accessory string `json:"accessory"`
	Hat       bool   `json:"hat"`
	FaceHair  bool   `json:"faceHair"`
}

const AvatarKey = "userAvatar"

// UserState is the whole mutable state of one user.
type UserState struct {
	Profile           UserProfile          `json:"profile"`
	Progress          []AreaProgress       `json:"progress"`
	ActivityHistory   []ActivityCompletion `json:"activityHistory"`
	Achievements      []Achievement        `json:"achievements"`
	Quests            []QuestState         `json:"quests"`
	Skills            []SkillUnlock        `json:"skills"`
	PlannedActivities []PlannedActivity    `json:"plannedActivities"`
	Settings          UserSettings         `json:"settings"`
}

// ProgressFor returns the index of the area's progress entry, or -1.
func (s *UserState) ProgressFor(areaID string) int {
	for i := range s.Progress {
		if s.Progress[i].AreaID == areaID {
			return i
		}
	}
	return -1
}

func (s *UserState) QuestFor(questID string) int {
	for i := range s.Quests {
		if s.Quests[i].QuestID == questID {
			return i
		}
	}
	return -1
}

func (s *UserState) HasAchievement(id string) bool {
	for i := range s.Achievements {
		if s.Achievements[i].ID == id {
			return true
		}
	}
	return false
}

func (s *UserState) SkillUnlocked(areaID, skillID string) bool {
	for i := range s.Skills {
		if s.Skills[i].AreaID == areaID && s.Skills[i].SkillID == skillID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Transitions start from a clone so the input
// state is never mutated.
func (s UserState) Clone() UserState {
	out := s
	out.Progress = append([]AreaProgress(nil), s.Progress...)
	out.ActivityHistory = append([]ActivityCompletion(nil), s.ActivityHistory...)
	out.Achievements = append([]Achievement(nil), s.Achievements...)
	out.Quests = append([]QuestState(nil), s.Quests...)
	out.Skills = append([]SkillUnlock(nil), s.Skills...)
	out.PlannedActivities = append([]PlannedActivity(nil), s.PlannedActivities...)
	out.Settings.PriorityAreas = append([]string(nil), s.Settings.PriorityAreas...)
	if s.Settings.WeeklyGoals != nil {
		out.Settings.WeeklyGoals = make(map[string]int, len(s.Settings.WeeklyGoals))
		for k, v := range s.Settings.WeeklyGoals {
			out.Settings.WeeklyGoals[k] = v
		}
	}
	return out
}
