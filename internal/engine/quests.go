package engine

import (
	"fmt"
	"time"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

// RequirementSatisfied evaluates one quest requirement against s.
func RequirementSatisfied(s models.UserState, r catalog.Requirement) bool {
	switch r.Type {
	case catalog.RequirementActivities:
		return countCompletions(s.ActivityHistory, r.AreaID) >= r.Count
	case catalog.RequirementXP:
		return sumExperience(s.ActivityHistory, r.AreaID) >= r.Count
	case catalog.RequirementLevel:
		if r.AreaID == "" {
			if len(s.Progress) == 0 {
				return false
			}
			for _, p := range s.Progress {
				if p.CurrentLevel < r.Count {
					return false
				}
			}
			return true
		}
		i := s.ProgressFor(r.AreaID)
		return i >= 0 && s.Progress[i].CurrentLevel >= r.Count
	default:
		return false
	}
}

// QuestProgress is floor(satisfied/total*100). A quest without requirements
// is complete.
func QuestProgress(s models.UserState, q catalog.Quest) int {
	if len(q.Requirements) == 0 {
		return 100
	}
	satisfied := 0
	for _, r := range q.Requirements {
		if RequirementSatisfied(s, r) {
			satisfied++
		}
	}
	return satisfied * 100 / len(q.Requirements)
}

// QuestStatusOf returns the status of a quest. Quests with no recorded state
// are available.
func QuestStatusOf(s models.UserState, questID string) models.QuestStatus {
	if i := s.QuestFor(questID); i >= 0 {
		return s.Quests[i].Status
	}
	return models.QuestAvailable
}

// AcceptQuest moves a quest from available to active.
func AcceptQuest(s models.UserState, cat *catalog.Catalog, questID string, now time.Time) (models.UserState, error) {
	q, err := cat.Quest(questID)
	if err != nil {
		return s, err
	}
	if st := QuestStatusOf(s, q.ID); st != models.QuestAvailable {
		return s, &QuestStateError{QuestID: q.ID, Status: string(st), Want: string(models.QuestAvailable)}
	}

	next := s.Clone()
	at := now.UTC()
	next = setQuestState(next, models.QuestState{QuestID: q.ID, Status: models.QuestActive, AcceptedAt: &at})
	return next, nil
}

// AbandonQuest moves an active quest back to available. Completed quests
// are terminal.
func AbandonQuest(s models.UserState, cat *catalog.Catalog, questID string) (models.UserState, error) {
	q, err := cat.Quest(questID)
	if err != nil {
		return s, err
	}
	if st := QuestStatusOf(s, q.ID); st != models.QuestActive {
		return s, &QuestStateError{QuestID: q.ID, Status: string(st), Want: string(models.QuestActive)}
	}

	next := s.Clone()
	next = setQuestState(next, models.QuestState{QuestID: q.ID, Status: models.QuestAvailable})
	return next, nil
}

// CompleteSatisfiedQuests moves every active quest whose requirements are
// all met to completed and grants its badge.
func CompleteSatisfiedQuests(s models.UserState, cat *catalog.Catalog, now time.Time) (models.UserState, []catalog.Quest, []models.Achievement) {
	next := s.Clone()
	var done []catalog.Quest
	var badges []models.Achievement
	for _, q := range cat.Quests() {
		i := next.QuestFor(q.ID)
		if i < 0 || next.Quests[i].Status != models.QuestActive {
			continue
		}
		if QuestProgress(next, q) < 100 {
			continue
		}
		at := now.UTC()
		next.Quests[i].Status = models.QuestCompleted
		next.Quests[i].CompletedAt = &at
		done = append(done, q)

		badge := questBadge(q, at)
		if !next.HasAchievement(badge.ID) {
			next.Achievements = append(next.Achievements, badge)
			badges = append(badges, badge)
		}
	}
	return next, done, badges
}

func setQuestState(s models.UserState, qs models.QuestState) models.UserState {
	if i := s.QuestFor(qs.QuestID); i >= 0 {
		s.Quests[i] = qs
		return s
	}
	s.Quests = append(s.Quests, qs)
	return s
}

// QuestView joins a catalog quest with its state for display.
type QuestView struct {
	catalog.Quest
	Status      models.QuestStatus `json:"status"`
	Progress    int                `json:"progress"`
	AcceptedAt  *time.Time         `json:"acceptedAt,omitempty"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
	// Deadline is informational only.
	Deadline *time.Time `json:"deadline,omitempty"`
}

func QuestViews(s models.UserState, cat *catalog.Catalog) []QuestView {
	out := make([]QuestView, 0, len(cat.Quests()))
	for _, q := range cat.Quests() {
		v := QuestView{Quest: q, Status: models.QuestAvailable, Progress: QuestProgress(s, q)}
		if i := s.QuestFor(q.ID); i >= 0 {
			qs := s.Quests[i]
			v.Status = qs.Status
			v.AcceptedAt = qs.AcceptedAt
			v.CompletedAt = qs.CompletedAt
			if qs.AcceptedAt != nil && q.DurationDays > 0 {
				d := qs.AcceptedAt.AddDate(0, 0, q.DurationDays)
				v.Deadline = &d
			}
		}
		out = append(out, v)
	}
	return out
}

// ParseQuestStatus parses a user-supplied status filter.
func ParseQuestStatus(input string) (models.QuestStatus, error) {
	st := models.QuestStatus(normalize(input))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid quest status: %q", input)
	}
	return st, nil
}
