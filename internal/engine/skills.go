package engine

import (
	"fmt"
	"time"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

// IsSkillUnlocked reports whether skill is unlocked. Roots always are.
func IsSkillUnlocked(s models.UserState, tree catalog.SkillTree, skillID string) bool {
	if sk, ok := tree.Skill(skillID); ok && sk.Root {
		return true
	}
	return s.SkillUnlocked(tree.AreaID, skillID)
}

// LockedPredecessors returns the IDs of direct predecessors of skillID that
// are still locked.
func LockedPredecessors(s models.UserState, tree catalog.SkillTree, skillID string) []string {
	var missing []string
	for _, p := range tree.Predecessors(skillID) {
		if !IsSkillUnlocked(s, tree, p.ID) {
			missing = append(missing, p.ID)
		}
	}
	return missing
}

// UnlockSkill buys a skill with spendable XP. Every direct predecessor must
// already be unlocked. Lifetime Experience, and therefore level progress, is
// untouched.
func UnlockSkill(s models.UserState, tree catalog.SkillTree, skillID string, now time.Time) (models.UserState, models.SkillUnlock, error) {
	sk, ok := tree.Skill(skillID)
	if !ok {
		return s, models.SkillUnlock{}, fmt.Errorf("skill %q in %s: %w", skillID, tree.AreaID, ErrNotFound)
	}
	if sk.Root || s.SkillUnlocked(tree.AreaID, sk.ID) {
		return s, models.SkillUnlock{}, fmt.Errorf("%s: %w", sk.ID, ErrAlreadyUnlocked)
	}
	if missing := LockedPredecessors(s, tree, sk.ID); len(missing) > 0 {
		return s, models.SkillUnlock{}, &PrerequisiteError{SkillID: sk.ID, Missing: missing}
	}
	idx := s.ProgressFor(tree.AreaID)
	if idx < 0 {
		return s, models.SkillUnlock{}, fmt.Errorf("progress for area %q: %w", tree.AreaID, ErrNotFound)
	}
	if have := s.Progress[idx].SpendableExperience; have < sk.XPCost {
		return s, models.SkillUnlock{}, &InsufficientXPError{AreaID: tree.AreaID, Required: sk.XPCost, Available: have}
	}

	next := s.Clone()
	next.Progress[idx].SpendableExperience -= sk.XPCost
	u := models.SkillUnlock{
		AreaID:     tree.AreaID,
		SkillID:    sk.ID,
		UnlockedAt: now.UTC(),
		XPSpent:    sk.XPCost,
	}
	next.Skills = append(next.Skills, u)
	return next, u, nil
}

// SkillView is a skill annotated with its unlock state.
type SkillView struct {
	catalog.Skill
	Unlocked bool `json:"unlocked"`
	// Available means every predecessor is unlocked and the skill is not.
	Available  bool `json:"available"`
	Affordable bool `json:"affordable"`
}

func SkillViews(s models.UserState, tree catalog.SkillTree) []SkillView {
	balance := 0
	if i := s.ProgressFor(tree.AreaID); i >= 0 {
		balance = s.Progress[i].SpendableExperience
	}
	out := make([]SkillView, 0, len(tree.Skills))
	for _, sk := range tree.Skills {
		v := SkillView{Skill: sk, Unlocked: IsSkillUnlocked(s, tree, sk.ID)}
		if !v.Unlocked {
			v.Available = len(LockedPredecessors(s, tree, sk.ID)) == 0
			v.Affordable = balance >= sk.XPCost
		}
		out = append(out, v)
	}
	return out
}
