package engine

import (
	"sort"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

// NextThreshold returns the cumulative XP at which a user at level leaves it.
// The level table is 1-based and thresholds are cumulative, so the threshold
// for leaving level L is the requirement of level L+1. At max level the last
// requirement is returned.
func NextThreshold(area catalog.Area, level int) int {
	if len(area.Levels) == 0 {
		return 0
	}
	if level < 1 {
		level = 1
	}
	if level >= len(area.Levels) {
		return area.Levels[len(area.Levels)-1].XPRequired
	}
	return area.Levels[level].XPRequired
}

// LevelForXP returns the highest level whose requirement is met by xp.
// Used for display and for seeding; the reducer itself only ever moves one
// level per completion.
func LevelForXP(area catalog.Area, xp int) int {
	level := 1
	for i, l := range area.Levels {
		if xp >= l.XPRequired {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// LevelProgress returns XP earned inside the current level and the width of
// that level, for progress bars.
func LevelProgress(area catalog.Area, p models.AreaProgress) (into int, span int) {
	info, ok := area.LevelInfo(p.CurrentLevel)
	if !ok {
		return 0, 0
	}
	into = p.Experience - info.XPRequired
	span = p.ExperienceToNextLevel - info.XPRequired
	if into < 0 {
		into = 0
	}
	if span <= 0 {
		return into, 0
	}
	if into > span {
		into = span
	}
	return into, span
}

func IsMaxLevel(area catalog.Area, p models.AreaProgress) bool {
	return p.CurrentLevel >= area.MaxLevel()
}

// OverallLevel is the floor of the mean area level.
func OverallLevel(s models.UserState) int {
	if len(s.Progress) == 0 {
		return 0
	}
	sum := 0
	for _, p := range s.Progress {
		sum += p.CurrentLevel
	}
	return sum / len(s.Progress)
}

// AreasNeedingAttention orders progress by level ascending, then by fraction
// of the way to the next threshold.
func AreasNeedingAttention(s models.UserState) []models.AreaProgress {
	out := append([]models.AreaProgress(nil), s.Progress...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CurrentLevel != b.CurrentLevel {
			return a.CurrentLevel < b.CurrentLevel
		}
		return ratio(a) < ratio(b)
	})
	return out
}

func ratio(p models.AreaProgress) float64 {
	if p.ExperienceToNextLevel <= 0 {
		return 1
	}
	return float64(p.Experience) / float64(p.ExperienceToNextLevel)
}

// TotalExperience sums lifetime XP over all areas.
func TotalExperience(s models.UserState) int {
	total := 0
	for _, p := range s.Progress {
		total += p.Experience
	}
	return total
}
