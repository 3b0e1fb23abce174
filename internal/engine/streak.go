package engine

import (
	"sort"
	"time"

	"lifelevel/internal/models"
)

// CalculateStreak counts consecutive calendar days (in loc) with at least one
// date, ending today or yesterday. Several dates on the same day count once.
// If the newest date is older than yesterday the streak is broken and 0 is
// returned.
func CalculateStreak(dates []time.Time, now time.Time, loc *time.Location) int {
	if len(dates) == 0 {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}

	days := make([]time.Time, 0, len(dates))
	seen := map[time.Time]bool{}
	for _, d := range dates {
		day := startOfDay(d, loc)
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := startOfDay(now, loc)
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	cur := days[0]
	for _, d := range days[1:] {
		if !d.Equal(cur.AddDate(0, 0, -1)) {
			break
		}
		streak++
		cur = d
	}
	return streak
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func completionDates(history []models.ActivityCompletion, areaID string) []time.Time {
	var out []time.Time
	for _, c := range history {
		if areaID == "" || c.AreaID == areaID {
			out = append(out, c.Date)
		}
	}
	return out
}

// RefreshStreaks recomputes every streak for now. Streaks decay without any
// completion, so readers call this before displaying state.
func RefreshStreaks(s models.UserState, now time.Time, loc *time.Location) models.UserState {
	out := s.Clone()
	for i := range out.Progress {
		out.Progress[i].StreakDays = CalculateStreak(completionDates(out.ActivityHistory, out.Progress[i].AreaID), now, loc)
	}
	out.Profile.Streak = CalculateStreak(completionDates(out.ActivityHistory, ""), now, loc)
	return out
}
