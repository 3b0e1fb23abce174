package catalog

import (
	"fmt"
	"strings"

	"lifelevel/internal/models"
)

// ActivityFilter narrows an area's activity list the way the dashboard tabs do.
type ActivityFilter string

const (
	FilterAll       ActivityFilter = "all"
	FilterAvailable ActivityFilter = "available"
	FilterNextLevel ActivityFilter = "next-level"
	FilterDaily     ActivityFilter = "daily"
	FilterWeekly    ActivityFilter = "weekly"
	FilterMonthly   ActivityFilter = "monthly"
)

func ParseActivityFilter(input string) (ActivityFilter, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return FilterAll, nil
	}
	f := ActivityFilter(s)
	switch f {
	case FilterAll, FilterAvailable, FilterNextLevel, FilterDaily, FilterWeekly, FilterMonthly:
		return f, nil
	default:
		return "", fmt.Errorf("invalid activity filter: %q", input)
	}
}

// Filter returns the activities matching f for a user at currentLevel.
func Filter(activities []Activity, currentLevel int, f ActivityFilter) []Activity {
	var out []Activity
	for _, a := range activities {
		if matches(a, currentLevel, f) {
			out = append(out, a)
		}
	}
	return out
}

func matches(a Activity, currentLevel int, f ActivityFilter) bool {
	switch f {
	case FilterAvailable:
		return a.Level <= currentLevel
	case FilterNextLevel:
		return a.Level == currentLevel+1
	case FilterDaily:
		return a.Frequency == models.FrequencyDaily
	case FilterWeekly:
		return a.Frequency == models.FrequencyWeekly
	case FilterMonthly:
		return a.Frequency == models.FrequencyMonthly
	default:
		return true
	}
}
