package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lifelevel/internal/models"
)

func normalize(input string) string {
	return strings.TrimSpace(strings.ToLower(input))
}

// ParseFrequency parses a planning frequency. Empty input means "once".
func ParseFrequency(input string) (models.Frequency, error) {
	s := normalize(input)
	if s == "" {
		return models.FrequencyOnce, nil
	}
	f := models.Frequency(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid frequency: %q", input)
	}
	return f, nil
}

// ParseEnneagramType accepts "1".."9" with an optional "type " prefix.
func ParseEnneagramType(input string) (int, error) {
	s := strings.TrimPrefix(normalize(input), "type")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 9 {
		return 0, &ValidationError{Field: "enneagramType", Message: fmt.Sprintf("must be between 1 and 9, got %q", input)}
	}
	return n, nil
}

// ParseClock parses an HH:MM time of day.
func ParseClock(input string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(input))
	if err != nil {
		return 0, 0, &ValidationError{Field: "reminderTime", Message: fmt.Sprintf("expected HH:MM, got %q", input)}
	}
	return t.Hour(), t.Minute(), nil
}
