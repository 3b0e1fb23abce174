package engine

import (
	"errors"
	"fmt"
	"strings"

	"lifelevel/internal/catalog"
)

// ErrNotFound matches catalog misses as well as missing state entries.
var ErrNotFound = catalog.ErrNotFound

// ValidationError is the user-facing rejection of a completion: nothing in
// the state changes and the user may retry with corrected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PrerequisiteError indicates a skill is locked behind unpurchased predecessors.
type PrerequisiteError struct {
	SkillID string
	Missing []string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("skill '%s' requires %s to be unlocked first", e.SkillID, strings.Join(e.Missing, ", "))
}

type InsufficientXPError struct {
	AreaID    string
	Required  int
	Available int
}

func (e *InsufficientXPError) Error() string {
	return fmt.Sprintf("not enough %s XP: need %d, have %d", e.AreaID, e.Required, e.Available)
}

// LockedActivityError rejects an activity above the area's current level.
type LockedActivityError struct {
	ActivityID   string
	Required     int
	CurrentLevel int
}

func (e *LockedActivityError) Error() string {
	return fmt.Sprintf("activity '%s' unlocks at level %d (current level %d)", e.ActivityID, e.Required, e.CurrentLevel)
}

// QuestStateError is returned for accept/abandon on a quest in the wrong list.
type QuestStateError struct {
	QuestID string
	Status  string
	Want    string
}

func (e *QuestStateError) Error() string {
	return fmt.Sprintf("quest %s is %s (must be %s)", e.QuestID, e.Status, e.Want)
}

// ErrAlreadyUnlocked is returned when buying a skill twice.
var ErrAlreadyUnlocked = errors.New("skill already unlocked")

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is a rule violation rather than bad input or
// a missing entity.
func IsConflict(err error) bool {
	var pe *PrerequisiteError
	var xe *InsufficientXPError
	var qe *QuestStateError
	var le *LockedActivityError
	return errors.As(err, &pe) || errors.As(err, &xe) || errors.As(err, &qe) || errors.As(err, &le) ||
		errors.Is(err, ErrAlreadyUnlocked)
}
