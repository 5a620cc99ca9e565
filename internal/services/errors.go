package services

import "errors"

// Rejection reasons surfaced by the reward engine. Both are returned before any
// state is written, so a caller seeing them can rely on zero side effects.
var (
	// ErrHabitNotFound means the habit does not exist, is inactive, or belongs to
	// someone else. The three cases are deliberately indistinguishable.
	ErrHabitNotFound = errors.New("habit not found or inactive")

	// ErrAlreadyCompletedToday means a completion already exists for this habit
	// within the current calendar day.
	ErrAlreadyCompletedToday = errors.New("habit already completed today")
)
