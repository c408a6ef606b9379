package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a malformed identifier or request payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the entity does not exist or is outside the
	// requested project's scope.
	ErrNotFound = errors.New("not found")

	// ErrBudgetLocked indicates a mutation was attempted against a project
	// whose budget lock flag is set.
	ErrBudgetLocked = errors.New("budget is locked")

	// ErrUnauthorized indicates no acting user was supplied for a mutation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDataFetch indicates a fact-source read failed during aggregation.
	ErrDataFetch = errors.New("data fetch failed")

	// ErrPersistence indicates an underlying write failed.
	ErrPersistence = errors.New("persistence failure")
)

// InvalidTransitionError reports a workflow action applied from a state that
// does not permit it, along with the actions that would be accepted.
type InvalidTransitionError struct {
	Action        ModificationAction
	CurrentStatus ModificationStatus
	ValidActions  []ModificationAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: cannot %s a %s modification", e.Action, e.CurrentStatus)
}
