package domain

import "time"

// Project owns budget lines and carries the budget lock flag checked before
// any budget mutation.
type Project struct {
	ID           int64
	Name         string
	BudgetLocked bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
