package repository

import (
	"context"
	"time"

	"github.com/rowanvale/costbook/internal/domain"
)

// ProjectedBudgetLine is a budget line joined with its cached rollup totals,
// the baseline the projector computes derived columns from.
type ProjectedBudgetLine struct {
	Line            domain.BudgetLine
	BudgetModTotal  float64
	ApprovedCOTotal float64
}

// ModificationFilter narrows modification listings. Zero values mean no
// filtering on that dimension.
type ModificationFilter struct {
	Status     domain.ModificationStatus
	CostCodeID string
	CostTypeID string
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	SetBudgetLocked(ctx context.Context, id int64, locked bool) error
}

type BudgetLineRepo interface {
	Create(ctx context.Context, l *domain.BudgetLine) error
	GetByID(ctx context.Context, id string) (*domain.BudgetLine, error)
	// GetInProject scopes the lookup to a project; a line belonging to a
	// different project reads as not found.
	GetInProject(ctx context.Context, projectID int64, id string) (*domain.BudgetLine, error)
	FindByKey(ctx context.Context, projectID int64, costCodeID, costTypeID, subJobID string) (*domain.BudgetLine, error)
	AddToOriginalAmount(ctx context.Context, id string, delta float64) error
	ListProjected(ctx context.Context, projectID int64) ([]ProjectedBudgetLine, error)
}

type ModificationRepo interface {
	Create(ctx context.Context, m *domain.BudgetModification) error
	CreateLine(ctx context.Context, l *domain.BudgetModLine) error
	GetByID(ctx context.Context, id string) (*domain.BudgetModification, error)
	List(ctx context.Context, projectID int64, filter ModificationFilter) ([]*domain.BudgetModification, error)
	ListLines(ctx context.Context, modificationID string) ([]domain.BudgetModLine, error)
	// UpdateStatus performs a compare-and-swap on status. It reports false
	// when the row no longer holds the expected from status, leaving the
	// record untouched.
	UpdateStatus(ctx context.Context, id string, from, to domain.ModificationStatus, effectiveDate *time.Time) (bool, error)
	DeleteLines(ctx context.Context, modificationID string) error
	Delete(ctx context.Context, id string) error
}

// SequenceRepo allocates per-project modification numbers atomically.
type SequenceRepo interface {
	NextModificationSeq(ctx context.Context, projectID int64) (int, error)
}

// RollupRepo maintains the budget_rollups cache. Refresh is idempotent and
// project-scoped.
type RollupRepo interface {
	Refresh(ctx context.Context, projectID int64) error
}
