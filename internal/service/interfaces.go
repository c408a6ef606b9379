package service

import (
	"context"
	"time"

	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/rollup"
)

// BudgetView is the projected budget table for one project.
type BudgetView struct {
	LineItems   []BudgetLineView `json:"lineItems"`
	GrandTotals rollup.Columns   `json:"grandTotals"`
}

// BudgetLineView is a budget line with its derived financial columns.
type BudgetLineView struct {
	ID            string   `json:"id"`
	CostCodeID    string   `json:"costCodeId"`
	CostTypeID    string   `json:"costType,omitempty"`
	SubJobID      string   `json:"subJobId,omitempty"`
	Description   string   `json:"description,omitempty"`
	Quantity      *float64 `json:"qty,omitempty"`
	UnitOfMeasure *string  `json:"uom,omitempty"`
	UnitCost      *float64 `json:"unitCost,omitempty"`
	rollup.Columns
}

// LineItemInput is one budget line in a POST budget payload. Posting to an
// existing (cost code, cost type, sub job) key adds to the stored amount.
type LineItemInput struct {
	CostCodeID    string
	CostTypeID    string
	SubJobID      string
	Amount        float64
	Description   string
	Quantity      *float64
	UnitOfMeasure *string
	UnitCost      *float64
}

// ModificationInput creates a draft modification with its single line.
type ModificationInput struct {
	BudgetLineID  string
	Amount        float64
	Title         string
	Reason        string
	Description   string
	EffectiveDate *time.Time
}

// ModificationListFilter narrows a modification listing. A BudgetLineID
// filter matches on the referenced line's cost code, and on its cost type
// when the line carries one.
type ModificationListFilter struct {
	Status       string
	BudgetLineID string
}

// ModificationView is a modification with its lines, summed amount and the
// workflow actions its current status accepts.
type ModificationView struct {
	ID            string                 `json:"id"`
	ProjectID     int64                  `json:"projectId"`
	Number        string                 `json:"number"`
	Title         string                 `json:"title,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	Status        string                 `json:"status"`
	EffectiveDate *time.Time             `json:"effectiveDate,omitempty"`
	CreatedBy     string                 `json:"createdBy,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
	Amount        float64                `json:"amount"`
	Lines         []ModificationLineView `json:"lines"`
	ValidActions  []string               `json:"validActions"`
}

// ModificationLineView is one cost-code amount inside a modification.
type ModificationLineView struct {
	ID          string  `json:"id"`
	CostCodeID  string  `json:"costCodeId"`
	CostTypeID  string  `json:"costType,omitempty"`
	SubJobID    string  `json:"subJobId,omitempty"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

type BudgetService interface {
	GetBudget(ctx context.Context, projectID string) (*BudgetView, error)
	PostLineItems(ctx context.Context, projectID, actor string, items []LineItemInput) ([]*domain.BudgetLine, error)
	SetBudgetLock(ctx context.Context, projectID, actor string, locked bool) error
}

type ModificationService interface {
	Create(ctx context.Context, projectID, actor string, in ModificationInput) (*ModificationView, error)
	List(ctx context.Context, projectID string, filter ModificationListFilter) ([]*ModificationView, error)
	Transition(ctx context.Context, projectID, actor, modificationID, action string) (*ModificationView, error)
	Delete(ctx context.Context, projectID, actor, modificationID string) error
}
