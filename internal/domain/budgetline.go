package domain

import "time"

// BudgetLine is one budget row per (project, cost code, cost type, sub job).
// OriginalAmount is the baseline, mutated only by creation or additive
// posting; never hard-deleted once costs reference it. The modification and
// approved-CO totals live in the rollup cache, not here.
type BudgetLine struct {
	ID             string
	ProjectID      int64
	CostCodeID     string
	CostTypeID     string
	SubJobID       string
	Description    string
	OriginalAmount float64
	Quantity       *float64
	UnitOfMeasure  *string
	UnitCost       *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
