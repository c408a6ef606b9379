package domain

// Ledger facts consumed by the cost aggregator. These rows are owned by the
// cost-entry, commitments and change-order subsystems; the rollup engine only
// reads them.

// DirectCostLineItem is an approved-gated spend fact against a cost code.
type DirectCostLineItem struct {
	ID         string
	ProjectID  int64
	CostCodeID string
	CostType   string
	Amount     float64
	Approved   bool
}

// SOVLine is a commitment schedule-of-values line. BudgetCode references the
// cost code the amount is committed against.
type SOVLine struct {
	BudgetCode string
	Amount     float64
}

// ChangeOrderLine is a change-order amount against a cost code; whether it is
// pending or approved is determined by the owning change order's status.
type ChangeOrderLine struct {
	CostCodeID string
	Amount     float64
}
