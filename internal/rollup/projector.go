package rollup

import "math"

// Baseline carries a budget line's stored numbers: the original amount plus
// the two cached rollup totals.
type Baseline struct {
	OriginalAmount  float64
	BudgetModTotal  float64
	ApprovedCOTotal float64
}

// Columns are the derived financial columns of a projected budget line.
// CommittedCosts is a placeholder pending a computation from
// executed-commitment remaining value; it is reported as zero rather than
// guessed at.
type Columns struct {
	OriginalBudgetAmount      float64 `json:"originalBudgetAmount"`
	BudgetModifications       float64 `json:"budgetModifications"`
	ApprovedCOs               float64 `json:"approvedCOs"`
	RevisedBudget             float64 `json:"revisedBudget"`
	JobToDateCostDetail       float64 `json:"jobToDateCostDetail"`
	DirectCosts               float64 `json:"directCosts"`
	PendingChanges            float64 `json:"pendingChanges"`
	ProjectedBudget           float64 `json:"projectedBudget"`
	CommittedCosts            float64 `json:"committedCosts"`
	PendingCostChanges        float64 `json:"pendingCostChanges"`
	ProjectedCosts            float64 `json:"projectedCosts"`
	ForecastToComplete        float64 `json:"forecastToComplete"`
	EstimatedCostAtCompletion float64 `json:"estimatedCostAtCompletion"`
	ProjectedOverUnder        float64 `json:"projectedOverUnder"`
}

// Project derives every display column from a line's baseline and its cost
// aggregate. Pure function; no I/O, no mutation of its inputs.
//
// The forecast clamps at zero: spend beyond revised budget never produces a
// negative forecast, it surfaces as a negative ProjectedOverUnder instead.
func Project(b Baseline, c CostAggregate) Columns {
	revisedBudget := b.OriginalAmount + b.BudgetModTotal + b.ApprovedCOTotal
	forecastToComplete := math.Max(0, revisedBudget-c.JobToDateCostDetail)
	estimatedCostAtCompletion := c.JobToDateCostDetail + forecastToComplete

	return Columns{
		OriginalBudgetAmount:      b.OriginalAmount,
		BudgetModifications:       b.BudgetModTotal,
		ApprovedCOs:               b.ApprovedCOTotal,
		RevisedBudget:             revisedBudget,
		JobToDateCostDetail:       c.JobToDateCostDetail,
		DirectCosts:               c.DirectCosts,
		PendingChanges:            c.PendingCostChanges,
		ProjectedBudget:           revisedBudget + c.PendingCostChanges,
		CommittedCosts:            0,
		PendingCostChanges:        c.PendingCostChanges,
		ProjectedCosts:            c.DirectCosts + c.PendingCostChanges,
		ForecastToComplete:        forecastToComplete,
		EstimatedCostAtCompletion: estimatedCostAtCompletion,
		ProjectedOverUnder:        revisedBudget - estimatedCostAtCompletion,
	}
}

// GrandTotals is the column-wise sum across all projected rows. No weighting,
// no exclusion of zero rows.
func GrandTotals(rows []Columns) Columns {
	var t Columns
	for _, r := range rows {
		t.OriginalBudgetAmount += r.OriginalBudgetAmount
		t.BudgetModifications += r.BudgetModifications
		t.ApprovedCOs += r.ApprovedCOs
		t.RevisedBudget += r.RevisedBudget
		t.JobToDateCostDetail += r.JobToDateCostDetail
		t.DirectCosts += r.DirectCosts
		t.PendingChanges += r.PendingChanges
		t.ProjectedBudget += r.ProjectedBudget
		t.CommittedCosts += r.CommittedCosts
		t.PendingCostChanges += r.PendingCostChanges
		t.ProjectedCosts += r.ProjectedCosts
		t.ForecastToComplete += r.ForecastToComplete
		t.EstimatedCostAtCompletion += r.EstimatedCostAtCompletion
		t.ProjectedOverUnder += r.ProjectedOverUnder
	}
	return t
}
