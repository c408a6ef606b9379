package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject_RevisedBudgetIdentity(t *testing.T) {
	tests := []struct {
		name     string
		baseline Baseline
	}{
		{"all positive", Baseline{OriginalAmount: 10000, BudgetModTotal: 5000, ApprovedCOTotal: 2500}},
		{"negative modification", Baseline{OriginalAmount: 10000, BudgetModTotal: -3000, ApprovedCOTotal: 0}},
		{"all zero", Baseline{}},
		{"negative original", Baseline{OriginalAmount: -100, BudgetModTotal: 50, ApprovedCOTotal: -25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := Project(tt.baseline, CostAggregate{JobToDateCostDetail: 123.45})
			want := tt.baseline.OriginalAmount + tt.baseline.BudgetModTotal + tt.baseline.ApprovedCOTotal
			assert.Equal(t, want, cols.RevisedBudget)
		})
	}
}

func TestProject_ForecastClampsAtZero(t *testing.T) {
	// Spend beyond revised budget must not drive the forecast negative.
	cols := Project(
		Baseline{OriginalAmount: 1000},
		CostAggregate{JobToDateCostDetail: 1500},
	)
	assert.Equal(t, 0.0, cols.ForecastToComplete)
	assert.Equal(t, 1500.0, cols.EstimatedCostAtCompletion)
	assert.Equal(t, -500.0, cols.ProjectedOverUnder)
}

func TestProject_Identities(t *testing.T) {
	baselines := []Baseline{
		{OriginalAmount: 10000, BudgetModTotal: 5000, ApprovedCOTotal: 1000},
		{OriginalAmount: 0, BudgetModTotal: 0, ApprovedCOTotal: 0},
		{OriginalAmount: -2500, BudgetModTotal: 800, ApprovedCOTotal: -100},
	}
	aggregates := []CostAggregate{
		{},
		{JobToDateCostDetail: 300, DirectCosts: 100, PendingCostChanges: 50},
		{JobToDateCostDetail: 99999.99, DirectCosts: 99999.99, PendingCostChanges: -250},
	}
	for _, b := range baselines {
		for _, c := range aggregates {
			cols := Project(b, c)
			assert.GreaterOrEqual(t, cols.ForecastToComplete, 0.0)
			assert.Equal(t, cols.JobToDateCostDetail+cols.ForecastToComplete, cols.EstimatedCostAtCompletion)
			assert.Equal(t, cols.RevisedBudget-cols.EstimatedCostAtCompletion, cols.ProjectedOverUnder)
			assert.Equal(t, cols.RevisedBudget+c.PendingCostChanges, cols.ProjectedBudget)
			assert.Equal(t, c.DirectCosts+c.PendingCostChanges, cols.ProjectedCosts)
		}
	}
}

func TestProject_CommittedCostsIsPlaceholderZero(t *testing.T) {
	cols := Project(
		Baseline{OriginalAmount: 5000},
		CostAggregate{JobToDateCostDetail: 1000, DirectCosts: 800, PendingCostChanges: 200},
	)
	assert.Equal(t, 0.0, cols.CommittedCosts)
}

func TestGrandTotals_ColumnwiseSum(t *testing.T) {
	rows := []Columns{
		Project(Baseline{OriginalAmount: 10000, BudgetModTotal: 5000}, CostAggregate{JobToDateCostDetail: 2000, DirectCosts: 2000}),
		Project(Baseline{OriginalAmount: 4000}, CostAggregate{PendingCostChanges: 750}),
		Project(Baseline{}, CostAggregate{}), // zero rows are not excluded
	}
	totals := GrandTotals(rows)

	assert.Equal(t, 14000.0, totals.OriginalBudgetAmount)
	assert.Equal(t, 5000.0, totals.BudgetModifications)
	assert.Equal(t, 19000.0, totals.RevisedBudget)
	assert.Equal(t, 2000.0, totals.JobToDateCostDetail)
	assert.Equal(t, 750.0, totals.PendingCostChanges)
	assert.Equal(t, rows[0].ForecastToComplete+rows[1].ForecastToComplete, totals.ForecastToComplete)
	assert.Equal(t, rows[0].ProjectedOverUnder+rows[1].ProjectedOverUnder+rows[2].ProjectedOverUnder, totals.ProjectedOverUnder)
}

func TestGrandTotals_Empty(t *testing.T) {
	assert.Equal(t, Columns{}, GrandTotals(nil))
}
