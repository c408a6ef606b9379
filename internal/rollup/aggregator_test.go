package rollup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/costbook/internal/domain"
)

// fakeFactSource returns canned fact sets, with optional per-source failures.
type fakeFactSource struct {
	directCosts []domain.DirectCostLineItem
	subSOV      []domain.SOVLine
	poSOV       []domain.SOVLine
	coLines     []domain.ChangeOrderLine

	directErr error
	subErr    error
	poErr     error
	coErr     error
}

func (f *fakeFactSource) DirectCostItems(ctx context.Context, projectID int64) ([]domain.DirectCostLineItem, error) {
	return f.directCosts, f.directErr
}

func (f *fakeFactSource) PendingSubcontractSOV(ctx context.Context, projectID int64) ([]domain.SOVLine, error) {
	return f.subSOV, f.subErr
}

func (f *fakeFactSource) PendingPurchaseOrderSOV(ctx context.Context, projectID int64) ([]domain.SOVLine, error) {
	return f.poSOV, f.poErr
}

func (f *fakeFactSource) PendingChangeOrderLines(ctx context.Context, projectID int64) ([]domain.ChangeOrderLine, error) {
	return f.coLines, f.coErr
}

func TestAggregate_CostSplitLaw(t *testing.T) {
	// Subcontractor Invoice counts toward job-to-date but never direct costs.
	agg := NewAggregator(&fakeFactSource{
		directCosts: []domain.DirectCostLineItem{
			{CostCodeID: "01-100", CostType: domain.CostTypeInvoice, Amount: 100, Approved: true},
			{CostCodeID: "01-100", CostType: domain.CostTypeSubcontractorInvoice, Amount: 200, Approved: true},
		},
	})

	out, err := agg.Aggregate(context.Background(), 1)
	require.NoError(t, err)

	require.Contains(t, out, "01-100")
	assert.Equal(t, 300.0, out["01-100"].JobToDateCostDetail)
	assert.Equal(t, 100.0, out["01-100"].DirectCosts)
}

func TestAggregate_UnapprovedItemsClaimZeroEntry(t *testing.T) {
	agg := NewAggregator(&fakeFactSource{
		directCosts: []domain.DirectCostLineItem{
			{CostCodeID: "02-200", CostType: domain.CostTypeExpense, Amount: 500, Approved: false},
		},
	})

	out, err := agg.Aggregate(context.Background(), 1)
	require.NoError(t, err)

	require.Contains(t, out, "02-200")
	assert.Equal(t, CostAggregate{}, out["02-200"])
}

func TestAggregate_PendingSourcesSumUnconditionally(t *testing.T) {
	agg := NewAggregator(&fakeFactSource{
		subSOV:  []domain.SOVLine{{BudgetCode: "03-300", Amount: 1000}},
		poSOV:   []domain.SOVLine{{BudgetCode: "03-300", Amount: 250}, {BudgetCode: "04-400", Amount: 75}},
		coLines: []domain.ChangeOrderLine{{CostCodeID: "03-300", Amount: -100}},
	})

	out, err := agg.Aggregate(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1150.0, out["03-300"].PendingCostChanges)
	assert.Equal(t, 75.0, out["04-400"].PendingCostChanges)
	assert.Equal(t, 0.0, out["03-300"].JobToDateCostDetail)
}

func TestAggregate_BlankCostTypeDefaultsToInvoice(t *testing.T) {
	agg := NewAggregator(&fakeFactSource{
		directCosts: []domain.DirectCostLineItem{
			{CostCodeID: "05-500", CostType: "", Amount: 40, Approved: true},
		},
	})

	out, err := agg.Aggregate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 40.0, out["05-500"].JobToDateCostDetail)
	assert.Equal(t, 40.0, out["05-500"].DirectCosts)
}

func TestAggregate_FetchFailureFailsWhole(t *testing.T) {
	boom := errors.New("connection reset")
	for name, src := range map[string]*fakeFactSource{
		"direct costs":    {directErr: boom},
		"subcontract sov": {subErr: boom},
		"po sov":          {poErr: boom},
		"change orders":   {coErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			out, err := NewAggregator(src).Aggregate(context.Background(), 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDataFetch))
			assert.Nil(t, out, "no partial results on failure")
		})
	}
}

func TestMergeAggregates_FieldwiseAddition(t *testing.T) {
	merged := mergeAggregates(
		map[string]CostAggregate{"a": {JobToDateCostDetail: 1, DirectCosts: 2}},
		map[string]CostAggregate{"a": {PendingCostChanges: 3}, "b": {DirectCosts: 4}},
	)
	assert.Equal(t, CostAggregate{JobToDateCostDetail: 1, DirectCosts: 2, PendingCostChanges: 3}, merged["a"])
	assert.Equal(t, CostAggregate{DirectCosts: 4}, merged["b"])
}

func TestDirectCostPartial_SkipsBlankCode(t *testing.T) {
	out := directCostPartial([]domain.DirectCostLineItem{
		{CostCodeID: "", CostType: domain.CostTypeInvoice, Amount: 99, Approved: true},
	})
	assert.Empty(t, out)
}
