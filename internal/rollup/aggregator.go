// Package rollup computes per-cost-code aggregates from the raw cost ledger
// and projects budget lines into their derived financial columns.
package rollup

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rowanvale/costbook/internal/domain"
)

// CostAggregate is the per-cost-code summary of the four fact sources.
type CostAggregate struct {
	JobToDateCostDetail float64
	DirectCosts         float64
	PendingCostChanges  float64
}

// FactSource supplies the project-scoped fact sets the aggregator joins.
// Each fetch is already filtered to the relevant statuses by the store.
type FactSource interface {
	DirectCostItems(ctx context.Context, projectID int64) ([]domain.DirectCostLineItem, error)
	PendingSubcontractSOV(ctx context.Context, projectID int64) ([]domain.SOVLine, error)
	PendingPurchaseOrderSOV(ctx context.Context, projectID int64) ([]domain.SOVLine, error)
	PendingChangeOrderLines(ctx context.Context, projectID int64) ([]domain.ChangeOrderLine, error)
}

// Aggregator joins direct costs, subcontract SOV, purchase-order SOV and
// change-order lines into a mapping keyed by cost code.
type Aggregator struct {
	facts FactSource
}

func NewAggregator(facts FactSource) *Aggregator {
	return &Aggregator{facts: facts}
}

// Aggregate fetches the four fact sets concurrently and merges their partial
// mappings. Any fetch failure fails the whole aggregation; there is no
// partial-result fallback.
func (a *Aggregator) Aggregate(ctx context.Context, projectID int64) (map[string]CostAggregate, error) {
	var (
		directCosts []domain.DirectCostLineItem
		subSOV      []domain.SOVLine
		poSOV       []domain.SOVLine
		coLines     []domain.ChangeOrderLine
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		directCosts, err = a.facts.DirectCostItems(gctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		subSOV, err = a.facts.PendingSubcontractSOV(gctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		poSOV, err = a.facts.PendingPurchaseOrderSOV(gctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		coLines, err = a.facts.PendingChangeOrderLines(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataFetch, err)
	}

	return mergeAggregates(
		directCostPartial(directCosts),
		pendingSOVPartial(subSOV),
		pendingSOVPartial(poSOV),
		pendingChangeOrderPartial(coLines),
	), nil
}

// directCostPartial sums approved ledger items into job-to-date and direct
// cost buckets. Job-to-date counts every approved type; Direct Costs excludes
// Subcontractor Invoice. Unapproved items still claim a zero entry for their
// cost code.
func directCostPartial(items []domain.DirectCostLineItem) map[string]CostAggregate {
	out := make(map[string]CostAggregate)
	for _, item := range items {
		if item.CostCodeID == "" {
			continue
		}
		agg := out[item.CostCodeID]
		if item.Approved {
			costType := item.CostType
			if costType == "" {
				costType = domain.CostTypeInvoice
			}
			if domain.JobToDateCostTypes[costType] {
				agg.JobToDateCostDetail += item.Amount
			}
			if domain.DirectCostTypes[costType] {
				agg.DirectCosts += item.Amount
			}
		}
		out[item.CostCodeID] = agg
	}
	return out
}

// pendingSOVPartial sums commitment SOV lines into pending cost changes. The
// pending filter was applied at the source; amounts count unconditionally.
func pendingSOVPartial(lines []domain.SOVLine) map[string]CostAggregate {
	out := make(map[string]CostAggregate)
	for _, line := range lines {
		if line.BudgetCode == "" {
			continue
		}
		agg := out[line.BudgetCode]
		agg.PendingCostChanges += line.Amount
		out[line.BudgetCode] = agg
	}
	return out
}

func pendingChangeOrderPartial(lines []domain.ChangeOrderLine) map[string]CostAggregate {
	out := make(map[string]CostAggregate)
	for _, line := range lines {
		if line.CostCodeID == "" {
			continue
		}
		agg := out[line.CostCodeID]
		agg.PendingCostChanges += line.Amount
		out[line.CostCodeID] = agg
	}
	return out
}

// mergeAggregates combines partial mappings by field-wise addition. A code
// touched by any source is present in the result even when every sub-metric
// is zero.
func mergeAggregates(parts ...map[string]CostAggregate) map[string]CostAggregate {
	out := make(map[string]CostAggregate)
	for _, part := range parts {
		for code, p := range part {
			agg := out[code]
			agg.JobToDateCostDetail += p.JobToDateCostDetail
			agg.DirectCosts += p.DirectCosts
			agg.PendingCostChanges += p.PendingCostChanges
			out[code] = agg
		}
	}
	return out
}
