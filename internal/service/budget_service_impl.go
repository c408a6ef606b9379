package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rowanvale/costbook/internal/db"
	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/repository"
	"github.com/rowanvale/costbook/internal/rollup"
)

type budgetService struct {
	projects   repository.ProjectRepo
	lines      repository.BudgetLineRepo
	aggregator *rollup.Aggregator
	uow        db.UnitOfWork
}

func NewBudgetService(projects repository.ProjectRepo, lines repository.BudgetLineRepo, aggregator *rollup.Aggregator, uow db.UnitOfWork) BudgetService {
	return &budgetService{projects: projects, lines: lines, aggregator: aggregator, uow: uow}
}

// GetBudget builds the projected budget table: stored lines joined with the
// rollup cache, cost aggregates computed live from the ledger, and a grand
// total row summed across every line.
func (s *budgetService) GetBudget(ctx context.Context, projectID string) (*BudgetView, error) {
	id, err := parseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		return nil, err
	}

	projected, err := s.lines.ListProjected(ctx, id)
	if err != nil {
		return nil, err
	}
	aggregates, err := s.aggregator.Aggregate(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &BudgetView{LineItems: make([]BudgetLineView, 0, len(projected))}
	columns := make([]rollup.Columns, 0, len(projected))
	for _, p := range projected {
		cols := rollup.Project(rollup.Baseline{
			OriginalAmount:  p.Line.OriginalAmount,
			BudgetModTotal:  p.BudgetModTotal,
			ApprovedCOTotal: p.ApprovedCOTotal,
		}, aggregates[p.Line.CostCodeID])
		columns = append(columns, cols)
		view.LineItems = append(view.LineItems, BudgetLineView{
			ID:            p.Line.ID,
			CostCodeID:    p.Line.CostCodeID,
			CostTypeID:    p.Line.CostTypeID,
			SubJobID:      p.Line.SubJobID,
			Description:   p.Line.Description,
			Quantity:      p.Line.Quantity,
			UnitOfMeasure: p.Line.UnitOfMeasure,
			UnitCost:      p.Line.UnitCost,
			Columns:       cols,
		})
	}
	view.GrandTotals = rollup.GrandTotals(columns)
	return view, nil
}

// PostLineItems creates or merges budget lines. A payload row keyed to an
// existing (cost code, cost type, sub job) line adds to its original amount
// instead of replacing it. All rows land in one transaction.
func (s *budgetService) PostLineItems(ctx context.Context, projectID, actor string, items []LineItemInput) ([]*domain.BudgetLine, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	id, err := parseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: lineItems must not be empty", domain.ErrInvalidInput)
	}
	for i, item := range items {
		if item.CostCodeID == "" {
			return nil, fmt.Errorf("%w: lineItems[%d] missing costCodeId", domain.ErrInvalidInput, i)
		}
		if !validAmount(item.Amount) {
			return nil, fmt.Errorf("%w: lineItems[%d] amount must be a finite number", domain.ErrInvalidInput, i)
		}
	}
	if _, err := requireUnlockedProject(ctx, s.projects, id); err != nil {
		return nil, err
	}

	var out []*domain.BudgetLine
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txLines := repository.NewSQLiteBudgetLineRepo(tx)
		for _, item := range items {
			line, err := s.upsertLine(ctx, txLines, id, item)
			if err != nil {
				return err
			}
			out = append(out, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *budgetService) upsertLine(ctx context.Context, txLines *repository.SQLiteBudgetLineRepo, projectID int64, item LineItemInput) (*domain.BudgetLine, error) {
	existing, err := txLines.FindByKey(ctx, projectID, item.CostCodeID, item.CostTypeID, item.SubJobID)
	switch {
	case err == nil:
		if err := txLines.AddToOriginalAmount(ctx, existing.ID, item.Amount); err != nil {
			return nil, err
		}
		return txLines.GetByID(ctx, existing.ID)
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now().UTC()
		line := &domain.BudgetLine{
			ID:             uuid.New().String(),
			ProjectID:      projectID,
			CostCodeID:     item.CostCodeID,
			CostTypeID:     item.CostTypeID,
			SubJobID:       item.SubJobID,
			Description:    item.Description,
			OriginalAmount: item.Amount,
			Quantity:       item.Quantity,
			UnitOfMeasure:  item.UnitOfMeasure,
			UnitCost:       item.UnitCost,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := txLines.Create(ctx, line); err != nil {
			return nil, err
		}
		return line, nil
	default:
		return nil, err
	}
}

// SetBudgetLock toggles the project's budget lock flag. Locking is allowed
// regardless of current state; unlocking a locked budget is the one mutation
// the lock itself does not block.
func (s *budgetService) SetBudgetLock(ctx context.Context, projectID, actor string, locked bool) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	id, err := parseProjectID(projectID)
	if err != nil {
		return err
	}
	return s.projects.SetBudgetLocked(ctx, id, locked)
}
