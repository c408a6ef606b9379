package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/rowanvale/costbook/internal/domain"
)

// Project options
type ProjectOption func(*domain.Project)

func WithBudgetLocked() ProjectOption {
	return func(p *domain.Project) {
		p.BudgetLocked = true
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BudgetLine options
type LineOption func(*domain.BudgetLine)

func WithCostType(costTypeID string) LineOption {
	return func(l *domain.BudgetLine) {
		l.CostTypeID = costTypeID
	}
}

func WithSubJob(subJobID string) LineOption {
	return func(l *domain.BudgetLine) {
		l.SubJobID = subJobID
	}
}

func WithOriginalAmount(amount float64) LineOption {
	return func(l *domain.BudgetLine) {
		l.OriginalAmount = amount
	}
}

func NewTestBudgetLine(projectID int64, costCodeID string, opts ...LineOption) *domain.BudgetLine {
	now := time.Now().UTC()
	l := &domain.BudgetLine{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		CostCodeID: costCodeID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewTestDirectCost builds an approved ledger item unless marked otherwise.
func NewTestDirectCost(projectID int64, costCodeID, costType string, amount float64, approved bool) *domain.DirectCostLineItem {
	return &domain.DirectCostLineItem{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		CostCodeID: costCodeID,
		CostType:   costType,
		Amount:     amount,
		Approved:   approved,
	}
}
