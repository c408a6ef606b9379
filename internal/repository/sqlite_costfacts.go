package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/rowanvale/costbook/internal/db"
	"github.com/rowanvale/costbook/internal/domain"
)

// SQLiteCostFactRepo reads the four cost-ledger fact sets the aggregator
// joins. The ledger rows themselves are owned by the cost-entry, commitments
// and change-order subsystems; the insert methods exist for those writers and
// for test seeding.
type SQLiteCostFactRepo struct {
	db db.DBTX
}

// NewSQLiteCostFactRepo creates a new SQLiteCostFactRepo.
func NewSQLiteCostFactRepo(conn db.DBTX) *SQLiteCostFactRepo {
	return &SQLiteCostFactRepo{db: conn}
}

// DirectCostItems returns every direct-cost line item for the project,
// approved or not; the aggregator applies the approved gate so that
// unapproved items still register their cost code.
func (r *SQLiteCostFactRepo) DirectCostItems(ctx context.Context, projectID int64) ([]domain.DirectCostLineItem, error) {
	query := `SELECT id, project_id, cost_code_id, cost_type, amount, approved
		FROM direct_cost_line_items WHERE project_id = ?`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing direct costs: %w", err)
	}
	defer rows.Close()

	var out []domain.DirectCostLineItem
	for rows.Next() {
		var item domain.DirectCostLineItem
		var approved int
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.CostCodeID,
			&item.CostType, &item.Amount, &approved); err != nil {
			return nil, fmt.Errorf("scanning direct cost: %w", err)
		}
		item.Approved = intToBool(approved)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating direct costs: %w", err)
	}
	return out, nil
}

// PendingSubcontractSOV returns SOV lines of subcontracts in a pending status.
func (r *SQLiteCostFactRepo) PendingSubcontractSOV(ctx context.Context, projectID int64) ([]domain.SOVLine, error) {
	query := `SELECT i.budget_code, i.amount
		FROM subcontract_sov_items i
		JOIN subcontracts s ON s.id = i.subcontract_id
		WHERE s.project_id = ? AND s.status IN (` + placeholders(len(domain.PendingSubcontractStatuses)) + `)`
	args := []any{projectID}
	for _, s := range domain.PendingSubcontractStatuses {
		args = append(args, s)
	}
	return r.querySOVLines(ctx, "subcontract sov", query, args...)
}

// PendingPurchaseOrderSOV returns SOV lines of POs in a pending status.
func (r *SQLiteCostFactRepo) PendingPurchaseOrderSOV(ctx context.Context, projectID int64) ([]domain.SOVLine, error) {
	query := `SELECT i.budget_code, i.amount
		FROM purchase_order_sov_items i
		JOIN purchase_orders p ON p.id = i.purchase_order_id
		WHERE p.project_id = ? AND p.status IN (` + placeholders(len(domain.PendingPurchaseOrderStatuses)) + `)`
	args := []any{projectID}
	for _, s := range domain.PendingPurchaseOrderStatuses {
		args = append(args, s)
	}
	return r.querySOVLines(ctx, "purchase order sov", query, args...)
}

// PendingChangeOrderLines returns lines of change orders whose status carries
// the Pending prefix.
func (r *SQLiteCostFactRepo) PendingChangeOrderLines(ctx context.Context, projectID int64) ([]domain.ChangeOrderLine, error) {
	query := `SELECT l.cost_code_id, l.amount
		FROM change_order_lines l
		JOIN change_orders c ON c.id = l.change_order_id
		WHERE c.project_id = ? AND c.status LIKE ?`
	rows, err := r.db.QueryContext(ctx, query, projectID, domain.PendingChangeOrderPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("listing pending change order lines: %w", err)
	}
	defer rows.Close()

	var out []domain.ChangeOrderLine
	for rows.Next() {
		var line domain.ChangeOrderLine
		if err := rows.Scan(&line.CostCodeID, &line.Amount); err != nil {
			return nil, fmt.Errorf("scanning change order line: %w", err)
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change order lines: %w", err)
	}
	return out, nil
}

func (r *SQLiteCostFactRepo) querySOVLines(ctx context.Context, what, query string, args ...any) ([]domain.SOVLine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}
	defer rows.Close()

	var out []domain.SOVLine
	for rows.Next() {
		var line domain.SOVLine
		if err := rows.Scan(&line.BudgetCode, &line.Amount); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", what, err)
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", what, err)
	}
	return out, nil
}

// InsertDirectCost records a ledger fact.
func (r *SQLiteCostFactRepo) InsertDirectCost(ctx context.Context, item *domain.DirectCostLineItem) error {
	query := `INSERT INTO direct_cost_line_items (id, project_id, cost_code_id, cost_type, amount, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, item.ID, item.ProjectID, item.CostCodeID,
		item.CostType, item.Amount, boolToInt(item.Approved), nowUTC())
	if err != nil {
		return fmt.Errorf("inserting direct cost: %w", err)
	}
	return nil
}

// InsertSubcontract records a subcontract with its status.
func (r *SQLiteCostFactRepo) InsertSubcontract(ctx context.Context, id string, projectID int64, status string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO subcontracts (id, project_id, status) VALUES (?, ?, ?)`, id, projectID, status); err != nil {
		return fmt.Errorf("inserting subcontract: %w", err)
	}
	return nil
}

// InsertSubcontractSOVItem records one schedule-of-values line.
func (r *SQLiteCostFactRepo) InsertSubcontractSOVItem(ctx context.Context, id, subcontractID, budgetCode string, amount float64) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO subcontract_sov_items (id, subcontract_id, budget_code, amount) VALUES (?, ?, ?, ?)`,
		id, subcontractID, budgetCode, amount); err != nil {
		return fmt.Errorf("inserting subcontract sov item: %w", err)
	}
	return nil
}

// InsertPurchaseOrder records a purchase order with its status.
func (r *SQLiteCostFactRepo) InsertPurchaseOrder(ctx context.Context, id string, projectID int64, status string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO purchase_orders (id, project_id, status) VALUES (?, ?, ?)`, id, projectID, status); err != nil {
		return fmt.Errorf("inserting purchase order: %w", err)
	}
	return nil
}

// InsertPurchaseOrderSOVItem records one schedule-of-values line.
func (r *SQLiteCostFactRepo) InsertPurchaseOrderSOVItem(ctx context.Context, id, purchaseOrderID, budgetCode string, amount float64) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO purchase_order_sov_items (id, purchase_order_id, budget_code, amount) VALUES (?, ?, ?, ?)`,
		id, purchaseOrderID, budgetCode, amount); err != nil {
		return fmt.Errorf("inserting purchase order sov item: %w", err)
	}
	return nil
}

// InsertChangeOrder records a change order with its status.
func (r *SQLiteCostFactRepo) InsertChangeOrder(ctx context.Context, id string, projectID int64, status string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO change_orders (id, project_id, status) VALUES (?, ?, ?)`, id, projectID, status); err != nil {
		return fmt.Errorf("inserting change order: %w", err)
	}
	return nil
}

// InsertChangeOrderLine records one change-order amount against a cost code.
func (r *SQLiteCostFactRepo) InsertChangeOrderLine(ctx context.Context, id, changeOrderID, costCodeID string, amount float64) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO change_order_lines (id, change_order_id, cost_code_id, amount) VALUES (?, ?, ?, ?)`,
		id, changeOrderID, costCodeID, amount); err != nil {
		return fmt.Errorf("inserting change order line: %w", err)
	}
	return nil
}

// placeholders renders n comma-separated SQL parameter markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
