package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanvale/costbook/internal/db"
	"github.com/rowanvale/costbook/internal/domain"
)

// budgetLineColumns is the canonical SELECT column list for budget_lines.
const budgetLineColumns = `id, project_id, cost_code_id, cost_type_id, sub_job_id,
		description, original_amount, quantity, unit_of_measure, unit_cost,
		created_at, updated_at`

// SQLiteBudgetLineRepo implements BudgetLineRepo over a SQLite connection.
type SQLiteBudgetLineRepo struct {
	db db.DBTX
}

// NewSQLiteBudgetLineRepo creates a new SQLiteBudgetLineRepo.
func NewSQLiteBudgetLineRepo(conn db.DBTX) *SQLiteBudgetLineRepo {
	return &SQLiteBudgetLineRepo{db: conn}
}

func (r *SQLiteBudgetLineRepo) Create(ctx context.Context, l *domain.BudgetLine) error {
	query := `INSERT INTO budget_lines (id, project_id, cost_code_id, cost_type_id, sub_job_id,
			description, original_amount, quantity, unit_of_measure, unit_cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.ProjectID,
		l.CostCodeID,
		l.CostTypeID,
		l.SubJobID,
		l.Description,
		l.OriginalAmount,
		floatToValue(l.Quantity),
		stringToValue(l.UnitOfMeasure),
		floatToValue(l.UnitCost),
		l.CreatedAt.Format(time.RFC3339),
		l.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting budget line: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetLineRepo) GetByID(ctx context.Context, id string) (*domain.BudgetLine, error) {
	query := `SELECT ` + budgetLineColumns + ` FROM budget_lines WHERE id = ?`
	return r.scanLine(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteBudgetLineRepo) GetInProject(ctx context.Context, projectID int64, id string) (*domain.BudgetLine, error) {
	query := `SELECT ` + budgetLineColumns + ` FROM budget_lines WHERE id = ? AND project_id = ?`
	return r.scanLine(r.db.QueryRowContext(ctx, query, id, projectID))
}

func (r *SQLiteBudgetLineRepo) FindByKey(ctx context.Context, projectID int64, costCodeID, costTypeID, subJobID string) (*domain.BudgetLine, error) {
	query := `SELECT ` + budgetLineColumns + ` FROM budget_lines
		WHERE project_id = ? AND cost_code_id = ? AND cost_type_id = ? AND sub_job_id = ?`
	return r.scanLine(r.db.QueryRowContext(ctx, query, projectID, costCodeID, costTypeID, subJobID))
}

// AddToOriginalAmount adds delta to a line's baseline. Posting to an existing
// (project, code, type, sub job) key is additive, never replacing.
func (r *SQLiteBudgetLineRepo) AddToOriginalAmount(ctx context.Context, id string, delta float64) error {
	query := `UPDATE budget_lines SET original_amount = original_amount + ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, delta, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating budget line amount: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking budget line update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget line: %w", domain.ErrNotFound)
	}
	return nil
}

// ListProjected returns the project's budget lines joined with the rollup
// cache. Modification totals match on the full (code, type, sub job) key;
// approved-CO totals attach by cost code alone because change-order lines
// carry no cost type.
func (r *SQLiteBudgetLineRepo) ListProjected(ctx context.Context, projectID int64) ([]ProjectedBudgetLine, error) {
	query := `SELECT ` + aliasedBudgetLineColumns + `,
			COALESCE(m.budget_mod_total, 0),
			COALESCE(co.approved_co_total, 0)
		FROM budget_lines b
		LEFT JOIN budget_rollups m
			ON m.project_id = b.project_id
			AND m.cost_code_id = b.cost_code_id
			AND m.cost_type_id = b.cost_type_id
			AND m.sub_job_id = b.sub_job_id
		LEFT JOIN (
			SELECT project_id, cost_code_id, SUM(approved_co_total) AS approved_co_total
			FROM budget_rollups
			GROUP BY project_id, cost_code_id
		) co
			ON co.project_id = b.project_id AND co.cost_code_id = b.cost_code_id
		WHERE b.project_id = ?
		ORDER BY b.cost_code_id, b.cost_type_id, b.sub_job_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing projected budget lines: %w", err)
	}
	defer rows.Close()

	var out []ProjectedBudgetLine
	for rows.Next() {
		var p ProjectedBudgetLine
		var qty, unitCost sql.NullFloat64
		var uom sql.NullString
		var createdAtStr, updatedAtStr string
		err := rows.Scan(
			&p.Line.ID, &p.Line.ProjectID, &p.Line.CostCodeID, &p.Line.CostTypeID, &p.Line.SubJobID,
			&p.Line.Description, &p.Line.OriginalAmount, &qty, &uom, &unitCost,
			&createdAtStr, &updatedAtStr,
			&p.BudgetModTotal, &p.ApprovedCOTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning projected budget line: %w", err)
		}
		p.Line.Quantity = nullableFloat(qty)
		p.Line.UnitOfMeasure = nullableString(uom)
		p.Line.UnitCost = nullableFloat(unitCost)
		if p.Line.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if p.Line.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget lines: %w", err)
	}
	return out, nil
}

// aliasedBudgetLineColumns is budgetLineColumns prefixed with "b." for joins.
const aliasedBudgetLineColumns = `b.id, b.project_id, b.cost_code_id, b.cost_type_id, b.sub_job_id,
		b.description, b.original_amount, b.quantity, b.unit_of_measure, b.unit_cost,
		b.created_at, b.updated_at`

func (r *SQLiteBudgetLineRepo) scanLine(row *sql.Row) (*domain.BudgetLine, error) {
	var l domain.BudgetLine
	var qty, unitCost sql.NullFloat64
	var uom sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&l.ID, &l.ProjectID, &l.CostCodeID, &l.CostTypeID, &l.SubJobID,
		&l.Description, &l.OriginalAmount, &qty, &uom, &unitCost,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("budget line: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning budget line: %w", err)
	}
	l.Quantity = nullableFloat(qty)
	l.UnitOfMeasure = nullableString(uom)
	l.UnitCost = nullableFloat(unitCost)

	var parseErr error
	if l.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if l.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &l, nil
}
