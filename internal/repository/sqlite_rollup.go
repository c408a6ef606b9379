package repository

import (
	"context"
	"fmt"

	"github.com/rowanvale/costbook/internal/db"
	"github.com/rowanvale/costbook/internal/domain"
)

// SQLiteRollupRepo maintains the budget_rollups cache: per-code sums of
// currently-approved modification lines and approved change orders. Run
// Refresh inside a transaction so readers never observe the window between
// delete and recompute.
type SQLiteRollupRepo struct {
	db db.DBTX
}

// NewSQLiteRollupRepo creates a new SQLiteRollupRepo.
func NewSQLiteRollupRepo(conn db.DBTX) *SQLiteRollupRepo {
	return &SQLiteRollupRepo{db: conn}
}

// Refresh drops and recomputes the project's rollup rows. Idempotent: running
// it twice in a row yields identical rows.
func (r *SQLiteRollupRepo) Refresh(ctx context.Context, projectID int64) error {
	now := nowUTC()

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM budget_rollups WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clearing rollup for project %d: %w", projectID, err)
	}

	// Modification totals only count lines whose parent is currently approved.
	modQuery := `INSERT INTO budget_rollups
			(project_id, cost_code_id, cost_type_id, sub_job_id, budget_mod_total, approved_co_total, refreshed_at)
		SELECT l.project_id, l.cost_code_id, l.cost_type_id, l.sub_job_id, SUM(l.amount), 0, ?
		FROM budget_mod_lines l
		JOIN budget_modifications m ON m.id = l.budget_modification_id
		WHERE l.project_id = ? AND m.status = ?
		GROUP BY l.cost_code_id, l.cost_type_id, l.sub_job_id`
	if _, err := r.db.ExecContext(ctx, modQuery, now, projectID,
		string(domain.ModificationApproved)); err != nil {
		return fmt.Errorf("rolling up approved modifications for project %d: %w", projectID, err)
	}

	// Approved change orders key by cost code only; they land on the bare-code
	// rollup row, merging into an existing row when one was just created.
	coQuery := `INSERT INTO budget_rollups
			(project_id, cost_code_id, cost_type_id, sub_job_id, budget_mod_total, approved_co_total, refreshed_at)
		SELECT co.project_id, col.cost_code_id, '', '', 0, SUM(col.amount), ?
		FROM change_order_lines col
		JOIN change_orders co ON co.id = col.change_order_id
		WHERE co.project_id = ? AND co.status = ?
		GROUP BY col.cost_code_id
		ON CONFLICT(project_id, cost_code_id, cost_type_id, sub_job_id) DO UPDATE
		SET approved_co_total = excluded.approved_co_total,
		    refreshed_at = excluded.refreshed_at`
	if _, err := r.db.ExecContext(ctx, coQuery, now, projectID,
		domain.ApprovedChangeOrderStatus); err != nil {
		return fmt.Errorf("rolling up approved change orders for project %d: %w", projectID, err)
	}

	return nil
}
