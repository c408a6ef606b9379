package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanvale/costbook/internal/db"
	"github.com/rowanvale/costbook/internal/domain"
)

// modificationColumns is the canonical SELECT column list for budget_modifications.
const modificationColumns = `id, project_id, number, title, reason, status,
		effective_date, created_by, created_at, updated_at`

// SQLiteModificationRepo implements ModificationRepo over a SQLite connection.
type SQLiteModificationRepo struct {
	db db.DBTX
}

// NewSQLiteModificationRepo creates a new SQLiteModificationRepo.
func NewSQLiteModificationRepo(conn db.DBTX) *SQLiteModificationRepo {
	return &SQLiteModificationRepo{db: conn}
}

func (r *SQLiteModificationRepo) Create(ctx context.Context, m *domain.BudgetModification) error {
	query := `INSERT INTO budget_modifications (id, project_id, number, title, reason, status,
			effective_date, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.ProjectID,
		m.Number,
		m.Title,
		m.Reason,
		string(m.Status),
		nullableTimeToString(m.EffectiveDate, time.RFC3339),
		m.CreatedBy,
		m.CreatedAt.Format(time.RFC3339),
		m.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting budget modification: %w", err)
	}
	return nil
}

func (r *SQLiteModificationRepo) CreateLine(ctx context.Context, l *domain.BudgetModLine) error {
	query := `INSERT INTO budget_mod_lines (id, budget_modification_id, project_id,
			cost_code_id, cost_type_id, sub_job_id, amount, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.ModificationID,
		l.ProjectID,
		l.CostCodeID,
		l.CostTypeID,
		l.SubJobID,
		l.Amount,
		l.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting budget mod line: %w", err)
	}
	return nil
}

func (r *SQLiteModificationRepo) GetByID(ctx context.Context, id string) (*domain.BudgetModification, error) {
	query := `SELECT ` + modificationColumns + ` FROM budget_modifications WHERE id = ?`
	return r.scanModification(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteModificationRepo) List(ctx context.Context, projectID int64, filter ModificationFilter) ([]*domain.BudgetModification, error) {
	query := `SELECT DISTINCT ` + aliasedModificationColumns + `
		FROM budget_modifications m`
	args := []any{}
	if filter.CostCodeID != "" {
		query += ` JOIN budget_mod_lines l ON l.budget_modification_id = m.id
			AND l.cost_code_id = ?`
		args = append(args, filter.CostCodeID)
		if filter.CostTypeID != "" {
			query += ` AND l.cost_type_id = ?`
			args = append(args, filter.CostTypeID)
		}
	}
	query += ` WHERE m.project_id = ?`
	args = append(args, projectID)
	if filter.Status != "" {
		query += ` AND m.status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY m.created_at DESC, m.number DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing budget modifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.BudgetModification
	for rows.Next() {
		m, err := r.scanModificationFromRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget modifications: %w", err)
	}
	return out, nil
}

func (r *SQLiteModificationRepo) ListLines(ctx context.Context, modificationID string) ([]domain.BudgetModLine, error) {
	query := `SELECT id, budget_modification_id, project_id, cost_code_id, cost_type_id,
			sub_job_id, amount, description
		FROM budget_mod_lines WHERE budget_modification_id = ? ORDER BY cost_code_id`
	rows, err := r.db.QueryContext(ctx, query, modificationID)
	if err != nil {
		return nil, fmt.Errorf("listing budget mod lines: %w", err)
	}
	defer rows.Close()

	var out []domain.BudgetModLine
	for rows.Next() {
		var l domain.BudgetModLine
		if err := rows.Scan(&l.ID, &l.ModificationID, &l.ProjectID, &l.CostCodeID,
			&l.CostTypeID, &l.SubJobID, &l.Amount, &l.Description); err != nil {
			return nil, fmt.Errorf("scanning budget mod line: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget mod lines: %w", err)
	}
	return out, nil
}

// UpdateStatus is a conditional update: the write only lands when the stored
// status still equals from, which serializes concurrent transitions on the
// same modification.
func (r *SQLiteModificationRepo) UpdateStatus(ctx context.Context, id string, from, to domain.ModificationStatus, effectiveDate *time.Time) (bool, error) {
	query := `UPDATE budget_modifications
		SET status = ?, effective_date = COALESCE(?, effective_date), updated_at = ?
		WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(to),
		nullableTimeToString(effectiveDate, time.RFC3339),
		nowUTC(),
		id,
		string(from),
	)
	if err != nil {
		return false, fmt.Errorf("updating modification status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking modification status update: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteModificationRepo) DeleteLines(ctx context.Context, modificationID string) error {
	query := `DELETE FROM budget_mod_lines WHERE budget_modification_id = ?`
	if _, err := r.db.ExecContext(ctx, query, modificationID); err != nil {
		return fmt.Errorf("deleting budget mod lines: %w", err)
	}
	return nil
}

func (r *SQLiteModificationRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM budget_modifications WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting budget modification: %w", err)
	}
	return nil
}

// aliasedModificationColumns is modificationColumns prefixed with "m." for joins.
const aliasedModificationColumns = `m.id, m.project_id, m.number, m.title, m.reason, m.status,
		m.effective_date, m.created_by, m.created_at, m.updated_at`

func (r *SQLiteModificationRepo) scanModification(row *sql.Row) (*domain.BudgetModification, error) {
	var m domain.BudgetModification
	var statusStr, createdAtStr, updatedAtStr string
	var effectiveDateStr sql.NullString

	err := row.Scan(&m.ID, &m.ProjectID, &m.Number, &m.Title, &m.Reason,
		&statusStr, &effectiveDateStr, &m.CreatedBy, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("budget modification: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning budget modification: %w", err)
	}
	return r.finishScan(&m, statusStr, effectiveDateStr, createdAtStr, updatedAtStr)
}

func (r *SQLiteModificationRepo) scanModificationFromRows(rows *sql.Rows) (*domain.BudgetModification, error) {
	var m domain.BudgetModification
	var statusStr, createdAtStr, updatedAtStr string
	var effectiveDateStr sql.NullString

	err := rows.Scan(&m.ID, &m.ProjectID, &m.Number, &m.Title, &m.Reason,
		&statusStr, &effectiveDateStr, &m.CreatedBy, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("scanning budget modification row: %w", err)
	}
	return r.finishScan(&m, statusStr, effectiveDateStr, createdAtStr, updatedAtStr)
}

func (r *SQLiteModificationRepo) finishScan(m *domain.BudgetModification, statusStr string, effectiveDateStr sql.NullString, createdAtStr, updatedAtStr string) (*domain.BudgetModification, error) {
	m.Status = domain.ModificationStatus(statusStr)
	m.EffectiveDate = parseNullableTime(effectiveDateStr, time.RFC3339)

	var parseErr error
	if m.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if m.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return m, nil
}
