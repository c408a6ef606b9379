package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanvale/costbook/internal/db"
	"github.com/rowanvale/costbook/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo over a SQLite connection.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (name, budget_locked, created_at, updated_at)
		VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		p.Name,
		boolToInt(p.BudgetLocked),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading project id: %w", err)
	}
	p.ID = id
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	query := `SELECT id, name, budget_locked, created_at, updated_at FROM projects WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var p domain.Project
	var locked int
	var createdAtStr, updatedAtStr string
	if err := row.Scan(&p.ID, &p.Name, &locked, &createdAtStr, &updatedAtStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.BudgetLocked = intToBool(locked)

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &p, nil
}

func (r *SQLiteProjectRepo) SetBudgetLocked(ctx context.Context, id int64, locked bool) error {
	query := `UPDATE projects SET budget_locked = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, boolToInt(locked), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating budget lock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking budget lock update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project: %w", domain.ErrNotFound)
	}
	return nil
}
