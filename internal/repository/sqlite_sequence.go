package repository

import (
	"context"
	"fmt"

	"github.com/rowanvale/costbook/internal/db"
)

// SQLiteSequenceRepo allocates per-project modification numbers atomically
// through the budget_mod_sequences table. Numbers are gap-tolerant: deleting
// a draft never frees its number for reuse.
type SQLiteSequenceRepo struct {
	db db.DBTX
}

// NewSQLiteSequenceRepo creates a new SQLiteSequenceRepo.
func NewSQLiteSequenceRepo(conn db.DBTX) *SQLiteSequenceRepo {
	return &SQLiteSequenceRepo{db: conn}
}

// NextModificationSeq returns the next sequence value for the project. The
// allocator row is seeded from the highest number already issued (parsed out
// of the BM-0000 format), then bumped with a single atomic UPDATE.
func (r *SQLiteSequenceRepo) NextModificationSeq(ctx context.Context, projectID int64) (int, error) {
	seedQuery := `INSERT OR IGNORE INTO budget_mod_sequences (project_id, next_seq)
		SELECT ?, COALESCE(MAX(CAST(SUBSTR(number, 4) AS INTEGER)), 0) + 1
		FROM budget_modifications
		WHERE project_id = ?`
	if _, err := r.db.ExecContext(ctx, seedQuery, projectID, projectID); err != nil {
		return 0, fmt.Errorf("seeding modification sequence for project %d: %w", projectID, err)
	}

	var next int
	allocQuery := `UPDATE budget_mod_sequences
		SET next_seq = next_seq + 1
		WHERE project_id = ?
		RETURNING next_seq - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, projectID).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating modification seq for project %d: %w", projectID, err)
	}

	return next, nil
}

// FormatModificationNumber renders a sequence value in the BM-0001 style.
func FormatModificationNumber(seq int) string {
	return fmt.Sprintf("BM-%04d", seq)
}
