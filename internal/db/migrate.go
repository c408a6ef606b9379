package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies all schema statements in order. Statements are written to be
// re-runnable; "duplicate column name" errors from ALTER TABLE are tolerated
// because the list is replayed in full on every startup.
func Migrate(conn *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := conn.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		budget_locked INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS budget_lines (
		id              TEXT PRIMARY KEY,
		project_id      INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		cost_code_id    TEXT NOT NULL,
		cost_type_id    TEXT NOT NULL DEFAULT '',
		sub_job_id      TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		original_amount REAL NOT NULL DEFAULT 0,
		quantity        REAL,
		unit_of_measure TEXT,
		unit_cost       REAL,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL,
		UNIQUE(project_id, cost_code_id, cost_type_id, sub_job_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_budget_lines_project ON budget_lines(project_id)`,

	`CREATE TABLE IF NOT EXISTS budget_modifications (
		id             TEXT PRIMARY KEY,
		project_id     INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		number         TEXT NOT NULL,
		title          TEXT NOT NULL DEFAULT '',
		reason         TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'draft'
		               CHECK(status IN ('draft','pending','approved','void')),
		effective_date TEXT,
		created_by     TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL,
		UNIQUE(project_id, number)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_budget_modifications_project ON budget_modifications(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_budget_modifications_status ON budget_modifications(status)`,

	`CREATE TABLE IF NOT EXISTS budget_mod_lines (
		id                     TEXT PRIMARY KEY,
		budget_modification_id TEXT NOT NULL REFERENCES budget_modifications(id),
		project_id             INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		cost_code_id           TEXT NOT NULL,
		cost_type_id           TEXT NOT NULL DEFAULT '',
		sub_job_id             TEXT NOT NULL DEFAULT '',
		amount                 REAL NOT NULL,
		description            TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_budget_mod_lines_mod ON budget_mod_lines(budget_modification_id)`,

	`CREATE TABLE IF NOT EXISTS budget_mod_sequences (
		project_id INTEGER PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		next_seq   INTEGER NOT NULL CHECK(next_seq > 0)
	)`,

	`CREATE TABLE IF NOT EXISTS direct_cost_line_items (
		id           TEXT PRIMARY KEY,
		project_id   INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		cost_code_id TEXT NOT NULL,
		cost_type    TEXT NOT NULL DEFAULT 'Invoice',
		amount       REAL NOT NULL DEFAULT 0,
		approved     INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_direct_costs_project ON direct_cost_line_items(project_id)`,

	`CREATE TABLE IF NOT EXISTS subcontracts (
		id         TEXT PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		status     TEXT NOT NULL DEFAULT 'Draft'
	)`,

	`CREATE TABLE IF NOT EXISTS subcontract_sov_items (
		id             TEXT PRIMARY KEY,
		subcontract_id TEXT NOT NULL REFERENCES subcontracts(id) ON DELETE CASCADE,
		budget_code    TEXT NOT NULL,
		amount         REAL NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS purchase_orders (
		id         TEXT PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		status     TEXT NOT NULL DEFAULT 'Draft'
	)`,

	`CREATE TABLE IF NOT EXISTS purchase_order_sov_items (
		id                TEXT PRIMARY KEY,
		purchase_order_id TEXT NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
		budget_code       TEXT NOT NULL,
		amount            REAL NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS change_orders (
		id         TEXT PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		status     TEXT NOT NULL DEFAULT 'Draft'
	)`,

	`CREATE TABLE IF NOT EXISTS change_order_lines (
		id              TEXT PRIMARY KEY,
		change_order_id TEXT NOT NULL REFERENCES change_orders(id) ON DELETE CASCADE,
		cost_code_id    TEXT NOT NULL,
		amount          REAL NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS budget_rollups (
		project_id        INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		cost_code_id      TEXT NOT NULL,
		cost_type_id      TEXT NOT NULL DEFAULT '',
		sub_job_id        TEXT NOT NULL DEFAULT '',
		budget_mod_total  REAL NOT NULL DEFAULT 0,
		approved_co_total REAL NOT NULL DEFAULT 0,
		refreshed_at      TEXT NOT NULL,
		PRIMARY KEY (project_id, cost_code_id, cost_type_id, sub_job_id)
	)`,
}
