package service

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/repository"
	"github.com/rowanvale/costbook/internal/rollup"
	"github.com/rowanvale/costbook/internal/testutil"
)

// testEnv wires the full service stack over an in-memory database.
type testEnv struct {
	db       *sql.DB
	projects *repository.SQLiteProjectRepo
	lines    *repository.SQLiteBudgetLineRepo
	facts    *repository.SQLiteCostFactRepo
	budget   BudgetService
	mods     ModificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	projects := repository.NewSQLiteProjectRepo(database)
	lines := repository.NewSQLiteBudgetLineRepo(database)
	mods := repository.NewSQLiteModificationRepo(database)
	sequences := repository.NewSQLiteSequenceRepo(database)
	rollups := repository.NewSQLiteRollupRepo(database)
	facts := repository.NewSQLiteCostFactRepo(database)
	aggregator := rollup.NewAggregator(facts)

	return &testEnv{
		db:       database,
		projects: projects,
		lines:    lines,
		facts:    facts,
		budget:   NewBudgetService(projects, lines, aggregator, uow),
		mods:     NewModificationService(projects, lines, mods, sequences, rollups, uow),
	}
}

// seedProject creates a project with one budget line and returns both.
func (e *testEnv) seedProject(t *testing.T, name, costCode string, originalAmount float64, opts ...testutil.ProjectOption) (*domain.Project, *domain.BudgetLine) {
	t.Helper()
	ctx := context.Background()
	proj := testutil.NewTestProject(name, opts...)
	require.NoError(t, e.projects.Create(ctx, proj))
	line := testutil.NewTestBudgetLine(proj.ID, costCode, testutil.WithOriginalAmount(originalAmount))
	require.NoError(t, e.lines.Create(ctx, line))
	return proj, line
}

// projectIDStr renders a project id the way it arrives from the URL path.
func projectIDStr(p *domain.Project) string {
	return strconv.FormatInt(p.ID, 10)
}
