package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/testutil"
)

func TestBudgetLineRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	projectRepo := NewSQLiteProjectRepo(database)
	lineRepo := NewSQLiteBudgetLineRepo(database)

	proj := testutil.NewTestProject("Lines")
	require.NoError(t, projectRepo.Create(ctx, proj))

	qty := 120.0
	uom := "cy"
	unitCost := 85.5
	line := testutil.NewTestBudgetLine(proj.ID, "03-300",
		testutil.WithCostType("M"), testutil.WithOriginalAmount(10260))
	line.Description = "Structural concrete"
	line.Quantity = &qty
	line.UnitOfMeasure = &uom
	line.UnitCost = &unitCost
	require.NoError(t, lineRepo.Create(ctx, line))

	got, err := lineRepo.GetByID(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, "03-300", got.CostCodeID)
	assert.Equal(t, "M", got.CostTypeID)
	assert.Equal(t, 10260.0, got.OriginalAmount)
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 120.0, *got.Quantity)
	require.NotNil(t, got.UnitOfMeasure)
	assert.Equal(t, "cy", *got.UnitOfMeasure)
}

func TestBudgetLineRepo_NullableFieldsRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	projectRepo := NewSQLiteProjectRepo(database)
	lineRepo := NewSQLiteBudgetLineRepo(database)

	proj := testutil.NewTestProject("Nullables")
	require.NoError(t, projectRepo.Create(ctx, proj))

	line := testutil.NewTestBudgetLine(proj.ID, "01-100")
	require.NoError(t, lineRepo.Create(ctx, line))

	got, err := lineRepo.GetByID(ctx, line.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Quantity)
	assert.Nil(t, got.UnitOfMeasure)
	assert.Nil(t, got.UnitCost)
}

func TestBudgetLineRepo_GetInProjectScoping(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	projectRepo := NewSQLiteProjectRepo(database)
	lineRepo := NewSQLiteBudgetLineRepo(database)

	projA := testutil.NewTestProject("A")
	projB := testutil.NewTestProject("B")
	require.NoError(t, projectRepo.Create(ctx, projA))
	require.NoError(t, projectRepo.Create(ctx, projB))

	line := testutil.NewTestBudgetLine(projA.ID, "01-100")
	require.NoError(t, lineRepo.Create(ctx, line))

	got, err := lineRepo.GetInProject(ctx, projA.ID, line.ID)
	require.NoError(t, err)
	assert.Equal(t, line.ID, got.ID)

	// The same line looked up through another project is not visible.
	_, err = lineRepo.GetInProject(ctx, projB.ID, line.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBudgetLineRepo_FindByKey(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	projectRepo := NewSQLiteProjectRepo(database)
	lineRepo := NewSQLiteBudgetLineRepo(database)

	proj := testutil.NewTestProject("Keyed")
	require.NoError(t, projectRepo.Create(ctx, proj))

	withType := testutil.NewTestBudgetLine(proj.ID, "01-100", testutil.WithCostType("L"))
	bare := testutil.NewTestBudgetLine(proj.ID, "01-100")
	require.NoError(t, lineRepo.Create(ctx, withType))
	require.NoError(t, lineRepo.Create(ctx, bare))

	got, err := lineRepo.FindByKey(ctx, proj.ID, "01-100", "L", "")
	require.NoError(t, err)
	assert.Equal(t, withType.ID, got.ID)

	got, err = lineRepo.FindByKey(ctx, proj.ID, "01-100", "", "")
	require.NoError(t, err)
	assert.Equal(t, bare.ID, got.ID)

	_, err = lineRepo.FindByKey(ctx, proj.ID, "01-100", "E", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBudgetLineRepo_AddToOriginalAmountIsAdditive(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	projectRepo := NewSQLiteProjectRepo(database)
	lineRepo := NewSQLiteBudgetLineRepo(database)

	proj := testutil.NewTestProject("Additive")
	require.NoError(t, projectRepo.Create(ctx, proj))

	line := testutil.NewTestBudgetLine(proj.ID, "01-100", testutil.WithOriginalAmount(1000))
	require.NoError(t, lineRepo.Create(ctx, line))

	require.NoError(t, lineRepo.AddToOriginalAmount(ctx, line.ID, 250))
	require.NoError(t, lineRepo.AddToOriginalAmount(ctx, line.ID, -100))

	got, err := lineRepo.GetByID(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 1150.0, got.OriginalAmount)
}

func TestBudgetLineRepo_AddToOriginalAmountNotFound(t *testing.T) {
	database := testutil.NewTestDB(t)

	lineRepo := NewSQLiteBudgetLineRepo(database)
	err := lineRepo.AddToOriginalAmount(context.Background(), uuid.New().String(), 10)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBudgetLineRepo_ListProjectedWithoutRollups(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	projectRepo := NewSQLiteProjectRepo(database)
	lineRepo := NewSQLiteBudgetLineRepo(database)

	proj := testutil.NewTestProject("Projected")
	require.NoError(t, projectRepo.Create(ctx, proj))
	require.NoError(t, lineRepo.Create(ctx, testutil.NewTestBudgetLine(proj.ID, "02-200", testutil.WithOriginalAmount(5000))))
	require.NoError(t, lineRepo.Create(ctx, testutil.NewTestBudgetLine(proj.ID, "01-100", testutil.WithOriginalAmount(3000))))

	projected, err := lineRepo.ListProjected(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, projected, 2)
	// Ordered by cost code; missing rollup rows read as zero.
	assert.Equal(t, "01-100", projected[0].Line.CostCodeID)
	assert.Equal(t, 0.0, projected[0].BudgetModTotal)
	assert.Equal(t, 0.0, projected[0].ApprovedCOTotal)
	assert.Equal(t, "02-200", projected[1].Line.CostCodeID)
}
