package service

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/repository"
)

// parseProjectID validates a project identifier from the URL path. Projects
// are keyed by positive integers; anything else is rejected before any query
// runs.
func parseProjectID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: project id must be a positive integer", domain.ErrInvalidInput)
	}
	return id, nil
}

// requireActor enforces the attribution header on mutating operations.
func requireActor(actor string) error {
	if actor == "" {
		return fmt.Errorf("%w: missing acting user", domain.ErrUnauthorized)
	}
	return nil
}

// requireUnlockedProject loads the project and rejects mutations while its
// budget lock flag is set.
func requireUnlockedProject(ctx context.Context, projects repository.ProjectRepo, projectID int64) (*domain.Project, error) {
	p, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.BudgetLocked {
		return nil, fmt.Errorf("%w: project %d", domain.ErrBudgetLocked, projectID)
	}
	return p, nil
}

// validAmount rejects NaN and infinities; callers decide whether zero is
// acceptable.
func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func actionStrings(actions []domain.ModificationAction) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, string(a))
	}
	return out
}
