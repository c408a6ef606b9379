package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rowanvale/costbook/internal/db"
	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/repository"
)

type modificationService struct {
	projects  repository.ProjectRepo
	lines     repository.BudgetLineRepo
	mods      repository.ModificationRepo
	sequences repository.SequenceRepo
	rollups   repository.RollupRepo
	uow       db.UnitOfWork
}

func NewModificationService(
	projects repository.ProjectRepo,
	lines repository.BudgetLineRepo,
	mods repository.ModificationRepo,
	sequences repository.SequenceRepo,
	rollups repository.RollupRepo,
	uow db.UnitOfWork,
) ModificationService {
	return &modificationService{
		projects:  projects,
		lines:     lines,
		mods:      mods,
		sequences: sequences,
		rollups:   rollups,
		uow:       uow,
	}
}

// Create opens a draft modification with its single line against a budget
// line in the project. The parent insert and the line insert are separate
// statements; a failed line insert compensates by removing the parent so no
// empty modification survives.
func (s *modificationService) Create(ctx context.Context, projectID, actor string, in ModificationInput) (*ModificationView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	id, err := parseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	if in.BudgetLineID == "" {
		return nil, fmt.Errorf("%w: missing budgetLineId", domain.ErrInvalidInput)
	}
	if in.Amount == 0 || !validAmount(in.Amount) {
		return nil, fmt.Errorf("%w: amount must be a non-zero finite number", domain.ErrInvalidInput)
	}
	if _, err := requireUnlockedProject(ctx, s.projects, id); err != nil {
		return nil, err
	}
	line, err := s.lines.GetInProject(ctx, id, in.BudgetLineID)
	if err != nil {
		return nil, err
	}

	seq, err := s.sequences.NextModificationSeq(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	now := time.Now().UTC()
	mod := &domain.BudgetModification{
		ID:            uuid.New().String(),
		ProjectID:     id,
		Number:        repository.FormatModificationNumber(seq),
		Title:         in.Title,
		Reason:        in.Reason,
		Status:        domain.ModificationDraft,
		EffectiveDate: in.EffectiveDate,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.mods.Create(ctx, mod); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	modLine := &domain.BudgetModLine{
		ID:             uuid.New().String(),
		ModificationID: mod.ID,
		ProjectID:      id,
		CostCodeID:     line.CostCodeID,
		CostTypeID:     line.CostTypeID,
		SubJobID:       line.SubJobID,
		Amount:         in.Amount,
		Description:    in.Description,
	}
	if err := s.mods.CreateLine(ctx, modLine); err != nil {
		if delErr := s.mods.Delete(ctx, mod.ID); delErr != nil {
			return nil, fmt.Errorf("%w: line insert failed (%v) and parent cleanup failed (%v)", domain.ErrPersistence, err, delErr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return s.view(mod, []domain.BudgetModLine{*modLine}), nil
}

func (s *modificationService) List(ctx context.Context, projectID string, filter ModificationListFilter) ([]*ModificationView, error) {
	id, err := parseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		return nil, err
	}

	repoFilter := repository.ModificationFilter{}
	if filter.Status != "" {
		status := domain.ModificationStatus(filter.Status)
		switch status {
		case domain.ModificationDraft, domain.ModificationPending, domain.ModificationApproved, domain.ModificationVoid:
			repoFilter.Status = status
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
		}
	}
	if filter.BudgetLineID != "" {
		line, err := s.lines.GetInProject(ctx, id, filter.BudgetLineID)
		if err != nil {
			return nil, err
		}
		repoFilter.CostCodeID = line.CostCodeID
		repoFilter.CostTypeID = line.CostTypeID
	}

	mods, err := s.mods.List(ctx, id, repoFilter)
	if err != nil {
		return nil, err
	}
	out := make([]*ModificationView, 0, len(mods))
	for _, mod := range mods {
		lines, err := s.mods.ListLines(ctx, mod.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, s.view(mod, lines))
	}
	return out, nil
}

// Transition applies a workflow action. The status write is a conditional
// update keyed on the status the caller observed, so a concurrent transition
// that lands first turns this one into an invalid-transition error instead of
// a lost update. Transitions entering or leaving approved refresh the rollup
// cache in the same transaction.
func (s *modificationService) Transition(ctx context.Context, projectID, actor, modificationID, action string) (*ModificationView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	id, err := parseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	act, err := domain.ParseAction(action)
	if err != nil {
		return nil, err
	}
	if modificationID == "" {
		return nil, fmt.Errorf("%w: missing modificationId", domain.ErrInvalidInput)
	}
	if _, err := requireUnlockedProject(ctx, s.projects, id); err != nil {
		return nil, err
	}

	mod, err := s.getInProject(ctx, id, modificationID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextStatus(mod.Status, act)
	if err != nil {
		return nil, err
	}

	// Approval stamps an effective date if none was set at creation.
	var effective *time.Time
	if act == domain.ActionApprove && mod.EffectiveDate == nil {
		now := time.Now().UTC()
		effective = &now
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txMods := repository.NewSQLiteModificationRepo(tx)
		ok, err := txMods.UpdateStatus(ctx, mod.ID, mod.Status, next, effective)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if !ok {
			// Lost the race: report against whatever status won.
			current, err := txMods.GetByID(ctx, mod.ID)
			if err != nil {
				return err
			}
			return &domain.InvalidTransitionError{
				Action:        act,
				CurrentStatus: current.Status,
				ValidActions:  domain.ValidActions(current.Status),
			}
		}
		if domain.TouchesApproved(mod.Status, next) {
			txRollups := repository.NewSQLiteRollupRepo(tx)
			if err := txRollups.Refresh(ctx, id); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.mods.GetByID(ctx, mod.ID)
	if err != nil {
		return nil, err
	}
	lines, err := s.mods.ListLines(ctx, mod.ID)
	if err != nil {
		return nil, err
	}
	return s.view(updated, lines), nil
}

// Delete removes a draft modification and its lines. Anything past draft is
// part of the audit trail and must be voided instead.
func (s *modificationService) Delete(ctx context.Context, projectID, actor, modificationID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	id, err := parseProjectID(projectID)
	if err != nil {
		return err
	}
	if modificationID == "" {
		return fmt.Errorf("%w: missing modificationId", domain.ErrInvalidInput)
	}
	if _, err := requireUnlockedProject(ctx, s.projects, id); err != nil {
		return err
	}

	mod, err := s.getInProject(ctx, id, modificationID)
	if err != nil {
		return err
	}
	if !mod.Deletable() {
		return fmt.Errorf("%w: only draft modifications can be deleted; void %s instead", domain.ErrInvalidInput, mod.Number)
	}

	// Lines reference the parent, so they go first.
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txMods := repository.NewSQLiteModificationRepo(tx)
		if err := txMods.DeleteLines(ctx, mod.ID); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if err := txMods.Delete(ctx, mod.ID); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		return nil
	})
}

// getInProject loads a modification and hides it when it belongs to a
// different project.
func (s *modificationService) getInProject(ctx context.Context, projectID int64, modificationID string) (*domain.BudgetModification, error) {
	mod, err := s.mods.GetByID(ctx, modificationID)
	if err != nil {
		return nil, err
	}
	if mod.ProjectID != projectID {
		return nil, fmt.Errorf("budget modification: %w", domain.ErrNotFound)
	}
	return mod, nil
}

func (s *modificationService) view(mod *domain.BudgetModification, lines []domain.BudgetModLine) *ModificationView {
	v := &ModificationView{
		ID:            mod.ID,
		ProjectID:     mod.ProjectID,
		Number:        mod.Number,
		Title:         mod.Title,
		Reason:        mod.Reason,
		Status:        string(mod.Status),
		EffectiveDate: mod.EffectiveDate,
		CreatedBy:     mod.CreatedBy,
		CreatedAt:     mod.CreatedAt,
		UpdatedAt:     mod.UpdatedAt,
		Lines:         make([]ModificationLineView, 0, len(lines)),
		ValidActions:  actionStrings(domain.ValidActions(mod.Status)),
	}
	for _, l := range lines {
		v.Amount += l.Amount
		v.Lines = append(v.Lines, ModificationLineView{
			ID:          l.ID,
			CostCodeID:  l.CostCodeID,
			CostTypeID:  l.CostTypeID,
			SubJobID:    l.SubJobID,
			Amount:      l.Amount,
			Description: l.Description,
		})
	}
	return v
}
