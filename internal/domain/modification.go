package domain

import (
	"fmt"
	"time"
)

// BudgetModification is the aggregate root of the approval workflow. Its
// lines only affect budget totals indirectly, through the rollup cache,
// while status is approved.
type BudgetModification struct {
	ID            string
	ProjectID     int64
	Number        string
	Title         string
	Reason        string
	Status        ModificationStatus
	EffectiveDate *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BudgetModLine is a single cost-code amount inside a modification.
type BudgetModLine struct {
	ID             string
	ModificationID string
	ProjectID      int64
	CostCodeID     string
	CostTypeID     string
	SubJobID       string
	Amount         float64
	Description    string
}

// transition holds the single (from, to) pair permitted for an action. The
// whole workflow is this table; valid-action hints are derived from it by
// reversal rather than being maintained separately.
type transition struct {
	From ModificationStatus
	To   ModificationStatus
}

var transitions = map[ModificationAction]transition{
	ActionSubmit:  {From: ModificationDraft, To: ModificationPending},
	ActionApprove: {From: ModificationPending, To: ModificationApproved},
	ActionReject:  {From: ModificationPending, To: ModificationDraft},
	ActionVoid:    {From: ModificationApproved, To: ModificationVoid},
}

// actionOrder keeps derived action lists deterministic.
var actionOrder = []ModificationAction{ActionSubmit, ActionApprove, ActionReject, ActionVoid}

// ParseAction validates an action string from the wire.
func ParseAction(s string) (ModificationAction, error) {
	a := ModificationAction(s)
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("%w: action must be one of: submit, approve, reject, void", ErrInvalidInput)
	}
	return a, nil
}

// ValidActions returns the actions accepted from the given status, derived by
// reversing the transition table. Void is terminal and yields none.
func ValidActions(status ModificationStatus) []ModificationAction {
	var actions []ModificationAction
	for _, a := range actionOrder {
		if transitions[a].From == status {
			actions = append(actions, a)
		}
	}
	return actions
}

// NextStatus resolves the target status for applying action to a modification
// currently in from. An (action, from) pair outside the table returns an
// *InvalidTransitionError carrying the currently valid actions.
func NextStatus(from ModificationStatus, action ModificationAction) (ModificationStatus, error) {
	t, ok := transitions[action]
	if !ok || t.From != from {
		return "", &InvalidTransitionError{
			Action:        action,
			CurrentStatus: from,
			ValidActions:  ValidActions(from),
		}
	}
	return t.To, nil
}

// TouchesApproved reports whether a transition enters or leaves the approved
// state and therefore requires a rollup refresh.
func TouchesApproved(from, to ModificationStatus) bool {
	return from == ModificationApproved || to == ModificationApproved
}

// Deletable reports whether the modification may be hard-deleted. Anything
// past draft must be voided instead so the audit trail survives.
func (m *BudgetModification) Deletable() bool {
	return m.Status == ModificationDraft
}
