package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_ValidTransitions(t *testing.T) {
	tests := []struct {
		from   ModificationStatus
		action ModificationAction
		want   ModificationStatus
	}{
		{ModificationDraft, ActionSubmit, ModificationPending},
		{ModificationPending, ActionApprove, ModificationApproved},
		{ModificationPending, ActionReject, ModificationDraft},
		{ModificationApproved, ActionVoid, ModificationVoid},
	}
	for _, tt := range tests {
		got, err := NextStatus(tt.from, tt.action)
		require.NoError(t, err, "%s from %s", tt.action, tt.from)
		assert.Equal(t, tt.want, got)
	}
}

func TestNextStatus_RejectsEveryPairOutsideTheTable(t *testing.T) {
	statuses := []ModificationStatus{ModificationDraft, ModificationPending, ModificationApproved, ModificationVoid}
	actions := []ModificationAction{ActionSubmit, ActionApprove, ActionReject, ActionVoid}

	valid := map[ModificationStatus]ModificationAction{
		ModificationDraft:    ActionSubmit,
		ModificationApproved: ActionVoid,
	}

	for _, status := range statuses {
		for _, action := range actions {
			if valid[status] == action {
				continue
			}
			if status == ModificationPending && (action == ActionApprove || action == ActionReject) {
				continue
			}
			_, err := NextStatus(status, action)
			require.Error(t, err, "%s from %s should fail", action, status)

			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, status, invalid.CurrentStatus)
			assert.Equal(t, action, invalid.Action)
		}
	}
}

func TestNextStatus_VoidIsTerminal(t *testing.T) {
	for _, action := range []ModificationAction{ActionSubmit, ActionApprove, ActionReject, ActionVoid} {
		_, err := NextStatus(ModificationVoid, action)
		require.Error(t, err)

		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Empty(t, invalid.ValidActions)
	}
}

func TestValidActions_DerivedFromTable(t *testing.T) {
	assert.Equal(t, []ModificationAction{ActionSubmit}, ValidActions(ModificationDraft))
	assert.Equal(t, []ModificationAction{ActionApprove, ActionReject}, ValidActions(ModificationPending))
	assert.Equal(t, []ModificationAction{ActionVoid}, ValidActions(ModificationApproved))
	assert.Empty(t, ValidActions(ModificationVoid))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("approve")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	_, err = ParseAction("escalate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTouchesApproved(t *testing.T) {
	assert.True(t, TouchesApproved(ModificationPending, ModificationApproved))
	assert.True(t, TouchesApproved(ModificationApproved, ModificationVoid))
	assert.False(t, TouchesApproved(ModificationDraft, ModificationPending))
	assert.False(t, TouchesApproved(ModificationPending, ModificationDraft))
}

func TestDeletable(t *testing.T) {
	m := &BudgetModification{Status: ModificationDraft}
	assert.True(t, m.Deletable())
	for _, s := range []ModificationStatus{ModificationPending, ModificationApproved, ModificationVoid} {
		m.Status = s
		assert.False(t, m.Deletable(), string(s))
	}
}
