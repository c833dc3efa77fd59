package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestCanTransition_UnlistedPairsAreInvalid(t *testing.T) {
	admin := Actor{ID: 1, Role: Admin}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			err := CanTransition(from, to, admin, nil)
			if IsLegalEdge(from, to) {
				assert.NoError(t, err, "%s -> %s should be legal for admins", from, to)
				continue
			}
			require.Error(t, err, "%s -> %s should be rejected", from, to)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "%s -> %s: got %v", from, to, err)
		}
	}
}

func TestCanTransition_TerminalStatesHaveNoExits(t *testing.T) {
	superAdmin := Actor{ID: 1, Role: SuperAdmin}

	for _, terminal := range []Status{AdminRejected, OrderCompleted} {
		assert.True(t, terminal.IsTerminal())
		assert.Empty(t, NextStatuses(terminal))
		for _, to := range AllStatuses() {
			err := CanTransition(terminal, to, superAdmin, nil)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	actor := Actor{ID: 1, Role: Admin}

	err := CanTransition("printing", CutoutPending, actor, nil)
	assert.ErrorIs(t, err, ErrUnknownStatus)

	err = CanTransition(GraphicsCompleted, "approved", actor, nil)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCanTransition_RoleGating(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		role    AccountType
		wantErr error
	}{
		{"graphics starts work", GraphicsPending, GraphicsInProgress, Graphics, nil},
		{"graphics finishes work", GraphicsInProgress, GraphicsCompleted, Graphics, nil},
		{"graphics cannot approve own work", GraphicsCompleted, CutoutPending, Graphics, ErrNotPermitted},
		{"admin approves", GraphicsCompleted, CutoutPending, Admin, nil},
		{"admin rejects", GraphicsCompleted, AdminRejected, Admin, nil},
		{"super admin rejects", GraphicsCompleted, AdminRejected, SuperAdmin, nil},
		{"cutout starts", CutoutPending, CutoutInProgress, Cutout, nil},
		{"cutout completes", CutoutInProgress, CutoutCompleted, Cutout, nil},
		{"cutout cannot bill", CutoutCompleted, AccountsBilled, Cutout, ErrNotPermitted},
		{"accounts bills", CutoutCompleted, AccountsBilled, Accounts, nil},
		{"accounts_pending has no way in", CutoutCompleted, AccountsPending, Accounts, ErrInvalidTransition},
		{"accounts_pending has no way out", AccountsPending, AccountsBilled, Admin, ErrInvalidTransition},
		{"accounts marks paid", AccountsBilled, AccountsPaid, Accounts, nil},
		{"accounts cannot touch cutout", CutoutPending, CutoutInProgress, Accounts, ErrNotPermitted},
		{"display completes", AccountsPaid, OrderCompleted, Display, nil},
		{"accounts completes", AccountsPaid, OrderCompleted, Accounts, nil},
		{"display cannot mark paid", AccountsBilled, AccountsPaid, Display, ErrNotPermitted},
		{"skipping cutout is illegal", GraphicsCompleted, CutoutCompleted, Admin, ErrInvalidTransition},
		{"moving backwards is illegal", CutoutInProgress, CutoutPending, Cutout, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, Actor{ID: 7, Role: tt.role}, nil)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCanTransition_AssigneeOnly(t *testing.T) {
	cutoutUser := Actor{ID: 5, Role: Cutout}

	assert.NoError(t, CanTransition(CutoutPending, CutoutInProgress, cutoutUser, uintPtr(5)))
	assert.NoError(t, CanTransition(CutoutPending, CutoutInProgress, cutoutUser, nil))

	err := CanTransition(CutoutPending, CutoutInProgress, cutoutUser, uintPtr(6))
	assert.ErrorIs(t, err, ErrNotAssignee)

	// admins act on behalf of whoever holds the order
	assert.NoError(t, CanTransition(CutoutPending, CutoutInProgress, Actor{ID: 1, Role: Admin}, uintPtr(6)))
}

func TestCanTransition_AccountsClosesItsOwnPaidOrder(t *testing.T) {
	accountsUser := Actor{ID: 8, Role: Accounts}
	require.NoError(t, CanAssign(AccountsPaid, accountsUser.Role))

	assert.NoError(t, CanTransition(AccountsPaid, OrderCompleted, accountsUser, uintPtr(8)))
	assert.NoError(t, CanTransition(AccountsPaid, OrderCompleted, Actor{ID: 9, Role: Display}, nil))
	assert.ErrorIs(t, CanTransition(AccountsPaid, OrderCompleted, Actor{ID: 9, Role: Display}, uintPtr(8)), ErrNotAssignee)

	assert.False(t, AssignmentSurvives(OrderCompleted, Accounts), "completion hands the order to display")
}

func TestCanTransition_RejectedOrderIsFinal(t *testing.T) {
	admin := Actor{ID: 1, Role: Admin}
	require.NoError(t, CanTransition(GraphicsCompleted, AdminRejected, admin, nil))

	for _, to := range AllStatuses() {
		assert.ErrorIs(t, CanTransition(AdminRejected, to, admin, nil), ErrInvalidTransition)
	}
}

func TestTransitionError_Message(t *testing.T) {
	err := CanTransition(GraphicsCompleted, CutoutPending, Actor{ID: 2, Role: Cutout}, nil)

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, GraphicsCompleted, te.From)
	assert.Equal(t, CutoutPending, te.To)
	assert.Equal(t, "Cutout cannot move an order from graphics_completed to cutout_pending", err.Error())
}

func TestAllowedNext(t *testing.T) {
	assert.ElementsMatch(t, []Status{CutoutPending, AdminRejected}, AllowedNext(GraphicsCompleted, Actor{ID: 1, Role: Admin}, nil))
	assert.Empty(t, AllowedNext(GraphicsCompleted, Actor{ID: 2, Role: Graphics}, nil))
	assert.Equal(t, []Status{AccountsBilled}, AllowedNext(CutoutCompleted, Actor{ID: 3, Role: Accounts}, nil))
	assert.Empty(t, NextStatuses(AccountsPending))
}

func TestStatusesVisibleTo(t *testing.T) {
	assert.Equal(t, []Status{AccountsPaid, OrderCompleted}, StatusesVisibleTo(Display), "display sees paid orders it may close")
	assert.Equal(t, []Status{CutoutCompleted, AccountsPending, AccountsBilled, AccountsPaid}, StatusesVisibleTo(Accounts))
	assert.Equal(t, []Status{CutoutPending, CutoutInProgress}, StatusesVisibleTo(Cutout))
}

func TestCanAssign(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		assignee AccountType
		wantErr  bool
	}{
		{"graphics user on graphics order", GraphicsPending, Graphics, false},
		{"cutout user on graphics order", GraphicsPending, Cutout, true},
		{"cutout user on cutout order", CutoutPending, Cutout, false},
		{"accounts user on finished cutout", CutoutCompleted, Accounts, false},
		{"cutout user on finished cutout", CutoutCompleted, Cutout, true},
		{"admin on review", GraphicsCompleted, Admin, false},
		{"super admin on review", GraphicsCompleted, SuperAdmin, false},
		{"accounts user on paid order", AccountsPaid, Accounts, false},
		{"display user on paid order", AccountsPaid, Display, true},
		{"display user on completed order", OrderCompleted, Display, false},
		{"graphics user on rejected order", AdminRejected, Graphics, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAssign(tt.status, tt.assignee)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrRoleMismatch)
			var rm *RoleMismatchError
			require.True(t, errors.As(err, &rm))
			assert.Equal(t, tt.assignee, rm.Actual)
		})
	}
}
