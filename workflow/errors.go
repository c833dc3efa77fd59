package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotPermitted      = errors.New("actor not permitted to apply transition")
	ErrNotAssignee       = errors.New("order is assigned to another user")
	ErrRoleMismatch      = errors.New("role mismatch")
)

// TransitionError describes a rejected status change. Reason is one of the
// sentinel errors above.
type TransitionError struct {
	From   Status
	To     Status
	Actor  AccountType
	Reason error
}

func (e *TransitionError) Error() string {
	switch {
	case errors.Is(e.Reason, ErrNotPermitted):
		return fmt.Sprintf("%s cannot move an order from %s to %s", e.Actor, e.From, e.To)
	case errors.Is(e.Reason, ErrNotAssignee):
		return fmt.Sprintf("cannot move order from %s to %s: %v", e.From, e.To, e.Reason)
	default:
		return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
	}
}

func (e *TransitionError) Unwrap() error {
	return e.Reason
}

// RoleMismatchError is returned when a user of the wrong account type is bound
// to an order.
type RoleMismatchError struct {
	Status   Status
	Required AccountType
	Actual   AccountType
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("orders in %s must be assigned to a %s user, got %s", e.Status, e.Required, e.Actual)
}

func (e *RoleMismatchError) Unwrap() error {
	return ErrRoleMismatch
}
