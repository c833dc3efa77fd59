package workflow

// Actor is the user requesting a change.
type Actor struct {
	ID   uint
	Role AccountType
}

// transitions maps every legal edge to the non-admin roles allowed to apply it.
// SuperAdmin and Admin may apply any legal edge.
var transitions = map[Status]map[Status][]AccountType{
	GraphicsPending: {
		GraphicsInProgress: {Graphics},
	},
	GraphicsInProgress: {
		GraphicsCompleted: {Graphics},
	},
	GraphicsCompleted: {
		CutoutPending: {},
		AdminRejected: {},
	},
	CutoutPending: {
		CutoutInProgress: {Cutout},
	},
	CutoutInProgress: {
		CutoutCompleted: {Cutout},
	},
	CutoutCompleted: {
		AccountsBilled: {Accounts},
	},
	// accounts_pending is a known status with no edges in or out.
	AccountsPending: {},
	AccountsBilled: {
		AccountsPaid: {Accounts},
	},
	AccountsPaid: {
		OrderCompleted: {Accounts, Display},
	},
	AdminRejected:  {},
	OrderCompleted: {},
}

// IsLegalEdge reports whether from -> to appears in the transition table.
func IsLegalEdge(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// NextStatuses lists the statuses reachable from s in one step, in pipeline order.
func NextStatuses(s Status) []Status {
	var out []Status
	for _, candidate := range statusOrder {
		if IsLegalEdge(s, candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

// StatusesVisibleTo lists the statuses t owns plus those t may move an order
// out of, in pipeline order.
func StatusesVisibleTo(t AccountType) []Status {
	var out []Status
	for _, s := range statusOrder {
		if ownerMatches(registry[s].owner, t) || canLeave(s, t) {
			out = append(out, s)
		}
	}
	return out
}

func canLeave(s Status, t AccountType) bool {
	for _, roles := range transitions[s] {
		for _, r := range roles {
			if r == t {
				return true
			}
		}
	}
	return false
}

// AllowedNext lists the statuses actor may move an order in s to.
func AllowedNext(s Status, actor Actor, assigneeID *uint) []Status {
	var out []Status
	for _, candidate := range NextStatuses(s) {
		if CanTransition(s, candidate, actor, assigneeID) == nil {
			out = append(out, candidate)
		}
	}
	return out
}

// CanTransition decides whether actor may move an order from current to requested.
// assigneeID is the user the order is currently bound to, if any.
func CanTransition(current, requested Status, actor Actor, assigneeID *uint) error {
	if !IsKnownStatus(current) {
		return &UnknownStatusError{Value: string(current)}
	}
	if !IsKnownStatus(requested) {
		return &UnknownStatusError{Value: string(requested)}
	}

	roles, ok := transitions[current][requested]
	if !ok {
		return &TransitionError{From: current, To: requested, Actor: actor.Role, Reason: ErrInvalidTransition}
	}

	if actor.Role.IsAdmin() {
		return nil
	}

	permitted := false
	for _, r := range roles {
		if r == actor.Role {
			permitted = true
			break
		}
	}
	if !permitted {
		return &TransitionError{From: current, To: requested, Actor: actor.Role, Reason: ErrNotPermitted}
	}

	if assigneeID != nil && *assigneeID != actor.ID {
		return &TransitionError{From: current, To: requested, Actor: actor.Role, Reason: ErrNotAssignee}
	}

	return nil
}

// CanAssign checks that a user of type assignee may be bound to an order in s.
func CanAssign(s Status, assignee AccountType) error {
	owner, err := OwnerRole(s)
	if err != nil {
		return err
	}
	if !ownerMatches(owner, assignee) {
		return &RoleMismatchError{Status: s, Required: owner, Actual: assignee}
	}
	return nil
}

// AssignmentSurvives reports whether an assignee of type t remains valid after the
// order moves into s.
func AssignmentSurvives(s Status, t AccountType) bool {
	return CanAssign(s, t) == nil
}
