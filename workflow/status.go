// Package workflow holds the order status state machine: the registry of known
// statuses, the stage that owns each status, and the transition table.
package workflow

import (
	"fmt"
	"strings"
)

// Status is the pipeline state of an order.
type Status string

const (
	GraphicsPending    Status = "graphics_pending"
	GraphicsInProgress Status = "graphics_in_progress"
	GraphicsCompleted  Status = "graphics_completed"
	AdminRejected      Status = "admin_rejected"
	CutoutPending      Status = "cutout_pending"
	CutoutInProgress   Status = "cutout_in_progress"
	CutoutCompleted    Status = "cutout_completed"
	AccountsPending    Status = "accounts_pending"
	AccountsBilled     Status = "accounts_billed"
	AccountsPaid       Status = "accounts_paid"
	OrderCompleted     Status = "order_completed"
)

// InitialStatus is the status every new order starts in.
const InitialStatus = GraphicsPending

// Stage groups statuses by the department working on the order.
type Stage string

const (
	StageGraphics Stage = "graphics"
	StageReview   Stage = "review"
	StageCutout   Stage = "cutout"
	StageAccounts Stage = "accounts"
	StageDisplay  Stage = "display"
)

type statusInfo struct {
	stage    Stage
	owner    AccountType
	terminal bool
}

// registry is ordered by pipeline position through statusOrder.
var registry = map[Status]statusInfo{
	GraphicsPending:    {stage: StageGraphics, owner: Graphics},
	GraphicsInProgress: {stage: StageGraphics, owner: Graphics},
	GraphicsCompleted:  {stage: StageReview, owner: Admin},
	AdminRejected:      {stage: StageReview, owner: Admin, terminal: true},
	CutoutPending:      {stage: StageCutout, owner: Cutout},
	CutoutInProgress:   {stage: StageCutout, owner: Cutout},
	CutoutCompleted:    {stage: StageAccounts, owner: Accounts},
	AccountsPending:    {stage: StageAccounts, owner: Accounts},
	AccountsBilled:     {stage: StageAccounts, owner: Accounts},
	AccountsPaid:       {stage: StageAccounts, owner: Accounts},
	OrderCompleted:     {stage: StageDisplay, owner: Display, terminal: true},
}

var statusOrder = []Status{
	GraphicsPending,
	GraphicsInProgress,
	GraphicsCompleted,
	AdminRejected,
	CutoutPending,
	CutoutInProgress,
	CutoutCompleted,
	AccountsPending,
	AccountsBilled,
	AccountsPaid,
	OrderCompleted,
}

// AllStatuses returns every known status in pipeline order.
func AllStatuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// IsKnownStatus reports whether s is one of the registered statuses.
func IsKnownStatus(s Status) bool {
	_, ok := registry[s]
	return ok
}

// ParseStatus converts a raw string into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !IsKnownStatus(s) {
		return "", &UnknownStatusError{Value: raw}
	}
	return s, nil
}

// OwnerRole returns the account type that acts on an order holding status s.
func OwnerRole(s Status) (AccountType, error) {
	info, ok := registry[s]
	if !ok {
		return "", &UnknownStatusError{Value: string(s)}
	}
	return info.owner, nil
}

// StageOf returns the pipeline stage of s.
func StageOf(s Status) (Stage, error) {
	info, ok := registry[s]
	if !ok {
		return "", &UnknownStatusError{Value: string(s)}
	}
	return info.stage, nil
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return registry[s].terminal
}

// Validate returns an error for unregistered statuses.
func (s Status) Validate() error {
	if !IsKnownStatus(s) {
		return &UnknownStatusError{Value: string(s)}
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

// StatusesOwnedBy lists the statuses whose stage owner is t.
func StatusesOwnedBy(t AccountType) []Status {
	var out []Status
	for _, s := range statusOrder {
		if ownerMatches(registry[s].owner, t) {
			out = append(out, s)
		}
	}
	return out
}

// UnknownStatusError is returned for status strings missing from the registry.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown status %q", e.Value)
}

func (e *UnknownStatusError) Unwrap() error {
	return ErrUnknownStatus
}
