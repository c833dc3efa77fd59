package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event types pushed to dashboards.
const (
	EventChangeStatus    = "changeStatus"
	EventAssignment      = "assignment"
	EventOrderUpdated    = "orderUpdated"
	EventNewNotification = "newNotification"
	EventMessage         = "message"
)

var adminRoles = []workflow.AccountType{workflow.SuperAdmin, workflow.Admin}

// Event is a change announcement before it is persisted to the outbox.
type Event struct {
	Type    string
	OrderID *uint
	Version uint
	Payload interface{}
	Users   []uint
	Roles   []workflow.AccountType
}

// Emitter records events in the outbox inside the caller's transaction, so an
// event exists if and only if the change it describes was committed.
type Emitter struct {
	now func() time.Time
}

// NewEmitter creates an emitter using the wall clock
func NewEmitter() *Emitter {
	return &Emitter{now: time.Now}
}

// Emit writes ev to the outbox using tx
func (e *Emitter) Emit(tx *gorm.DB, ev Event) (*models.OutboxEvent, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", ev.Type, err)
	}

	row := &models.OutboxEvent{
		EventID:      uuid.NewString(),
		EventType:    ev.Type,
		OrderID:      ev.OrderID,
		OrderVersion: ev.Version,
		Payload:      datatypes.JSON(payload),
		Recipients: datatypes.NewJSONType(models.EventRecipients{
			Users: dedupeUsers(ev.Users),
			Roles: dedupeRoles(ev.Roles),
		}),
		CreatedAt: e.now(),
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to write outbox event: %w", err)
	}
	return row, nil
}

// Notify stores an inbox entry for one user and emits newNotification to them
func (e *Emitter) Notify(tx *gorm.DB, userID uint, orderID *uint, version uint, kind, message string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    userID,
		Type:      kind,
		Message:   message,
		OrderID:   orderID,
		CreatedAt: e.now(),
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	_, err := e.Emit(tx, Event{
		Type:    EventNewNotification,
		OrderID: orderID,
		Version: version,
		Payload: n,
		Users:   []uint{userID},
	})
	return n, err
}

// NotifyRole notifies every active user holding role
func (e *Emitter) NotifyRole(tx *gorm.DB, role workflow.AccountType, orderID *uint, version uint, kind, message string) error {
	var userIDs []uint
	if err := tx.Model(&models.User{}).
		Where("account_type = ? AND is_active = ?", string(role), true).
		Pluck("id", &userIDs).Error; err != nil {
		return err
	}
	for _, id := range userIDs {
		if _, err := e.Notify(tx, id, orderID, version, kind, message); err != nil {
			return err
		}
	}
	return nil
}

func dedupeUsers(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func dedupeRoles(roles []workflow.AccountType) []workflow.AccountType {
	seen := make(map[workflow.AccountType]bool, len(roles))
	out := make([]workflow.AccountType, 0, len(roles))
	for _, r := range roles {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
