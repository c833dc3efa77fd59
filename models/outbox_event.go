package models

import (
	"time"

	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/datatypes"
)

// EventRecipients addresses an outbox event to users and roles.
type EventRecipients struct {
	Users []uint                 `json:"users,omitempty"`
	Roles []workflow.AccountType `json:"roles,omitempty"`
}

// OutboxEvent is a notification written in the same transaction as the change it
// announces and relayed to subscribers afterwards. Attempts and LastError
// summarise failures across sinks; DispatchedAt is set once every sink has
// settled the event.
type OutboxEvent struct {
	ID           uint                                `gorm:"primaryKey" json:"id"`
	EventID      string                              `gorm:"uniqueIndex;not null" json:"eventId"`
	EventType    string                              `gorm:"type:varchar(32);not null" json:"eventType"`
	OrderID      *uint                               `gorm:"index" json:"orderId,omitempty"`
	OrderVersion uint                                `json:"version"`
	Payload      datatypes.JSON                      `json:"payload"`
	Recipients   datatypes.JSONType[EventRecipients] `json:"recipients"`
	Attempts     int                                 `gorm:"not null;default:0" json:"attempts"`
	LastError    string                              `gorm:"type:text" json:"lastError,omitempty"`
	DispatchedAt *time.Time                          `gorm:"index" json:"dispatchedAt,omitempty"`
	CreatedAt    time.Time                           `json:"createdAt"`
}

// TableName specifies the table name for the OutboxEvent model
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
