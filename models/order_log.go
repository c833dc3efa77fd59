package models

import (
	"time"

	"github.com/signworks/orderflow-api/workflow"
)

// Log actions recorded against an order.
const (
	LogActionCreated       = "created"
	LogActionUpdated       = "updated"
	LogActionStatusChanged = "status_changed"
	LogActionAssigned      = "assigned"
	LogActionUnassigned    = "unassigned"
	LogActionDeleted       = "deleted"
	LogActionFileUploaded  = "file_uploaded"
)

// OrderLog is one entry of an order's audit trail
type OrderLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"orderId"`
	Action       string          `gorm:"type:varchar(32);not null" json:"action"`
	FromStatus   workflow.Status `gorm:"type:varchar(32)" json:"fromStatus,omitempty"`
	ToStatus     workflow.Status `gorm:"type:varchar(32)" json:"toStatus,omitempty"`
	AssignedToID *uint           `json:"assignedToId,omitempty"`
	ActorID      *uint           `gorm:"index" json:"actorId,omitempty"`
	Actor        *User           `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Message      string          `gorm:"type:text" json:"message"`
	CreatedAt    time.Time       `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for the OrderLog model
func (OrderLog) TableName() string {
	return "order_logs"
}
