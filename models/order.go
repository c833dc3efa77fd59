package models

import (
	"time"

	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/gorm"
)

// Order represents a custom order moving through the production pipeline
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null" json:"orderId"`
	Status        workflow.Status `gorm:"type:varchar(32);not null;index" json:"status"`
	Version       uint            `gorm:"not null;default:1" json:"version"` // bumped on every mutation
	CustomerID    uint            `gorm:"not null;index" json:"customerId"`
	Customer      Customer        `gorm:"foreignKey:CustomerID" json:"customer"`
	AssignedToID  *uint           `gorm:"index" json:"assignedToId"`
	AssignedTo    *User           `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	Requirements  string          `gorm:"type:text" json:"requirements"`
	Dimensions    string          `json:"dimensions"`
	QueuePosition int             `gorm:"not null;default:0;index" json:"queuePosition"`
	CreatedByID   uint            `gorm:"index" json:"createdById"`
	Files         []OrderFile     `gorm:"foreignKey:OrderID" json:"files,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
