package models

import (
	"time"
)

// Notification is an entry in a user's inbox
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Type      string    `gorm:"type:varchar(32);not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	OrderID   *uint     `gorm:"index" json:"orderId,omitempty"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
