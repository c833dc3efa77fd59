package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a staff comment in an order conversation
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"orderId"`
	Order     Order          `gorm:"foreignKey:OrderID" json:"-"`
	SenderID  uint           `gorm:"not null;index" json:"senderId"`
	Sender    User           `gorm:"foreignKey:SenderID" json:"sender"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
