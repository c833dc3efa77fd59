package models

import (
	"time"
)

// TransitionRequest remembers a client request id so that replays of the same
// status change or assignment are applied once.
type TransitionRequest struct {
	RequestID   string    `gorm:"primaryKey;size:64" json:"requestId"`
	OrderID     uint      `gorm:"not null;index" json:"orderId"`
	Fingerprint string    `gorm:"not null" json:"fingerprint"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for the TransitionRequest model
func (TransitionRequest) TableName() string {
	return "transition_requests"
}
