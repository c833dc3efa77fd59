package models

import "time"

// OutboxDelivery tracks one outbox event against one sink. A sink that fails
// only holds back its own queue.
type OutboxDelivery struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	OutboxEventID  uint       `gorm:"not null;uniqueIndex:idx_outbox_delivery_sink" json:"outboxEventId"`
	Sink           string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_outbox_delivery_sink" json:"sink"`
	Attempts       int        `gorm:"not null;default:0" json:"attempts"`
	LastError      string     `gorm:"type:text" json:"lastError,omitempty"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	DeadLetteredAt *time.Time `json:"deadLetteredAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the OutboxDelivery model
func (OutboxDelivery) TableName() string {
	return "outbox_deliveries"
}

// Settled reports whether the sink is done with the event, delivered or given up on.
func (d *OutboxDelivery) Settled() bool {
	return d != nil && (d.DeliveredAt != nil || d.DeadLetteredAt != nil)
}
