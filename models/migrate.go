package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&Lead{},
		&Order{},
		&OrderFile{},
		&OrderLog{},
		&Message{},
		&TransitionRequest{},
		&Notification{},
		&OutboxEvent{},
		&OutboxDelivery{},
		&Invoice{},
		&InvoiceItem{},
		&Challan{},
		&ChallanItem{},
	}
}

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
