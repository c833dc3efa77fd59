package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is a buyer orders are placed for
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"index" json:"email"`
	Phone     string         `json:"phone"`
	Company   string         `json:"company"`
	Address   string         `gorm:"type:text" json:"address"`
	GSTIN     string         `json:"gstin"`
	LeadID    *uint          `gorm:"index" json:"leadId,omitempty"` // set when created from a lead
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
