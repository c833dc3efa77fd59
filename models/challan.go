package models

import (
	"time"

	"gorm.io/gorm"
)

// Challan is a delivery note that travels with dispatched goods
type Challan struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ChallanNumber string         `gorm:"uniqueIndex;not null" json:"challanNumber"`
	OrderID       uint           `gorm:"not null;index" json:"orderId"`
	Order         *Order         `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	DeliverTo     string         `gorm:"not null" json:"deliverTo"`
	Address       string         `gorm:"type:text" json:"address"`
	DispatchDate  time.Time      `json:"dispatchDate"`
	VehicleNumber string         `json:"vehicleNumber"`
	Transporter   string         `json:"transporter"`
	Items         []ChallanItem  `gorm:"foreignKey:ChallanID;constraint:OnDelete:CASCADE" json:"items"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedByID   uint           `json:"createdById"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Challan model
func (Challan) TableName() string {
	return "challans"
}

// ChallanItem is one dispatched line
type ChallanItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ChallanID   uint    `gorm:"not null;index" json:"challanId"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    float64 `gorm:"type:decimal(12,2);not null" json:"quantity"`
	Unit        string  `json:"unit"`
}

// TableName specifies the table name for the ChallanItem model
func (ChallanItem) TableName() string {
	return "challan_items"
}
