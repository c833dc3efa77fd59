package models

import (
	"time"

	"gorm.io/gorm"
)

// Invoice is a tax invoice raised against an order
type Invoice struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	InvoiceNumber string         `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	OrderID       uint           `gorm:"not null;index" json:"orderId"`
	Order         *Order         `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	BillToName    string         `gorm:"not null" json:"billToName"`
	BillToAddress string         `gorm:"type:text" json:"billToAddress"`
	BillToGSTIN   string         `json:"billToGstin"`
	IssueDate     time.Time      `json:"issueDate"`
	Items         []InvoiceItem  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	IncludeCGST   bool           `gorm:"not null" json:"includeCgst"`
	IncludeSGST   bool           `gorm:"not null" json:"includeSgst"`
	CGSTRate      float64        `gorm:"type:decimal(5,2);not null" json:"cgstRate"`
	SGSTRate      float64        `gorm:"type:decimal(5,2);not null" json:"sgstRate"`
	Subtotal      float64        `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	CGSTAmount    float64        `gorm:"type:decimal(12,2);not null" json:"cgstAmount"`
	SGSTAmount    float64        `gorm:"type:decimal(12,2);not null" json:"sgstAmount"`
	Total         float64        `gorm:"type:decimal(12,2);not null" json:"total"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedByID   uint           `json:"createdById"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is one billed line
type InvoiceItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	InvoiceID   uint    `gorm:"not null;index" json:"invoiceId"`
	Description string  `gorm:"not null" json:"description"`
	HSNCode     string  `json:"hsnCode"`
	Quantity    float64 `gorm:"type:decimal(12,2);not null" json:"quantity"`
	Rate        float64 `gorm:"type:decimal(12,2);not null" json:"rate"`
	Amount      float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
}

// TableName specifies the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
