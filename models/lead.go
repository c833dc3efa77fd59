package models

import (
	"time"

	"gorm.io/gorm"
)

// LeadStatus tracks a prospect through the sales funnel.
type LeadStatus string

const (
	LeadNew       LeadStatus = "New"
	LeadContacted LeadStatus = "Contacted"
	LeadQualified LeadStatus = "Qualified"
	LeadConverted LeadStatus = "Converted"
	LeadLost      LeadStatus = "Lost"
)

// LeadStatuses lists every lead status.
var LeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost}

// IsValid reports whether s is a known lead status.
func (s LeadStatus) IsValid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Lead is a prospective customer
type Lead struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Email       string         `gorm:"index" json:"email"`
	Phone       string         `json:"phone"`
	Company     string         `json:"company"`
	Source      string         `json:"source"`
	Notes       string         `gorm:"type:text" json:"notes"`
	Status      LeadStatus     `gorm:"type:varchar(16);not null;default:'New';index" json:"status"`
	CustomerID  *uint          `gorm:"index" json:"customerId,omitempty"` // set once converted
	ConvertedAt *time.Time     `json:"convertedAt,omitempty"`
	CreatedByID uint           `json:"createdById"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Lead model
func (Lead) TableName() string {
	return "leads"
}
