package models

import (
	"strings"
	"time"

	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/gorm"
)

// User represents a staff account in the system
type User struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	FirstName    string               `gorm:"not null" json:"firstName"`
	LastName     string               `json:"lastName"`
	Email        string               `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string               `gorm:"not null" json:"-"`
	AccountType  workflow.AccountType `gorm:"type:varchar(32);not null;index" json:"accountType"`
	IsActive     bool                 `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt       `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
