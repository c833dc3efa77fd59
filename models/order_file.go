package models

import (
	"time"
)

// FileKind groups the files attached to an order.
type FileKind string

const (
	FileKindReference FileKind = "image"     // reference images supplied with the order
	FileKindImages    FileKind = "images"    // artwork produced by graphics
	FileKindCAD       FileKind = "cadFiles"  // cutting files
	FileKindText      FileKind = "textFiles" // briefs, notes, documents
)

// FileKinds lists every kind in display order.
var FileKinds = []FileKind{FileKindReference, FileKindImages, FileKindCAD, FileKindText}

// IsValid reports whether k is a known file kind.
func (k FileKind) IsValid() bool {
	for _, known := range FileKinds {
		if k == known {
			return true
		}
	}
	return false
}

// OrderFile is a document uploaded against an order
type OrderFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"orderId"`
	Kind         FileKind  `gorm:"type:varchar(16);not null;index" json:"kind"`
	StorageKey   string    `gorm:"not null" json:"-"`
	FileName     string    `gorm:"not null" json:"fileName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	UploadedByID uint      `gorm:"index" json:"uploadedById"`
	URL          string    `gorm:"-" json:"url,omitempty"` // computed, presigned or local URL
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName specifies the table name for the OrderFile model
func (OrderFile) TableName() string {
	return "order_files"
}
