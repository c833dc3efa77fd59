package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signworks/orderflow-api/models"
	"gorm.io/gorm"
)

// ChallanItemInput is one dispatched line as submitted
type ChallanItemInput struct {
	Description string
	Quantity    float64
	Unit        string
}

// ChallanInput carries a delivery challan as submitted
type ChallanInput struct {
	ChallanNumber string
	OrderID       uint
	DeliverTo     string
	Address       string
	DispatchDate  *time.Time
	VehicleNumber string
	Transporter   string
	Items         []ChallanItemInput
	Notes         string
}

// ChallanService manages delivery challans
type ChallanService struct {
	db *gorm.DB
}

// NewChallanService creates a challan service bound to db
func NewChallanService(db *gorm.DB) *ChallanService {
	return &ChallanService{db: db}
}

func buildChallan(in ChallanInput, ch *models.Challan) error {
	if len(in.Items) == 0 {
		return &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	if strings.TrimSpace(in.DeliverTo) == "" {
		return &ValidationError{Field: "deliverTo", Message: "is required"}
	}

	items := make([]models.ChallanItem, 0, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.Description) == "" {
			return &ValidationError{Field: fmt.Sprintf("items[%d].description", i), Message: "is required"}
		}
		if it.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be greater than zero"}
		}
		unit := strings.TrimSpace(it.Unit)
		if unit == "" {
			unit = "pcs"
		}
		items = append(items, models.ChallanItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			Unit:        unit,
		})
	}

	ch.OrderID = in.OrderID
	ch.DeliverTo = strings.TrimSpace(in.DeliverTo)
	ch.Address = strings.TrimSpace(in.Address)
	if in.DispatchDate != nil {
		ch.DispatchDate = *in.DispatchDate
	} else if ch.DispatchDate.IsZero() {
		ch.DispatchDate = time.Now()
	}
	ch.VehicleNumber = strings.ToUpper(strings.TrimSpace(in.VehicleNumber))
	ch.Transporter = strings.TrimSpace(in.Transporter)
	ch.Items = items
	ch.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// ListChallans returns challans, newest first, optionally for one order
func (s *ChallanService) ListChallans(ctx context.Context, orderID *uint) ([]models.Challan, error) {
	query := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Order("id DESC")
	if orderID != nil {
		query = query.Where("order_id = ?", *orderID)
	}
	var challans []models.Challan
	if err := query.Find(&challans).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch challans: %w", err)
	}
	return challans, nil
}

// GetChallan loads a challan with its items and order
func (s *ChallanService) GetChallan(ctx context.Context, id uint) (*models.Challan, error) {
	var ch models.Challan
	if err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Order").
		Preload("Order.Customer").
		First(&ch, id).Error; err != nil {
		return nil, notFoundOr(err, "challan", id)
	}
	return &ch, nil
}

// CreateChallan stores a challan for an existing order
func (s *ChallanService) CreateChallan(ctx context.Context, createdBy uint, in ChallanInput) (*models.Challan, error) {
	customer, err := orderCustomer(s.db.WithContext(ctx), in.OrderID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.DeliverTo) == "" {
		in.DeliverTo = displayName(customer)
	}
	if strings.TrimSpace(in.Address) == "" {
		in.Address = customer.Address
	}

	ch := &models.Challan{CreatedByID: createdBy}
	if err := buildChallan(in, ch); err != nil {
		return nil, err
	}
	ch.ChallanNumber = strings.TrimSpace(in.ChallanNumber)
	if ch.ChallanNumber == "" {
		ch.ChallanNumber = documentNumber("DC", ch.DispatchDate)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOrder(tx, in.OrderID); err != nil {
			return err
		}
		if err := tx.Create(ch).Error; err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Message: fmt.Sprintf("challan number %s already exists", ch.ChallanNumber)}
			}
			return fmt.Errorf("failed to create challan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetChallan(ctx, ch.ID)
}

// UpdateChallan replaces the challan contents
func (s *ChallanService) UpdateChallan(ctx context.Context, id uint, in ChallanInput) (*models.Challan, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch models.Challan
		if err := tx.First(&ch, id).Error; err != nil {
			return notFoundOr(err, "challan", id)
		}
		if in.OrderID == 0 {
			in.OrderID = ch.OrderID
		}
		if strings.TrimSpace(in.DeliverTo) == "" {
			in.DeliverTo = ch.DeliverTo
		}
		if strings.TrimSpace(in.Address) == "" {
			in.Address = ch.Address
		}
		if _, err := loadOrder(tx, in.OrderID); err != nil {
			return err
		}
		if err := buildChallan(in, &ch); err != nil {
			return err
		}
		if number := strings.TrimSpace(in.ChallanNumber); number != "" {
			ch.ChallanNumber = number
		}

		if err := tx.Where("challan_id = ?", ch.ID).Delete(&models.ChallanItem{}).Error; err != nil {
			return err
		}
		items := ch.Items
		ch.Items = nil
		if err := tx.Save(&ch).Error; err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Message: fmt.Sprintf("challan number %s already exists", ch.ChallanNumber)}
			}
			return err
		}
		for i := range items {
			items[i].ChallanID = ch.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetChallan(ctx, id)
}

// DeleteChallan removes a challan and its items
func (s *ChallanService) DeleteChallan(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Challan{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Resource: "challan", ID: id}
		}
		return tx.Where("challan_id = ?", id).Delete(&models.ChallanItem{}).Error
	})
}
