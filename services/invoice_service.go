package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signworks/orderflow-api/models"
	"gorm.io/gorm"
)

// DefaultGSTRate is applied when a CGST or SGST rate is not supplied
const DefaultGSTRate = 9.0

// InvoiceItemInput is one billed line as submitted
type InvoiceItemInput struct {
	Description string
	HSNCode     string
	Quantity    float64
	Rate        float64
}

// InvoiceInput carries an invoice as submitted
type InvoiceInput struct {
	InvoiceNumber string
	OrderID       uint
	BillToName    string
	BillToAddress string
	BillToGSTIN   string
	IssueDate     *time.Time
	Items         []InvoiceItemInput
	IncludeCGST   bool
	IncludeSGST   bool
	CGSTRate      *float64
	SGSTRate      *float64
	Notes         string
}

// InvoiceTotals are the amounts derived from items and tax flags
type InvoiceTotals struct {
	Subtotal   float64
	CGSTAmount float64
	SGSTAmount float64
	Total      float64
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeInvoiceTotals derives the subtotal, tax and total. Each line is
// rounded to paise before summing.
func ComputeInvoiceTotals(items []models.InvoiceItem, includeCGST, includeSGST bool, cgstRate, sgstRate float64) InvoiceTotals {
	var totals InvoiceTotals
	for _, item := range items {
		totals.Subtotal += roundMoney(item.Quantity * item.Rate)
	}
	totals.Subtotal = roundMoney(totals.Subtotal)
	if includeCGST {
		totals.CGSTAmount = roundMoney(totals.Subtotal * cgstRate / 100)
	}
	if includeSGST {
		totals.SGSTAmount = roundMoney(totals.Subtotal * sgstRate / 100)
	}
	totals.Total = roundMoney(totals.Subtotal + totals.CGSTAmount + totals.SGSTAmount)
	return totals
}

// InvoiceService manages invoices
type InvoiceService struct {
	db *gorm.DB
}

// NewInvoiceService creates an invoice service bound to db
func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

func documentNumber(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}

func rateOrDefault(rate *float64) (float64, error) {
	if rate == nil {
		return DefaultGSTRate, nil
	}
	if *rate < 0 || *rate > 100 {
		return 0, &ValidationError{Field: "rate", Message: "tax rate must be between 0 and 100"}
	}
	return *rate, nil
}

// orderCustomer loads the customer an order was placed for
func orderCustomer(db *gorm.DB, orderID uint) (*models.Customer, error) {
	if orderID == 0 {
		return nil, &ValidationError{Field: "orderId", Message: "is required"}
	}
	var order models.Order
	if err := db.Preload("Customer").First(&order, orderID).Error; err != nil {
		return nil, notFoundOr(err, "order", orderID)
	}
	return &order.Customer, nil
}

func displayName(c *models.Customer) string {
	if strings.TrimSpace(c.Company) != "" {
		return c.Company
	}
	return c.Name
}

func buildInvoice(in InvoiceInput, inv *models.Invoice) error {
	if len(in.Items) == 0 {
		return &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	if strings.TrimSpace(in.BillToName) == "" {
		return &ValidationError{Field: "billToName", Message: "is required"}
	}

	cgst, err := rateOrDefault(in.CGSTRate)
	if err != nil {
		return err
	}
	sgst, err := rateOrDefault(in.SGSTRate)
	if err != nil {
		return err
	}

	items := make([]models.InvoiceItem, 0, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.Description) == "" {
			return &ValidationError{Field: fmt.Sprintf("items[%d].description", i), Message: "is required"}
		}
		if it.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be greater than zero"}
		}
		if it.Rate < 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].rate", i), Message: "must not be negative"}
		}
		items = append(items, models.InvoiceItem{
			Description: strings.TrimSpace(it.Description),
			HSNCode:     strings.TrimSpace(it.HSNCode),
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      roundMoney(it.Quantity * it.Rate),
		})
	}

	totals := ComputeInvoiceTotals(items, in.IncludeCGST, in.IncludeSGST, cgst, sgst)

	inv.OrderID = in.OrderID
	inv.BillToName = strings.TrimSpace(in.BillToName)
	inv.BillToAddress = strings.TrimSpace(in.BillToAddress)
	inv.BillToGSTIN = strings.TrimSpace(in.BillToGSTIN)
	if in.IssueDate != nil {
		inv.IssueDate = *in.IssueDate
	} else if inv.IssueDate.IsZero() {
		inv.IssueDate = time.Now()
	}
	inv.Items = items
	inv.IncludeCGST = in.IncludeCGST
	inv.IncludeSGST = in.IncludeSGST
	inv.CGSTRate = cgst
	inv.SGSTRate = sgst
	inv.Subtotal = totals.Subtotal
	inv.CGSTAmount = totals.CGSTAmount
	inv.SGSTAmount = totals.SGSTAmount
	inv.Total = totals.Total
	inv.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// ListInvoices returns invoices, newest first, optionally for one order
func (s *InvoiceService) ListInvoices(ctx context.Context, orderID *uint) ([]models.Invoice, error) {
	query := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Order("id DESC")
	if orderID != nil {
		query = query.Where("order_id = ?", *orderID)
	}
	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch invoices: %w", err)
	}
	return invoices, nil
}

// GetInvoice loads an invoice with its items and order
func (s *InvoiceService) GetInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Order").
		Preload("Order.Customer").
		First(&inv, id).Error; err != nil {
		return nil, notFoundOr(err, "invoice", id)
	}
	return &inv, nil
}

// CreateInvoice computes totals and stores an invoice for an existing order
func (s *InvoiceService) CreateInvoice(ctx context.Context, createdBy uint, in InvoiceInput) (*models.Invoice, error) {
	customer, err := orderCustomer(s.db.WithContext(ctx), in.OrderID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.BillToName) == "" {
		in.BillToName = displayName(customer)
	}
	if strings.TrimSpace(in.BillToAddress) == "" {
		in.BillToAddress = customer.Address
	}
	if strings.TrimSpace(in.BillToGSTIN) == "" {
		in.BillToGSTIN = customer.GSTIN
	}

	inv := &models.Invoice{CreatedByID: createdBy}
	if err := buildInvoice(in, inv); err != nil {
		return nil, err
	}
	inv.InvoiceNumber = strings.TrimSpace(in.InvoiceNumber)
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = documentNumber("INV", inv.IssueDate)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOrder(tx, in.OrderID); err != nil {
			return err
		}
		if err := tx.Create(inv).Error; err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Message: fmt.Sprintf("invoice number %s already exists", inv.InvoiceNumber)}
			}
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, inv.ID)
}

// UpdateInvoice replaces the invoice contents and recomputes totals
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uint, in InvoiceInput) (*models.Invoice, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			return notFoundOr(err, "invoice", id)
		}
		if in.OrderID == 0 {
			in.OrderID = inv.OrderID
		}
		if strings.TrimSpace(in.BillToName) == "" {
			in.BillToName = inv.BillToName
		}
		if _, err := loadOrder(tx, in.OrderID); err != nil {
			return err
		}
		if err := buildInvoice(in, &inv); err != nil {
			return err
		}
		if number := strings.TrimSpace(in.InvoiceNumber); number != "" {
			inv.InvoiceNumber = number
		}

		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		items := inv.Items
		inv.Items = nil
		if err := tx.Save(&inv).Error; err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Message: fmt.Sprintf("invoice number %s already exists", inv.InvoiceNumber)}
			}
			return err
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, id)
}

// DeleteInvoice removes an invoice and its items
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Invoice{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Resource: "invoice", ID: id}
		}
		return tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error
	})
}
