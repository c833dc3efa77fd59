package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/signworks/orderflow-api/models"
	"gorm.io/gorm"
)

// CustomerService manages customers
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService creates a customer service bound to db
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// CustomerInput carries customer fields. Nil pointers are left unchanged on update.
type CustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Address *string
	GSTIN   *string
}

// ListCustomers returns customers matching search, newest first
func (s *CustomerService) ListCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?)", like, like, like)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}
	return customers, nil
}

// GetCustomer loads one customer
func (s *CustomerService) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, notFoundOr(err, "customer", id)
	}
	return &customer, nil
}

// CreateCustomer creates a customer; a name is required
func (s *CustomerService) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	customer := &models.Customer{}
	applyCustomerInput(customer, in)
	if customer.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// UpdateCustomer changes the supplied fields
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCustomerInput(customer, in)
	if customer.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func applyCustomerInput(c *models.Customer, in CustomerInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.Name, in.Name)
	set(&c.Email, in.Email)
	set(&c.Phone, in.Phone)
	set(&c.Company, in.Company)
	set(&c.Address, in.Address)
	set(&c.GSTIN, in.GSTIN)
	c.Email = strings.ToLower(c.Email)
}
