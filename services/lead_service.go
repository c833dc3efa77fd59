package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signworks/orderflow-api/models"
	"gorm.io/gorm"
)

// LeadService manages the sales funnel
type LeadService struct {
	db *gorm.DB
}

// NewLeadService creates a lead service bound to db
func NewLeadService(db *gorm.DB) *LeadService {
	return &LeadService{db: db}
}

// LeadInput carries lead fields. Nil pointers are left unchanged on update.
type LeadInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Source  *string
	Notes   *string
	Status  *models.LeadStatus
}

// ConvertLeadInput adds the customer fields a lead does not carry
type ConvertLeadInput struct {
	Address string
	GSTIN   string
}

// ListLeads returns leads, optionally filtered by status and search text
func (s *LeadService) ListLeads(ctx context.Context, status, search string) ([]models.Lead, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if status != "" {
		st := models.LeadStatus(status)
		if !st.IsValid() {
			return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown lead status %q", status)}
		}
		query = query.Where("status = ?", string(st))
	}
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?)", like, like, like)
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return leads, nil
}

// GetLead loads one lead
func (s *LeadService) GetLead(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, id).Error; err != nil {
		return nil, notFoundOr(err, "lead", id)
	}
	return &lead, nil
}

func checkLeadStatus(status models.LeadStatus) error {
	if !status.IsValid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown lead status %q", status)}
	}
	if status == models.LeadConverted {
		return &ValidationError{Field: "status", Message: "leads are converted through convertToCustomer"}
	}
	return nil
}

// CreateLead records a new prospect
func (s *LeadService) CreateLead(ctx context.Context, createdBy uint, in LeadInput) (*models.Lead, error) {
	lead := &models.Lead{Status: models.LeadNew, CreatedByID: createdBy}
	applyLeadInput(lead, in)
	if lead.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if in.Status != nil {
		if err := checkLeadStatus(*in.Status); err != nil {
			return nil, err
		}
		lead.Status = *in.Status
	}
	if err := s.db.WithContext(ctx).Create(lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

// UpdateLead edits a lead that has not been converted
func (s *LeadService) UpdateLead(ctx context.Context, id uint, in LeadInput) (*models.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.LeadConverted {
		return nil, &ValidationError{Field: "status", Message: "converted leads are read-only"}
	}

	applyLeadInput(lead, in)
	if lead.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if in.Status != nil {
		if err := checkLeadStatus(*in.Status); err != nil {
			return nil, err
		}
		lead.Status = *in.Status
	}

	// Guard against a conversion racing this edit.
	res := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("id = ? AND status <> ?", lead.ID, string(models.LeadConverted)).
		Updates(map[string]interface{}{
			"name":    lead.Name,
			"email":   lead.Email,
			"phone":   lead.Phone,
			"company": lead.Company,
			"source":  lead.Source,
			"notes":   lead.Notes,
			"status":  string(lead.Status),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update lead: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &ValidationError{Field: "status", Message: "converted leads are read-only"}
	}
	return s.GetLead(ctx, id)
}

// DeleteLead soft-deletes a lead; a customer created from it is kept
func (s *LeadService) DeleteLead(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Lead{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: "lead", ID: id}
	}
	return nil
}

// ConvertToCustomer creates a customer from the lead, marks it converted and
// links the two in one transaction. Conversion happens at most once.
func (s *LeadService) ConvertToCustomer(ctx context.Context, id uint, in ConvertLeadInput) (*models.Customer, *models.Lead, error) {
	var customer *models.Customer
	var converted models.Lead

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.First(&lead, id).Error; err != nil {
			return notFoundOr(err, "lead", id)
		}
		switch lead.Status {
		case models.LeadConverted:
			return &AlreadyConvertedError{LeadID: lead.ID, CustomerID: lead.CustomerID}
		case models.LeadLost:
			return &ValidationError{Field: "status", Message: "lost leads cannot be converted"}
		}

		leadID := lead.ID
		customer = &models.Customer{
			Name:    lead.Name,
			Email:   strings.ToLower(lead.Email),
			Phone:   lead.Phone,
			Company: lead.Company,
			Address: strings.TrimSpace(in.Address),
			GSTIN:   strings.TrimSpace(in.GSTIN),
			LeadID:  &leadID,
		}
		if err := tx.Create(customer).Error; err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		now := time.Now()
		res := tx.Model(&models.Lead{}).
			Where("id = ? AND status <> ?", lead.ID, string(models.LeadConverted)).
			Updates(map[string]interface{}{
				"status":       string(models.LeadConverted),
				"customer_id":  customer.ID,
				"converted_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &AlreadyConvertedError{LeadID: lead.ID}
		}

		return tx.First(&converted, lead.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return customer, &converted, nil
}

func applyLeadInput(l *models.Lead, in LeadInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&l.Name, in.Name)
	set(&l.Email, in.Email)
	set(&l.Phone, in.Phone)
	set(&l.Company, in.Company)
	set(&l.Source, in.Source)
	set(&l.Notes, in.Notes)
}
