package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
)

// LeadRequest represents the request body for creating or updating a lead
type LeadRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Source  *string `json:"source"`
	Notes   *string `json:"notes"`
	Status  *string `json:"status" binding:"omitempty,lead_status"`
}

func (r LeadRequest) input() services.LeadInput {
	in := services.LeadInput{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Company: r.Company,
		Source:  r.Source,
		Notes:   r.Notes,
	}
	if r.Status != nil {
		status := models.LeadStatus(*r.Status)
		in.Status = &status
	}
	return in
}

// ConvertLeadRequest carries the customer fields a lead does not have
type ConvertLeadRequest struct {
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

// GetAllLeads handles GET /api/v1/admin/getAllLeads?status=&search=
func GetAllLeads(c *gin.Context) {
	leads, err := services.NewLeadService(config.GetDB()).ListLeads(c.Request.Context(), c.Query("status"), c.Query("search"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, leads)
}

// GetLead handles GET /api/v1/admin/getLead/:id
func GetLead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	lead, err := services.NewLeadService(config.GetDB()).GetLead(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, lead)
}

// CreateLead handles POST /api/v1/admin/createLead
func CreateLead(c *gin.Context) {
	user, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	lead, err := services.NewLeadService(config.GetDB()).CreateLead(c.Request.Context(), user.ID, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, lead)
}

// UpdateLead handles PUT /api/v1/admin/updateLead/:id
func UpdateLead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	lead, err := services.NewLeadService(config.GetDB()).UpdateLead(c.Request.Context(), id, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, lead)
}

// DeleteLead handles DELETE /api/v1/admin/deleteLead/:id
func DeleteLead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := services.NewLeadService(config.GetDB()).DeleteLead(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}

// ConvertToCustomer handles POST /api/v1/admin/convertToCustomer/:id
func ConvertToCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ConvertLeadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}
	}

	customer, lead, err := services.NewLeadService(config.GetDB()).ConvertToCustomer(c.Request.Context(), id, services.ConvertLeadInput{
		Address: req.Address,
		GSTIN:   req.GSTIN,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"customer": customer,
		"lead":     lead,
	})
}
