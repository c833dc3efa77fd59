package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/services"
)

// CustomerRequest represents the request body for creating or updating a customer
type CustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Address *string `json:"address"`
	GSTIN   *string `json:"gstin"`
}

func (r CustomerRequest) input() services.CustomerInput {
	return services.CustomerInput{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Company: r.Company,
		Address: r.Address,
		GSTIN:   r.GSTIN,
	}
}

// GetAllCustomers handles GET /api/v1/admin/getAllCustomers?search=
func GetAllCustomers(c *gin.Context) {
	customers, err := services.NewCustomerService(config.GetDB()).ListCustomers(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/admin/getCustomer/:id
func GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	customer, err := services.NewCustomerService(config.GetDB()).GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, customer)
}

// CreateCustomer handles POST /api/v1/admin/createCustomer
func CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if req.Name == nil {
		respondServiceError(c, &services.ValidationError{Field: "name", Message: "is required"})
		return
	}

	customer, err := services.NewCustomerService(config.GetDB()).CreateCustomer(c.Request.Context(), req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/v1/admin/updateCustomer/:id
func UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	customer, err := services.NewCustomerService(config.GetDB()).UpdateCustomer(c.Request.Context(), id, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, customer)
}
