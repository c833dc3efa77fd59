package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/services"
)

// ChallanItemRequest is one line of a challan request
type ChallanItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"gt=0"`
	Unit        string  `json:"unit"`
}

// ChallanRequest represents the request body for creating or replacing a
// delivery challan. DeliverTo and Address default to the order's customer.
type ChallanRequest struct {
	ChallanNumber string               `json:"challanNumber"`
	OrderID       uint                 `json:"orderId"`
	DeliverTo     string               `json:"deliverTo"`
	Address       string               `json:"address"`
	DispatchDate  string               `json:"dispatchDate"`
	VehicleNumber string               `json:"vehicleNumber"`
	Transporter   string               `json:"transporter"`
	Items         []ChallanItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes         string               `json:"notes"`
}

func (r ChallanRequest) input() (services.ChallanInput, error) {
	dispatched, err := parseDate("dispatchDate", r.DispatchDate)
	if err != nil {
		return services.ChallanInput{}, err
	}

	items := make([]services.ChallanItemInput, len(r.Items))
	for i, it := range r.Items {
		items[i] = services.ChallanItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
		}
	}

	return services.ChallanInput{
		ChallanNumber: r.ChallanNumber,
		OrderID:       r.OrderID,
		DeliverTo:     r.DeliverTo,
		Address:       r.Address,
		DispatchDate:  dispatched,
		VehicleNumber: r.VehicleNumber,
		Transporter:   r.Transporter,
		Items:         items,
		Notes:         r.Notes,
	}, nil
}

func challanService() *services.ChallanService {
	return services.NewChallanService(config.GetDB())
}

// ListChallans handles GET /api/v1/challan
func ListChallans(c *gin.Context) {
	challans, err := challanService().ListChallans(c.Request.Context(), nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, challans)
}

// ListOrderChallans handles GET /api/v1/challan/order/:orderId
func ListOrderChallans(c *gin.Context) {
	orderID, ok := parseID(c, "orderId")
	if !ok {
		return
	}
	challans, err := challanService().ListChallans(c.Request.Context(), &orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, challans)
}

// GetChallan handles GET /api/v1/challan/:id
func GetChallan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	challan, err := challanService().GetChallan(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, challan)
}

// CreateChallan handles POST /api/v1/challan
func CreateChallan(c *gin.Context) {
	user, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req ChallanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	challan, err := challanService().CreateChallan(c.Request.Context(), user.ID, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, challan)
}

// UpdateChallan handles PUT /api/v1/challan/:id
func UpdateChallan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ChallanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	challan, err := challanService().UpdateChallan(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, challan)
}

// DeleteChallan handles DELETE /api/v1/challan/:id
func DeleteChallan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := challanService().DeleteChallan(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}

// GetChallanPDF handles GET /api/v1/challan/:id/pdf
func GetChallanPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	challan, err := challanService().GetChallan(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pdf, err := services.RenderChallanPDF(services.DefaultCompanyProfile, challan)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", challan.ChallanNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
