package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/services"
)

// InvoiceItemRequest is one line of an invoice request
type InvoiceItemRequest struct {
	Description string  `json:"description" binding:"required"`
	HSNCode     string  `json:"hsnCode"`
	Quantity    float64 `json:"quantity" binding:"gt=0"`
	Rate        float64 `json:"rate" binding:"gte=0"`
}

// InvoiceRequest represents the request body for creating or replacing an
// invoice. Bill-to fields default to the order's customer.
type InvoiceRequest struct {
	InvoiceNumber string               `json:"invoiceNumber"`
	OrderID       uint                 `json:"orderId"`
	BillToName    string               `json:"billToName"`
	BillToAddress string               `json:"billToAddress"`
	BillToGSTIN   string               `json:"billToGstin"`
	IssueDate     string               `json:"issueDate"`
	Items         []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	IncludeCGST   bool                 `json:"includeCgst"`
	IncludeSGST   bool                 `json:"includeSgst"`
	CGSTRate      *float64             `json:"cgstRate"`
	SGSTRate      *float64             `json:"sgstRate"`
	Notes         string               `json:"notes"`
}

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, &services.ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q", raw)}
}

func (r InvoiceRequest) input() (services.InvoiceInput, error) {
	issued, err := parseDate("issueDate", r.IssueDate)
	if err != nil {
		return services.InvoiceInput{}, err
	}

	items := make([]services.InvoiceItemInput, len(r.Items))
	for i, it := range r.Items {
		items[i] = services.InvoiceItemInput{
			Description: it.Description,
			HSNCode:     it.HSNCode,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
		}
	}

	return services.InvoiceInput{
		InvoiceNumber: r.InvoiceNumber,
		OrderID:       r.OrderID,
		BillToName:    r.BillToName,
		BillToAddress: r.BillToAddress,
		BillToGSTIN:   r.BillToGSTIN,
		IssueDate:     issued,
		Items:         items,
		IncludeCGST:   r.IncludeCGST,
		IncludeSGST:   r.IncludeSGST,
		CGSTRate:      r.CGSTRate,
		SGSTRate:      r.SGSTRate,
		Notes:         r.Notes,
	}, nil
}

func invoiceService() *services.InvoiceService {
	return services.NewInvoiceService(config.GetDB())
}

// ListInvoices handles GET /api/v1/invoices
func ListInvoices(c *gin.Context) {
	invoices, err := invoiceService().ListInvoices(c.Request.Context(), nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, invoices)
}

// ListOrderInvoices handles GET /api/v1/invoices/order/:orderId
func ListOrderInvoices(c *gin.Context) {
	orderID, ok := parseID(c, "orderId")
	if !ok {
		return
	}
	invoices, err := invoiceService().ListInvoices(c.Request.Context(), &orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, invoices)
}

// GetInvoice handles GET /api/v1/invoices/:id
func GetInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := invoiceService().GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, invoice)
}

// CreateInvoice handles POST /api/v1/invoices
func CreateInvoice(c *gin.Context) {
	user, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	invoice, err := invoiceService().CreateInvoice(c.Request.Context(), user.ID, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, invoice)
}

// UpdateInvoice handles PUT /api/v1/invoices/:id
func UpdateInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	invoice, err := invoiceService().UpdateInvoice(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /api/v1/invoices/:id
func DeleteInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := invoiceService().DeleteInvoice(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}

// GetInvoicePDF handles GET /api/v1/invoices/:id/pdf
func GetInvoicePDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := invoiceService().GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pdf, err := services.RenderInvoicePDF(services.DefaultCompanyProfile, invoice)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", invoice.InvoiceNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
