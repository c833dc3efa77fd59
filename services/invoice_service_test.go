package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/tests/testutil"
	"github.com/signworks/orderflow-api/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeInvoiceTotals(t *testing.T) {
	tests := []struct {
		name       string
		items      []models.InvoiceItem
		cgst, sgst bool
		want       services.InvoiceTotals
	}{
		{
			name:  "no tax",
			items: []models.InvoiceItem{{Quantity: 2, Rate: 150}, {Quantity: 1, Rate: 99.5}},
			want:  services.InvoiceTotals{Subtotal: 399.5, Total: 399.5},
		},
		{
			name:  "both taxes at 9%",
			items: []models.InvoiceItem{{Quantity: 4, Rate: 200}, {Quantity: 1, Rate: 200}},
			cgst:  true, sgst: true,
			want: services.InvoiceTotals{Subtotal: 1000, CGSTAmount: 90, SGSTAmount: 90, Total: 1180},
		},
		{
			name:  "cgst only",
			items: []models.InvoiceItem{{Quantity: 3, Rate: 100}},
			cgst:  true,
			want:  services.InvoiceTotals{Subtotal: 300, CGSTAmount: 27, Total: 327},
		},
		{
			name: "lines round to paise before summing",
			items: []models.InvoiceItem{
				{Quantity: 2, Rate: 10.126},
				{Quantity: 1, Rate: 0.004},
				{Quantity: 1, Rate: 0.004},
				{Quantity: 1, Rate: 0.004},
			},
			want: services.InvoiceTotals{Subtotal: 20.25, Total: 20.25},
		},
		{
			name: "empty",
			want: services.InvoiceTotals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.ComputeInvoiceTotals(tt.items, tt.cgst, tt.sgst, services.DefaultGSTRate, services.DefaultGSTRate)
			assert.InDelta(t, tt.want.Subtotal, got.Subtotal, 0.001)
			assert.InDelta(t, tt.want.CGSTAmount, got.CGSTAmount, 0.001)
			assert.InDelta(t, tt.want.SGSTAmount, got.SGSTAmount, 0.001)
			assert.InDelta(t, tt.want.Total, got.Total, 0.001)
		})
	}
}

func TestInvoiceService_CreateUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := services.NewInvoiceService(db)

	admin := testutil.SeedUser(t, db, workflow.Admin, "admin@signworks.test")
	customer := testutil.SeedCustomer(t, db, "Acme Signs")
	order, err := services.NewOrderService(db).CreateOrder(ctx, workflow.Actor{ID: admin.ID, Role: admin.AccountType},
		services.CreateOrderInput{CustomerID: customer.ID})
	require.NoError(t, err)

	issued := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	rate := 6.0
	inv, err := svc.CreateInvoice(ctx, admin.ID, services.InvoiceInput{
		OrderID:     order.ID,
		IssueDate:   &issued,
		Items:       []services.InvoiceItemInput{{Description: "Acrylic letters", Quantity: 10, Rate: 50}},
		IncludeCGST: true,
		IncludeSGST: true,
		CGSTRate:    &rate,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^INV-20260314-[0-9A-F]{6}$`, inv.InvoiceNumber)
	assert.Equal(t, "Acme Signs Pvt Ltd", inv.BillToName)
	assert.Equal(t, customer.GSTIN, inv.BillToGSTIN)
	assert.InDelta(t, 6.0, inv.CGSTRate, 0.001)
	assert.InDelta(t, services.DefaultGSTRate, inv.SGSTRate, 0.001)
	assert.InDelta(t, 575.0, inv.Total, 0.001)
	require.Len(t, inv.Items, 1)
	assert.InDelta(t, 500.0, inv.Items[0].Amount, 0.001)

	updated, err := svc.UpdateInvoice(ctx, inv.ID, services.InvoiceInput{
		OrderID: order.ID,
		Items: []services.InvoiceItemInput{
			{Description: "Acrylic letters", Quantity: 10, Rate: 50},
			{Description: "Installation", Quantity: 1, Rate: 250},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, updated.InvoiceNumber)
	assert.Len(t, updated.Items, 2)
	assert.InDelta(t, 750.0, updated.Total, 0.001)

	var items int64
	require.NoError(t, db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&items).Error)
	assert.EqualValues(t, 2, items, "replaced items do not linger")

	_, err = svc.CreateInvoice(ctx, admin.ID, services.InvoiceInput{
		InvoiceNumber: inv.InvoiceNumber,
		OrderID:       order.ID,
		Items:         []services.InvoiceItemInput{{Description: "Duplicate", Quantity: 1, Rate: 1}},
	})
	assert.ErrorIs(t, err, services.ErrConflict)

	require.NoError(t, svc.DeleteInvoice(ctx, inv.ID))
	_, err = svc.GetInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRenderInvoicePDF(t *testing.T) {
	inv := &models.Invoice{
		InvoiceNumber: "INV-20260314-ABC123",
		Order:         &models.Order{OrderNumber: "ORD-1234ABCD"},
		BillToName:    "Acme Signs Pvt Ltd",
		BillToAddress: "12 Market Road, Pune",
		BillToGSTIN:   "27ABCDE1234F1Z5",
		IssueDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Items: []models.InvoiceItem{
			{Description: "Acrylic letters", HSNCode: "3926", Quantity: 10, Rate: 50, Amount: 500},
		},
		IncludeCGST: true,
		IncludeSGST: true,
		CGSTRate:    9,
		SGSTRate:    9,
		Subtotal:    500,
		CGSTAmount:  45,
		SGSTAmount:  45,
		Total:       590,
	}

	out, err := services.RenderInvoicePDF(services.DefaultCompanyProfile, inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderChallanPDF(t *testing.T) {
	ch := &models.Challan{
		ChallanNumber: "DC-20260402-XYZ789",
		Order:         &models.Order{OrderNumber: "ORD-1234ABCD"},
		DeliverTo:     "Acme Signs Pvt Ltd",
		Address:       "12 Market Road, Pune",
		DispatchDate:  time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		VehicleNumber: "MH12AB1234",
		Items:         []models.ChallanItem{{Description: "Backlit sign board", Quantity: 1, Unit: "pcs"}},
	}

	withQR, err := services.RenderChallanPDF(services.DefaultCompanyProfile, ch)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(withQR, []byte("%PDF")))

	ch.Order = nil
	withoutQR, err := services.RenderChallanPDF(services.DefaultCompanyProfile, ch)
	require.NoError(t, err)
	assert.Less(t, len(withoutQR), len(withQR), "the order QR code is embedded as an image")
}
