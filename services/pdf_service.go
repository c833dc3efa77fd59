package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/signworks/orderflow-api/models"
	"github.com/skip2/go-qrcode"
)

// CompanyProfile is printed in the header of generated documents
type CompanyProfile struct {
	Name    string
	Address string
	GSTIN   string
}

// DefaultCompanyProfile is used until a profile is configured
var DefaultCompanyProfile = CompanyProfile{
	Name:    "Signworks",
	Address: "",
	GSTIN:   "",
}

// The core PDF fonts have no rupee glyph.
const currencyPrefix = "Rs. "

func money(v float64) string {
	return fmt.Sprintf("%s%.2f", currencyPrefix, v)
}

func newDocument(company CompanyProfile, title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, company.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if company.Address != "" {
		pdf.MultiCell(0, 4.5, company.Address, "", "L", false)
	}
	if company.GSTIN != "" {
		pdf.CellFormat(0, 5, "GSTIN: "+company.GSTIN, "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, title, "B", 1, "C", false, 0, "")
	pdf.Ln(3)
	return pdf
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orderNumberOf(order *models.Order) string {
	if order == nil {
		return ""
	}
	return order.OrderNumber
}

// RenderInvoicePDF draws a tax invoice
func RenderInvoicePDF(company CompanyProfile, inv *models.Invoice) ([]byte, error) {
	pdf := newDocument(company, "TAX INVOICE")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, "Invoice No: "+inv.InvoiceNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+inv.IssueDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	if number := orderNumberOf(inv.Order); number != "" {
		pdf.CellFormat(0, 6, "Order: "+number, "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, inv.BillToName, "", 1, "L", false, 0, "")
	if inv.BillToAddress != "" {
		pdf.MultiCell(0, 5, inv.BillToAddress, "", "L", false)
	}
	if inv.BillToGSTIN != "" {
		pdf.CellFormat(0, 5, "GSTIN: "+inv.BillToGSTIN, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{10, 80, 25, 20, 22, 23}
	headers := []string{"#", "Description", "HSN", "Qty", "Rate", "Amount"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, item := range inv.Items {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, item.HSNCode, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%g", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", item.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.2f", item.Amount), "1", 1, "R", false, 0, "")
	}

	summary := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(135, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, value, "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	summary("Subtotal", money(inv.Subtotal), false)
	if inv.IncludeCGST {
		summary(fmt.Sprintf("CGST @ %g%%", inv.CGSTRate), money(inv.CGSTAmount), false)
	}
	if inv.IncludeSGST {
		summary(fmt.Sprintf("SGST @ %g%%", inv.SGSTRate), money(inv.SGSTAmount), false)
	}
	summary("Total", money(inv.Total), true)

	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, inv.Notes, "", "L", false)
	}

	return output(pdf)
}

// RenderChallanPDF draws a delivery challan with a QR code of the order number
func RenderChallanPDF(company CompanyProfile, ch *models.Challan) ([]byte, error) {
	pdf := newDocument(company, "DELIVERY CHALLAN")
	top := pdf.GetY()

	if number := orderNumberOf(ch.Order); number != "" {
		qrPng, err := qrcode.Encode(number, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode QR code: %w", err)
		}
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("order_qr", imgOptions, bytes.NewReader(qrPng))
		pdf.ImageOptions("order_qr", 165, top, 28, 28, false, imgOptions, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(140, 6, "Challan No: "+ch.ChallanNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(140, 6, "Dispatch Date: "+ch.DispatchDate.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	if number := orderNumberOf(ch.Order); number != "" {
		pdf.CellFormat(140, 6, "Order: "+number, "", 1, "L", false, 0, "")
	}
	if ch.VehicleNumber != "" {
		pdf.CellFormat(140, 6, "Vehicle: "+ch.VehicleNumber, "", 1, "L", false, 0, "")
	}
	if ch.Transporter != "" {
		pdf.CellFormat(140, 6, "Transporter: "+ch.Transporter, "", 1, "L", false, 0, "")
	}

	if y := top + 30; pdf.GetY() < y {
		pdf.SetY(y)
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Deliver To", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, ch.DeliverTo, "", 1, "L", false, 0, "")
	if ch.Address != "" {
		pdf.MultiCell(0, 5, ch.Address, "", "L", false)
	}
	pdf.Ln(4)

	widths := []float64{12, 118, 25, 25}
	headers := []string{"#", "Description", "Qty", "Unit"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, item := range ch.Items {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%g", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, item.Unit, "1", 1, "C", false, 0, "")
	}

	if ch.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, ch.Notes, "", "L", false)
	}

	pdf.Ln(18)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(90, 5, "Receiver's Signature", "T", 0, "C", false, 0, "")
	pdf.CellFormat(0, 5, "For "+company.Name, "T", 1, "C", false, 0, "")

	return output(pdf)
}
