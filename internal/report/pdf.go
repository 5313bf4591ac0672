package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfTitle      = "INVENTORY MANAGEMENT REPORT"
	pdfMargin     = 20.0
	pdfLineHeight = 7.0
	// two detail lines and a spacer
	pdfBlockHeight = 3 * pdfLineHeight
)

// PDFRenderer lays the snapshot out as an A4 document with one block per product.
type PDFRenderer struct{}

func (PDFRenderer) Format() string {
	return FormatPDF
}

func (r PDFRenderer) Render(w io.Writer, rows []Row, meta Meta) error {
	pdf := r.layout(rows, meta)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF report: %w", err)
	}
	return nil
}

func (PDFRenderer) layout(rows []Row, meta Meta) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(pdfTitle, false)
	pdf.SetCreationDate(meta.GeneratedAt)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, pdfTitle, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, pdfLineHeight, "Generated: "+meta.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, pdfLineHeight, fmt.Sprintf("Low-stock threshold: %d", meta.LowLimit), "", 1, "L", false, 0, "")
	pdf.Ln(pdfLineHeight)

	for _, row := range rows {
		if pdf.GetY()+pdfBlockHeight > pageHeight-pdfMargin {
			pdf.AddPage()
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, pdfLineHeight, tr(fmt.Sprintf("Product: %s (ID: %s)", row.Name, row.ID)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		line := fmt.Sprintf("Stock: %d | Daily Demand: %d", row.Stock, row.DailyDemand)
		if row.Tier != "" {
			line += " | Risk: " + string(row.Tier)
		}
		pdf.CellFormat(0, pdfLineHeight, line, "", 1, "L", false, 0, "")
		pdf.Ln(pdfLineHeight)
	}
	return pdf
}
