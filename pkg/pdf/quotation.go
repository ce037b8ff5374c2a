package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// LineItem is one priced row in the quotation summary table.
type LineItem struct {
	Label  string
	Detail string
	Cost   decimal.Decimal
}

// QuotationDocument carries everything the renderer needs, decoupled from the
// persistence models.
type QuotationDocument struct {
	CompanyName string
	Currency    string
	QuotationID string
	Customer    string
	GeneratedAt time.Time

	CameraCount      int
	AIEnabledCameras int
	StorageDays      int
	CPUCoresRequired int
	RAMRequired      int
	VRAMRequired     int

	Lines      []LineItem
	AIFeatures []LineItem
	TotalCost  decimal.Decimal
}

// Render produces the quotation as a single-page A4 PDF.
func Render(doc QuotationDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Quotation %s", doc.QuotationID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, doc.CompanyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Hardware & Licensing Quotation", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	meta := [][2]string{
		{"Quotation ID", doc.QuotationID},
		{"Customer", doc.Customer},
		{"Date", doc.GeneratedAt.Format("02 Jan 2006")},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range meta {
		pdf.CellFormat(40, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(100, 6, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Deployment Requirement", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	requirement := [][2]string{
		{"Cameras", fmt.Sprintf("%d", doc.CameraCount)},
		{"AI-enabled cameras", fmt.Sprintf("%d", doc.AIEnabledCameras)},
		{"Storage window (days)", fmt.Sprintf("%d", doc.StorageDays)},
		{"CPU cores required", fmt.Sprintf("%d", doc.CPUCoresRequired)},
		{"RAM required (GB)", fmt.Sprintf("%d", doc.RAMRequired)},
		{"VRAM required (GB)", fmt.Sprintf("%d", doc.VRAMRequired)},
	}
	for _, row := range requirement {
		pdf.CellFormat(60, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Cost Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(50, 6, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(80, 6, "Detail", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("Cost (%s)", doc.Currency), "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(50, 6, line.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 6, line.Detail, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, line.Cost.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	if len(doc.AIFeatures) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, "AI Feature Breakdown", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, feature := range doc.AIFeatures {
			pdf.CellFormat(130, 6, feature.Label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, feature.Cost.StringFixed(2), "1", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, doc.TotalCost.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering quotation pdf: %w", err)
	}
	return buf.Bytes(), nil
}
