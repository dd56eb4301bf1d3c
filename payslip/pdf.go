/*
pdf.go - Payslip PDF rendering

PURPOSE:
  Renders a finalized payslip as a simple A4 PDF for the download
  endpoint. Layout: header, employee and period block, one row per line,
  totals footer.
*/
package payslip

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF renders the payslip into PDF bytes.
func RenderPDF(slip *Payslip, employee Employee) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employee.Name))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Employee ID: %s", slip.EmployeeID))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", slip.PeriodFrom.Format("2006-01-02"), slip.PeriodTo.Format("2006-01-02")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Financial Year: %s", slip.FiscalYear))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Component", "B", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Amount (INR)", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range slip.Lines {
		pdf.CellFormat(120, 8, line.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, line.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Gross", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, slip.Gross.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.CellFormat(120, 8, "Net Pay", "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, slip.Net.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}
