// Package export writes preset data to files meant for people: a PDF report of
// changed options, a side-by-side comparison workbook and a QR code for
// sharing overrides.
package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/presettab/internal/preset"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	rowHeight    = 6.0
)

var (
	changeHeaders   = []string{"Category", "Option", "Key", "Old value", "New value"}
	changeColWidths = []float64{40, 62, 50, 57, 58}
)

// ChangesPDF writes a table of option changes, one row per changed key, with
// the column header repeated on every page.
func ChangesPDF(path, title string, changes []preset.Change) error {
	if len(changes) == 0 {
		return fmt.Errorf("no changes to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pages := 0
	y := 0.0
	for i, c := range changes {
		if i == 0 || y+rowHeight > pageHeight-marginBottom-8 {
			pdf.AddPage()
			pages++
			y = renderChangesHeader(pdf, title, len(changes), pages)
		}
		renderChangeRow(pdf, c, i, y)
		y += rowHeight
	}

	renderFooter(pdf)
	return pdf.OutputFileAndClose(path)
}

// renderChangesHeader draws the title and the table header and returns the y
// position of the first row.
func renderChangesHeader(pdf *fpdf.Fpdf, title string, total, page int) float64 {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Changed options: %d | Page %d", total, page)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+headerHeight+7, pageWidth-marginRight, marginTop+headerHeight+7)

	y := marginTop + headerHeight + 10
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetLineWidth(0.2)
	x := marginLeft
	for i, h := range changeHeaders {
		pdf.SetXY(x, y)
		pdf.CellFormat(changeColWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
		x += changeColWidths[i]
	}
	return y + rowHeight
}

func renderChangeRow(pdf *fpdf.Fpdf, c preset.Change, i int, y float64) {
	if i%2 == 0 {
		pdf.SetFillColor(245, 245, 245)
	} else {
		pdf.SetFillColor(255, 255, 255)
	}
	pdf.SetFont("Helvetica", "", 8)

	x := marginLeft
	for j, cell := range []string{c.Category, c.Label, c.Key, c.Old, c.New} {
		pdf.SetXY(x, y)
		pdf.CellFormat(changeColWidths[j], rowHeight, fitText(pdf, cell, changeColWidths[j]-2), "1", 0, "L", true, 0, "")
		x += changeColWidths[j]
	}
}

// fitText shortens s with an ellipsis until it fits into width.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func renderFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by presettab", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
