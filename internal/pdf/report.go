// Package pdf renders the panel's printable reports: tabular list exports
// and the per-repair detail report. Rendering is deterministic apart from
// the generation date in the footer.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/techfix/panel-gateway/internal/core/domain"
)

const (
	marginLeft = 14.0
	lineHeight = 7.0
	footerTag  = "TechFix - Repair Management System"
)

// ListReport is a titled table export of any panel listing.
type ListReport struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// RenderList writes the report as a PDF document to w.
func RenderList(w io.Writer, report ListReport) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.SetTextColor(0, 0, 0)
	doc.Text(marginLeft, 15, report.Title+" List")

	renderTable(doc, 25, report.Columns, report.Rows)
	renderFooter(doc)

	return doc.Output(w)
}

// RenderRepairReport writes the detail report for one repair task,
// hydrated with its order and device, to w.
func RenderRepairReport(w io.Writer, task *domain.RepairTask) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(0, 0, 0)
	doc.Text(marginLeft, 15, "Repair Report")

	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(100, 100, 100)
	doc.Text(marginLeft, 25, fmt.Sprintf("#%d", task.ID))

	y := 35.0
	y = renderSection(doc, y, "Device Information", deviceRows(task))
	y = renderParagraph(doc, y, "Reported Problem", reportedProblem(task))
	y = renderSection(doc, y, "Repair Details", [][2]string{
		{"Title:", orDash(task.Title)},
		{"Status:", orDash(task.Status)},
		{"Time spent:", fmt.Sprintf("%d min", task.TimeSpentMin)},
		{"Cost:", fmt.Sprintf("$%.2f", task.Cost)},
	})
	if task.Diagnosis != "" {
		y = renderParagraph(doc, y, "Diagnosis", task.Diagnosis)
	}
	if task.Solution != "" {
		renderParagraph(doc, y, "Solution", task.Solution)
	}

	renderFooter(doc)
	return doc.Output(w)
}

func deviceRows(task *domain.RepairTask) [][2]string {
	brand, model, serial, state := "N/A", "N/A", "N/A", "N/A"
	if task.Order != nil && task.Order.Device != nil {
		d := task.Order.Device
		serial = orDash(d.SerialNumber)
		state = orDash(d.PhysicalState)
		if d.Model != nil {
			model = orDash(d.Model.Name)
			if d.Model.Brand != nil {
				brand = orDash(d.Model.Brand.Name)
			}
		}
	}
	return [][2]string{
		{"Brand:", brand},
		{"Model:", model},
		{"Serial number:", serial},
		{"Physical state:", state},
	}
}

func reportedProblem(task *domain.RepairTask) string {
	if task.Order == nil || task.Order.ReportedProblem == "" {
		return "No description"
	}
	return task.Order.ReportedProblem
}

// renderSection prints a heading followed by label/value rows and returns
// the next free y position.
func renderSection(doc *fpdf.Fpdf, y float64, heading string, rows [][2]string) float64 {
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(0, 0, 0)
	doc.Text(marginLeft, y, heading)
	y += 10

	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(60, 60, 60)
	for _, row := range rows {
		doc.Text(marginLeft, y, row[0])
		doc.Text(60, y, row[1])
		y += lineHeight
	}
	return y + 5
}

// renderParagraph prints a heading followed by wrapped body text and
// returns the next free y position.
func renderParagraph(doc *fpdf.Fpdf, y float64, heading, body string) float64 {
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(0, 0, 0)
	doc.Text(marginLeft, y, heading)
	y += 10

	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(60, 60, 60)
	lines := doc.SplitText(body, 180)
	for _, line := range lines {
		doc.Text(marginLeft, y, line)
		y += lineHeight
	}
	return y + 5
}

func renderTable(doc *fpdf.Fpdf, startY float64, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	pageW, _ := doc.GetPageSize()
	colW := (pageW - 2*marginLeft) / float64(len(columns))

	doc.SetY(startY)
	doc.SetX(marginLeft)
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(59, 130, 246)
	doc.SetTextColor(255, 255, 255)
	for _, col := range columns {
		doc.CellFormat(colW, 8, col, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(0, 0, 0)
	for i, row := range rows {
		if i%2 == 1 {
			doc.SetFillColor(245, 245, 245)
		} else {
			doc.SetFillColor(255, 255, 255)
		}
		doc.SetX(marginLeft)
		for j := 0; j < len(columns); j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			doc.CellFormat(colW, 8, cell, "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
	}
}

func renderFooter(doc *fpdf.Fpdf) {
	_, pageH := doc.GetPageSize()
	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(100, 100, 100)
	doc.Text(marginLeft, pageH-20, "Generated on "+time.Now().Format("January 2, 2006"))
	doc.Text(marginLeft, pageH-14, footerTag)
}

func orDash(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
