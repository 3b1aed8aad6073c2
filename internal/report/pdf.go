package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF exports the two report artifacts as one PDF document, the task
// overview first and each user block below it.
func WritePDF(w io.Writer, taskText, userText string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task overview", false)
	pdf.SetAuthor("taskdesk", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Courier", "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeArtifact(pdf, tr, taskText)

	if strings.TrimSpace(userText) != "" {
		pdf.Ln(4)
		hr(pdf)
		writeArtifact(pdf, tr, userText)
	}

	return pdf.Output(w)
}

func writeArtifact(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasSuffix(line, "REPORT") {
			pdf.SetFont("Courier", "B", 12)
			pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
			continue
		}
		pdf.SetFont("Courier", "", 10)
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 3)
}
