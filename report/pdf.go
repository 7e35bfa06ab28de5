package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/finsight"
)

// RenderPDF renders a completed run's report as a PDF document (A4,
// portrait).
func RenderPDF(r *finsight.FinalReport) ([]byte, error) {
	if r == nil {
		return nil, goerr.New("report is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(108, 117, 125)
		pdf.SetX(15)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 14, "Financial Research Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addSection(pdf, "Question")
	addBody(pdf, r.Query)

	if len(r.Tickers) > 0 {
		addSection(pdf, "Tickers")
		addBody(pdf, strings.Join(r.Tickers, ", "))
	}

	addSection(pdf, "Data Sources")
	addBody(pdf, strings.Join(r.DataSources, ", "))

	addSection(pdf, "Answer")
	addBody(pdf, r.SynthesisText)

	addSection(pdf, "Validation")
	addBody(pdf, fmt.Sprintf("Valid: %v    Confidence: %.2f", r.IsValid, r.Confidence))
	addBody(pdf, fmt.Sprintf("Coverage: %.2f    Quality: %.2f    Inference: %.2f    Overall: %.2f",
		r.Breakdown.DataCoverage, r.Breakdown.DataQuality,
		r.Breakdown.InferenceStrength, r.Breakdown.Overall))

	if len(r.ValidationIssues) > 0 {
		addSection(pdf, "Validation Issues")
		for _, issue := range r.ValidationIssues {
			addBody(pdf, "- "+issue)
		}
	}

	addSection(pdf, "Run")
	addBody(pdf, fmt.Sprintf("%d research task(s) executed.", r.TaskCount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, goerr.Wrap(err, "failed to render PDF")
	}

	return buf.Bytes(), nil
}

func addSection(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(0, 102, 204)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func addBody(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(33, 37, 41)
	pdf.MultiCell(0, 6, text, "", "L", false)
}
