// Package export renders saved strategies as printable documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"tripwise/models"
)

// StrategyPDF renders ss as an A4 PDF. When shareURL is set, a QR code
// pointing at it is placed in the top-right corner.
func StrategyPDF(ss models.SavedStrategy, shareURL string) ([]byte, error) {
	details, err := ss.Details()
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(ss.Title), false)
	pdf.AddPage()

	if shareURL != "" {
		qrPNG, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encode share code: %w", err)
		}
		imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("share", imageOpts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("share", 165, 10, 35, 35, false, imageOpts, 0, "")
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(145, 8, tr(ss.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Score: %.1f / 10", ss.Score))
	pdf.Ln(8)
	pdf.MultiCell(145, 6, tr(details.Summary), "", "L", false)
	pdf.Ln(4)

	section(pdf, "Estimated cost")
	pdf.MultiCell(0, 6, tr(details.CostBreakdown.String()), "", "L", false)
	pdf.Ln(4)

	if len(details.Itinerary) > 0 {
		section(pdf, "Itinerary")
		for _, day := range details.Itinerary {
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 6, tr(fmt.Sprintf("Day %d: %s", day.Day, day.Title)))
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			for _, a := range day.Activities {
				pdf.MultiCell(0, 5, tr(fmt.Sprintf("  - %s (%s): %s", a.Name, a.Type, a.Description)), "", "L", false)
			}
			pdf.Ln(2)
		}
	}

	if len(details.Locations) > 0 {
		section(pdf, "Locations")
		for _, l := range details.Locations {
			pdf.Cell(0, 5, tr(fmt.Sprintf("%s  (%.4f, %.4f)", l.Name, l.Lat, l.Lon)))
			pdf.Ln(5)
		}
		pdf.Ln(2)
	}

	if ss.Critique != "" {
		section(pdf, "Critique")
		pdf.MultiCell(0, 6, tr(ss.Critique), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
}
