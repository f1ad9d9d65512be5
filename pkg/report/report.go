// Package report renders a PDF summary of a parsed Touchstone sweep:
// a title block, the reference resistance table, and one row per
// sweep point giving the (1,1) element's linear magnitude and phase
// (degrees).
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/kmoss-rf/touchstone/pkg/session"
)

const (
	inchToMm        = 25.4
	pageWidth       = 11 * inchToMm
	pageHeight      = 8.5 * inchToMm
	margin          = 0.4 * inchToMm
	contentWidth    = pageWidth - 2*margin
	defaultRowMm    = 6.0
	maxUsableHeight = pageHeight - 2*margin
)

// pdfStyler mirrors the named-style-closure pattern used for the
// mlcAnalyser PDF reports: a small map of style names to setter funcs.
type pdfStyler struct {
	pdf      *gofpdf.Fpdf
	styles   map[string]func()
	currentY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{pdf: pdf, styles: make(map[string]func()), currentY: margin}
	s.styles["h1"] = func() { pdf.SetFont("Arial", "B", 16) }
	s.styles["normal"] = func() { pdf.SetFont("Arial", "", 10) }
	s.styles["tableHeader"] = func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200)
	}
	s.styles["tableCell"] = func() { pdf.SetFont("Arial", "", 9) }
	return s
}

func (s *pdfStyler) apply(name string) {
	if fn, ok := s.styles[name]; ok {
		fn()
		return
	}
	s.styles["normal"]()
}

func (s *pdfStyler) checkAddPage(need float64) {
	if s.currentY+need > maxUsableHeight {
		s.pdf.AddPage()
		s.currentY = margin
	}
}

func (s *pdfStyler) writeLine(text, style, align string) {
	s.apply(style)
	s.checkAddPage(defaultRowMm)
	s.pdf.SetXY(margin, s.currentY)
	s.pdf.CellFormat(contentWidth, defaultRowMm, text, "", 1, align, false, 0, "")
	s.currentY = s.pdf.GetY()
}

// Generate renders a landscape PDF summary of sum and returns the PDF
// bytes.
func Generate(sum session.Summary) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.AddPage()
	s := newPDFStyler(pdf)

	title := sum.FileName
	if title == "" {
		title = "(unnamed session)"
	}
	s.writeLine(fmt.Sprintf("Touchstone summary: %s", title), "h1", "C")
	s.writeLine(fmt.Sprintf("Ports: %d   Parameter: %c   Session: %s", sum.Ports, orDash(sum.ParamKind), sum.SessionID), "normal", "L")

	if len(sum.References) > 0 {
		row := "Reference (ohm):"
		for i, r := range sum.References {
			row += fmt.Sprintf(" port%d=%.4g", i+1, r)
		}
		s.writeLine(row, "normal", "L")
	}

	if len(sum.Warnings) > 0 {
		s.writeLine(fmt.Sprintf("%d warning(s) during parsing", len(sum.Warnings)), "normal", "L")
	}

	if sum.Ports > 0 && len(sum.DataFrequencies) > 0 {
		writeDataTable(s, sum)
	}
	if len(sum.NoiseFrequencies) > 0 {
		writeNoiseTable(s, sum)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDataTable(s *pdfStyler, sum session.Summary) {
	e := 2 * sum.Ports * sum.Ports
	headers := []string{"Freq (Hz)", "|Sii| (linear)", "angle Sii (deg)"}
	widths := []float64{contentWidth * 0.4, contentWidth * 0.3, contentWidth * 0.3}

	s.checkAddPage(defaultRowMm)
	sY := s.currentY
	s.apply("tableHeader")
	sX := margin
	for i, h := range headers {
		s.pdf.SetXY(sX, sY)
		s.pdf.CellFormat(widths[i], defaultRowMm, h, "1", 0, "C", true, 0, "")
		sX += widths[i]
	}
	s.currentY = sY + defaultRowMm

	diagIdx := 0 // element (0,0) is always index 0 in row-major storage
	for i, freq := range sum.DataFrequencies {
		s.checkAddPage(defaultRowMm)
		base := i*e + diagIdx*2
		if base+1 >= len(sum.DataValues) {
			break
		}
		mag, phase := sum.DataValues[base], sum.DataValues[base+1]
		row := []string{
			fmt.Sprintf("%.6g", freq),
			fmt.Sprintf("%.4g", mag),
			fmt.Sprintf("%.4g", phase*180/3.141592653589793),
		}
		sX = margin
		s.apply("tableCell")
		for j, cell := range row {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(widths[j], defaultRowMm, cell, "1", 0, "C", false, 0, "")
			sX += widths[j]
		}
		s.currentY += defaultRowMm
	}
}

func writeNoiseTable(s *pdfStyler, sum session.Summary) {
	headers := []string{"Freq (Hz)", "NFmin (linear)", "|Gopt|", "angle Gopt (deg)", "Rn (norm)"}
	widths := []float64{contentWidth * 0.2, contentWidth * 0.2, contentWidth * 0.2, contentWidth * 0.2, contentWidth * 0.2}

	s.checkAddPage(defaultRowMm)
	s.writeLine("Noise data", "normal", "L")
	sY := s.currentY
	s.apply("tableHeader")
	sX := margin
	for i, h := range headers {
		s.pdf.SetXY(sX, sY)
		s.pdf.CellFormat(widths[i], defaultRowMm, h, "1", 0, "C", true, 0, "")
		sX += widths[i]
	}
	s.currentY = sY + defaultRowMm

	for i := range sum.NoiseFrequencies {
		s.checkAddPage(defaultRowMm)
		base := i * 5
		if base+4 >= len(sum.NoiseValues) {
			break
		}
		row := []string{
			fmt.Sprintf("%.6g", sum.NoiseValues[base]),
			fmt.Sprintf("%.4g", sum.NoiseValues[base+1]),
			fmt.Sprintf("%.4g", sum.NoiseValues[base+2]),
			fmt.Sprintf("%.4g", sum.NoiseValues[base+3]*180/3.141592653589793),
			fmt.Sprintf("%.4g", sum.NoiseValues[base+4]),
		}
		sX = margin
		s.apply("tableCell")
		for j, cell := range row {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(widths[j], defaultRowMm, cell, "1", 0, "C", false, 0, "")
			sX += widths[j]
		}
		s.currentY += defaultRowMm
	}
}

func orDash(b byte) rune {
	if b == 0 {
		return '-'
	}
	return rune(b)
}
