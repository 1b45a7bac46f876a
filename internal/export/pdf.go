package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// PDF renders a document as a paginated PDF using the core fonts.
type PDF struct{}

// NewPDF creates the PDF exporter.
func NewPDF() *PDF { return &PDF{} }

func (*PDF) Format() string      { return models.FormatPDF }
func (*PDF) ContentType() string { return "application/pdf" }

// Export walks the document's block structure and emits styled paragraphs.
func (p *PDF) Export(doc models.Document, opts Options) ([]byte, error) {
	size := opts.PageSize
	if size == "" {
		size = PageA4
	}
	margin := opts.MarginMM
	if margin <= 0 {
		margin = DefaultOptions().MarginMM
	}

	pdf := fpdf.New("P", "mm", size, "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(doc.Title), "", "L", false)
	if opts.IncludeMetadata {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.MultiCell(0, 5, tr(metadataLine(doc)), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	for _, line := range scanLines(doc.Content) {
		switch line.kind {
		case lineBlank:
			pdf.Ln(3)
		case lineHeading:
			pdf.SetFont("Helvetica", "B", headingPt(line.level))
			pdf.MultiCell(0, 8, tr(stripInline(line.text)), "", "L", false)
		case lineBullet:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr("  • "+stripInline(line.text)), "", "L", false)
		case lineCode:
			pdf.SetFont("Courier", "", 10)
			pdf.MultiCell(0, 5, tr(line.text), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(stripInline(line.text)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf export: %w: %w", apperr.ErrRender, err)
	}
	return buf.Bytes(), nil
}

func headingPt(level int) float64 {
	pt := 16 - float64(level-1)*1.5
	if pt < 10 {
		pt = 10
	}
	return pt
}
