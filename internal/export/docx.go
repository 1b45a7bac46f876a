package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// DOCX assembles a minimal OOXML word-processing package. The payload is
// templated XML inside a zip container; formatting is carried by inline run
// properties so no styles part is needed.
type DOCX struct{}

// NewDOCX creates the DOCX exporter.
func NewDOCX() *DOCX { return &DOCX{} }

func (*DOCX) Format() string { return models.FormatDOCX }
func (*DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>
`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>
`

// Export writes the three-part package: content types, relationships, and
// the document body.
func (d *DOCX) Export(doc models.Document, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", documentXML(doc, opts)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("docx export: %w: %w", apperr.ErrRender, err)
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("docx export: %w: %w", apperr.ErrRender, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx export: %w: %w", apperr.ErrRender, err)
	}
	return buf.Bytes(), nil
}

func documentXML(doc models.Document, opts Options) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	// Title, then the optional metadata line in small gray italics.
	b.WriteString(paragraph(doc.Title, runProps{bold: true, halfPoints: 40}))
	if opts.IncludeMetadata {
		b.WriteString(paragraph(metadataLine(doc), runProps{italic: true, halfPoints: 16, color: "808080"}))
	}

	for _, line := range scanLines(doc.Content) {
		switch line.kind {
		case lineBlank:
			b.WriteString("<w:p/>")
		case lineHeading:
			b.WriteString(paragraph(stripInline(line.text), runProps{bold: true, halfPoints: headingHalfPoints(line.level)}))
		case lineBullet:
			b.WriteString(paragraph("• "+stripInline(line.text), runProps{}))
		case lineCode:
			b.WriteString(paragraph(line.text, runProps{mono: true, halfPoints: 18}))
		default:
			b.WriteString(paragraph(stripInline(line.text), runProps{}))
		}
	}

	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

type runProps struct {
	bold       bool
	italic     bool
	mono       bool
	halfPoints int
	color      string
}

func paragraph(text string, props runProps) string {
	var b strings.Builder
	b.WriteString("<w:p><w:r>")
	if props != (runProps{}) {
		b.WriteString("<w:rPr>")
		if props.mono {
			b.WriteString(`<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/>`)
		}
		if props.bold {
			b.WriteString("<w:b/>")
		}
		if props.italic {
			b.WriteString("<w:i/>")
		}
		if props.color != "" {
			b.WriteString(`<w:color w:val="` + props.color + `"/>`)
		}
		if props.halfPoints > 0 {
			fmt.Fprintf(&b, `<w:sz w:val="%d"/>`, props.halfPoints)
		}
		b.WriteString("</w:rPr>")
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString("</w:t></w:r></w:p>")
	return b.String()
}

func headingHalfPoints(level int) int {
	hp := 32 - (level-1)*4
	if hp < 22 {
		hp = 22
	}
	return hp
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
