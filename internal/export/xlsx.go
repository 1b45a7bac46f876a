package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// XLSX writes a document as a spreadsheet: a metadata block followed by one
// content line per row. Useful for table-heavy notes and bulk processing.
type XLSX struct{}

// NewXLSX creates the XLSX exporter.
func NewXLSX() *XLSX { return &XLSX{} }

func (*XLSX) Format() string { return models.FormatXLSX }
func (*XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

const xlsxSheet = "Document"

func (x *XLSX) Export(doc models.Document, opts Options) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	fail := func(err error) ([]byte, error) {
		return nil, fmt.Errorf("xlsx export: %w: %w", apperr.ErrRender, err)
	}

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fail(err)
	}

	rows := [][]any{{"Title", doc.Title}}
	if opts.IncludeMetadata {
		rows = append(rows,
			[]any{"Created", doc.CreatedAt.Format(time.RFC3339)},
			[]any{"Modified", doc.ModifiedAt.Format(time.RFC3339)},
			[]any{"Size", doc.Size},
			[]any{"Tags", strings.Join(doc.Tags, ", ")},
		)
	}
	rows = append(rows, nil)
	for _, line := range strings.Split(doc.Content, "\n") {
		rows = append(rows, []any{line})
	}

	for i, cells := range rows {
		for j, v := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fail(err)
			}
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return fail(err)
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fail(err)
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "A1", bold); err != nil {
		return fail(err)
	}
	// Content lines live in column A, so it gets the width.
	if err := f.SetColWidth(xlsxSheet, "A", "A", 90); err != nil {
		return fail(err)
	}
	if err := f.SetColWidth(xlsxSheet, "B", "B", 40); err != nil {
		return fail(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fail(err)
	}
	return buf.Bytes(), nil
}
