package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/calvinalkan/school-reports/internal/report"
)

// SheetName is the name of the single worksheet.
const SheetName = "Data"

const (
	minColWidth = 15
	maxColWidth = 255
)

// WorkbookRenderer writes a single-sheet XLSX workbook.
//
// Row 1 holds the title, merged across all columns, and row 2 is blank.
// Metadata pairs follow with a blank row after them, then the header row
// and the body. A summary, when present, comes after one blank row.
type WorkbookRenderer struct{}

// NewWorkbookRenderer returns the XLSX renderer.
func NewWorkbookRenderer() *WorkbookRenderer { return &WorkbookRenderer{} }

// Format implements Renderer.
func (*WorkbookRenderer) Format() Format { return FormatWorkbook }

// Extension implements Renderer.
func (*WorkbookRenderer) Extension() string { return ".xlsx" }

// Render implements Renderer.
func (*WorkbookRenderer) Render(w io.Writer, rep *report.Report) (err error) {
	if err := rep.Validate(); err != nil {
		return err
	}

	f := excelize.NewFile()

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw := sheetWriter{f: f, row: 1}

	if err := sw.put(rep.Title); err != nil {
		return err
	}

	if cols := rep.Columns(); cols > 1 {
		last, err := excelize.CoordinatesToCellName(cols, 1)
		if err != nil {
			return err
		}

		if err := f.MergeCell(SheetName, "A1", last); err != nil {
			return fmt.Errorf("merge title: %w", err)
		}
	}

	sw.skip()

	for _, p := range rep.Metadata {
		if err := sw.put(p.Label, p.Value); err != nil {
			return err
		}
	}

	if len(rep.Metadata) > 0 {
		sw.skip()
	}

	headers := make([]any, len(rep.Headers))
	for i, h := range rep.Headers {
		headers[i] = h
	}

	if err := sw.put(headers...); err != nil {
		return err
	}

	for _, row := range rep.Rows {
		values := make([]any, len(row))

		for i, c := range row {
			if c.IsNumber() {
				values[i] = c.Float()
			} else {
				values[i] = c.String()
			}
		}

		if err := sw.put(values...); err != nil {
			return err
		}
	}

	if len(rep.Summary) > 0 {
		sw.skip()

		for _, p := range rep.Summary {
			if err := sw.put(p.Label, p.Value); err != nil {
				return err
			}
		}
	}

	if err := setColumnWidths(f, rep.Headers); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

// ColumnWidth is the character width of the column under header.
func ColumnWidth(header string) float64 {
	w := max(utf8.RuneCountInString(header)+2, minColWidth)

	return float64(min(w, maxColWidth))
}

func setColumnWidths(f *excelize.File, headers []string) error {
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		if err := f.SetColWidth(SheetName, col, col, ColumnWidth(h)); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	return nil
}

// sheetWriter appends rows to the data sheet.
type sheetWriter struct {
	f   *excelize.File
	row int
}

func (s *sheetWriter) put(values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}

	if err := s.f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", s.row, err)
	}

	s.row++

	return nil
}

func (s *sheetWriter) skip() { s.row++ }
