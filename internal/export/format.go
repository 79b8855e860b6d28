// Package export renders a report.Report into downloadable artifacts: a
// paginated PDF document, an XLSX workbook and a CSV file.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// Format names one export target.
type Format string

// Supported formats. The string values are the user-facing names.
const (
	FormatDocument  Format = "pdf"
	FormatWorkbook  Format = "excel"
	FormatDelimited Format = "csv"
)

// Error variables for export.
var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrRender        = errors.New("render failed")
	ErrSave          = errors.New("save failed")
	ErrBaseNameEmpty = errors.New("export name cannot be empty")
)

// AllFormats lists the formats in display order.
func AllFormats() []Format {
	return []Format{FormatDocument, FormatWorkbook, FormatDelimited}
}

// ParseFormat accepts the canonical names and a few aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf", "document":
		return FormatDocument, nil
	case "excel", "xlsx", "workbook":
		return FormatWorkbook, nil
	case "csv", "delimited":
		return FormatDelimited, nil
	default:
		return "", fmt.Errorf("%w: %q (want pdf, excel or csv)", ErrUnknownFormat, s)
	}
}

func (f Format) String() string { return string(f) }
