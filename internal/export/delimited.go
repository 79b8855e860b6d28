package export

import (
	"io"
	"strings"

	"github.com/calvinalkan/school-reports/internal/report"
)

// DelimitedRenderer writes comma separated text.
//
// Layout: metadata lines and a blank line (only when metadata exists), the
// header line, one line per row, then a blank line and the summary lines
// when a summary exists. Lines are joined by "\n" with no trailing newline.
type DelimitedRenderer struct{}

// NewDelimitedRenderer returns the CSV renderer.
func NewDelimitedRenderer() *DelimitedRenderer { return &DelimitedRenderer{} }

// Format implements Renderer.
func (*DelimitedRenderer) Format() Format { return FormatDelimited }

// Extension implements Renderer.
func (*DelimitedRenderer) Extension() string { return ".csv" }

// Render implements Renderer.
func (*DelimitedRenderer) Render(w io.Writer, rep *report.Report) error {
	if err := rep.Validate(); err != nil {
		return err
	}

	lines := make([]string, 0, len(rep.Rows)+len(rep.Metadata)+len(rep.Summary)+3)

	for _, p := range rep.Metadata {
		lines = append(lines, joinFields(p.Label, p.Value))
	}

	if len(rep.Metadata) > 0 {
		lines = append(lines, "")
	}

	lines = append(lines, joinFields(rep.Headers...))

	fields := make([]string, rep.Columns())
	for _, row := range rep.Rows {
		for i, c := range row {
			fields[i] = c.String()
		}

		lines = append(lines, joinFields(fields...))
	}

	if len(rep.Summary) > 0 {
		lines = append(lines, "")

		for _, p := range rep.Summary {
			lines = append(lines, joinFields(p.Label, p.Value))
		}
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))

	return err
}

func joinFields(fields ...string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeField(f)
	}

	return strings.Join(escaped, ",")
}

// EscapeField quotes f when it contains a comma, a double quote or a
// newline, doubling embedded quotes. Anything else is written bare.
func EscapeField(f string) string {
	if !strings.ContainsAny(f, ",\"\n") {
		return f
	}

	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
