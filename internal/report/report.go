// Package report holds the format-independent report model shared by every
// export renderer: a title block, metadata pairs, a header/body table and a
// trailing summary.
package report

import (
	"math"
	"strconv"
)

// Cell is one body cell: either text or a number. Numbers stay numeric so
// spreadsheet output can sort and sum them.
type Cell struct {
	text  string
	num   float64
	isNum bool
}

// Text returns a text cell.
func Text(s string) Cell { return Cell{text: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{num: f, isNum: true} }

// IsNumber reports whether the cell is numeric.
func (c Cell) IsNumber() bool { return c.isNum }

// Float returns the numeric payload, 0 for text cells.
func (c Cell) Float() float64 { return c.num }

// String returns the cell as text. Numbers use their shortest decimal form
// (90, 82.5), never an exponent.
func (c Cell) String() string {
	if !c.isNum {
		return c.text
	}

	if math.IsInf(c.num, 0) || math.IsNaN(c.num) {
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	}

	return strconv.FormatFloat(c.num, 'f', -1, 64)
}

// Texts converts strings to text cells.
func Texts(values ...string) []Cell {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Text(v)
	}

	return cells
}

// Pair is a label/value line of the metadata or summary block.
type Pair struct {
	Label string
	Value string
}

// Report is the abstract description of one export. It is built per export
// call and not mutated afterwards.
type Report struct {
	Title    string   `validate:"notblank"`
	Subtitle string
	Headers  []string `validate:"min=1"`
	Rows     [][]Cell
	Metadata []Pair
	Summary  []Pair
}

// Option configures optional report parts in New.
type Option func(*Report)

// WithSubtitle sets the subtitle line.
func WithSubtitle(s string) Option {
	return func(r *Report) { r.Subtitle = s }
}

// WithMetadata appends metadata pairs, rendered above the table.
func WithMetadata(pairs ...Pair) Option {
	return func(r *Report) { r.Metadata = append(r.Metadata, pairs...) }
}

// WithSummary appends summary pairs, rendered below the table.
func WithSummary(pairs ...Pair) Option {
	return func(r *Report) { r.Summary = append(r.Summary, pairs...) }
}

// New builds and validates a report. The returned error wraps
// ErrInvalidReport and a more specific cause.
func New(title string, headers []string, rows [][]Cell, opts ...Option) (*Report, error) {
	r := &Report{
		Title:   title,
		Headers: append([]string(nil), headers...),
		Rows:    rows,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Columns returns the header count C.
func (r *Report) Columns() int { return len(r.Headers) }
