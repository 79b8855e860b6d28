package report

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/calvinalkan/school-reports/internal/validation"
)

// Error variables for report validation.
var (
	ErrInvalidReport = errors.New("invalid report")
	ErrTitleRequired = errors.New("report title is required")
	ErrNoColumns     = errors.New("report needs at least one column")
	ErrShapeMismatch = errors.New("row cell count does not match header count")
)

// ShapeError reports the first body row whose cell count differs from the
// header count.
type ShapeError struct {
	Row     int // zero-based body row
	Cells   int
	Columns int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: row %d has %d cells, want %d", ErrShapeMismatch, e.Row, e.Cells, e.Columns)
}

// Unwrap lets errors.Is match ErrShapeMismatch.
func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// Validate checks the report preconditions: a non-blank title, at least
// one header and every row holding exactly one cell per header. Renderers
// call it before writing anything.
func (r *Report) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil report", ErrInvalidReport)
	}

	if err := validation.Struct(r); err != nil {
		if fe, ok := validation.First(err); ok {
			return fmt.Errorf("%w: %w (%s)", ErrInvalidReport, causeFor(fe), validation.Message(fe))
		}

		return fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	for i, row := range r.Rows {
		if len(row) != len(r.Headers) {
			return fmt.Errorf("%w: %w", ErrInvalidReport, &ShapeError{Row: i, Cells: len(row), Columns: len(r.Headers)})
		}
	}

	return nil
}

func causeFor(fe validator.FieldError) error {
	switch fe.StructField() {
	case "Title":
		return ErrTitleRequired
	case "Headers":
		return ErrNoColumns
	default:
		return errors.New(fe.Error())
	}
}
