package report_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/school-reports/internal/report"
)

func Test_New_Builds_Valid_Report(t *testing.T) {
	t.Parallel()

	rep, err := report.New(
		"Student Directory",
		[]string{"ID", "Name", "GPA"},
		[][]report.Cell{
			{report.Text("2024-0001"), report.Text("Maria Santos"), report.Number(1.25)},
		},
		report.WithSubtitle("Academic Year 2024-2025"),
		report.WithMetadata(report.Pair{Label: "Total Students", Value: "1"}),
		report.WithSummary(report.Pair{Label: "Active", Value: "1"}),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Columns())
	assert.Equal(t, "Academic Year 2024-2025", rep.Subtitle)
	assert.Len(t, rep.Metadata, 1)
	assert.Len(t, rep.Summary, 1)
}

func Test_New_Accepts_Zero_Rows(t *testing.T) {
	t.Parallel()

	rep, err := report.New("Empty", []string{"ID"}, nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
}

func Test_Validate_Preconditions(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		title   string
		headers []string
		rows    [][]report.Cell
		wantErr error
	}{
		{name: "missing title", title: "", headers: []string{"ID"}, wantErr: report.ErrTitleRequired},
		{name: "blank title", title: "   ", headers: []string{"ID"}, wantErr: report.ErrTitleRequired},
		{name: "no headers", title: "T", headers: nil, wantErr: report.ErrNoColumns},
		{
			name:    "short row",
			title:   "T",
			headers: []string{"ID", "Name"},
			rows:    [][]report.Cell{report.Texts("1", "A"), report.Texts("2")},
			wantErr: report.ErrShapeMismatch,
		},
		{
			name:    "long row",
			title:   "T",
			headers: []string{"ID"},
			rows:    [][]report.Cell{report.Texts("1", "extra")},
			wantErr: report.ErrShapeMismatch,
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rep, err := report.New(tt.title, tt.headers, tt.rows)
			require.Nil(t, rep)
			require.ErrorIs(t, err, report.ErrInvalidReport)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_ShapeError_Details(t *testing.T) {
	t.Parallel()

	rep := &report.Report{
		Title:   "Grades",
		Headers: []string{"ID", "Name", "Grade"},
		Rows: [][]report.Cell{
			report.Texts("1", "A", "90"),
			report.Texts("2", "B"),
		},
	}

	err := rep.Validate()

	var shapeErr *report.ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 1, shapeErr.Row)
	assert.Equal(t, 2, shapeErr.Cells)
	assert.Equal(t, 3, shapeErr.Columns)
	assert.Contains(t, err.Error(), "row 1 has 2 cells, want 3")
}

func Test_Validate_Nil_Report(t *testing.T) {
	t.Parallel()

	var rep *report.Report
	require.ErrorIs(t, rep.Validate(), report.ErrInvalidReport)
}

func Test_Cell_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "90", report.Number(90).String())
	assert.Equal(t, "82.5", report.Number(82.5).String())
	assert.Equal(t, "18500", report.Number(18500).String())
	assert.Equal(t, "PHP 18,500.00", report.Text("PHP 18,500.00").String())
	assert.True(t, report.Number(1).IsNumber())
	assert.False(t, report.Text("1").IsNumber())
}
