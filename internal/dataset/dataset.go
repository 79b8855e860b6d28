// Package dataset loads record collections and their report layout from
// HuJSON files. A dataset names its fields, which of them are searchable,
// the default sort, how each exported column is formatted and which
// aggregates make up the summary block.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/school-reports/internal/locale"
	"github.com/calvinalkan/school-reports/internal/query"
	"github.com/calvinalkan/school-reports/internal/record"
	"github.com/calvinalkan/school-reports/internal/report"
	"github.com/calvinalkan/school-reports/internal/validation"
)

// Error variables for dataset loading.
var (
	ErrDatasetRead    = errors.New("cannot read dataset file")
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrInvalidRecord  = errors.New("invalid record")
)

// ColumnFormat decides how a field value becomes a report cell.
type ColumnFormat string

// Column formats.
const (
	FormatText     ColumnFormat = "text"
	FormatNumber   ColumnFormat = "number"
	FormatCurrency ColumnFormat = "currency"
	FormatDate     ColumnFormat = "date"
	FormatTitle    ColumnFormat = "title"
)

// file is the on-disk shape of a dataset.
type file struct {
	Name        string           `json:"name" validate:"notblank"`
	Title       string           `json:"title" validate:"notblank"`
	Subtitle    string           `json:"subtitle"`
	Filename    string           `json:"filename"`
	Fields      []fieldSpec      `json:"fields" validate:"min=1,dive"`
	Searchable  []string         `json:"searchable"`
	DefaultSort *sortSpec        `json:"default_sort"`
	Columns     []columnSpec     `json:"columns" validate:"dive"`
	Metadata    []pairSpec       `json:"metadata" validate:"dive"`
	Summary     []aggregateSpec  `json:"summary" validate:"dive"`
	Records     []map[string]any `json:"records"`
}

type fieldSpec struct {
	Name    string   `json:"name" validate:"notblank"`
	Label   string   `json:"label"`
	Type    string   `json:"type" validate:"oneof=string text number date enum"`
	Options []string `json:"options"`
}

type sortSpec struct {
	Field     string `json:"field" validate:"notblank"`
	Direction string `json:"direction" validate:"omitempty,oneof=asc desc ascending descending"`
}

type columnSpec struct {
	Field  string `json:"field" validate:"notblank"`
	Header string `json:"header"`
	Format string `json:"format" validate:"omitempty,oneof=text number currency date title"`
}

type pairSpec struct {
	Label string `json:"label" validate:"notblank"`
	Value string `json:"value"`
}

type aggregateSpec struct {
	Label  string `json:"label" validate:"notblank"`
	Op     string `json:"op" validate:"oneof=count count_positive sum avg"`
	Field  string `json:"field" validate:"required_unless=Op count"`
	Equals string `json:"equals"`
	Format string `json:"format" validate:"omitempty,oneof=number currency integer"`
}

// Column is one exported column.
type Column struct {
	Field  string
	Header string
	Format ColumnFormat
}

// Dataset is a loaded collection plus its report layout.
type Dataset struct {
	Name        string
	Title       string
	Subtitle    string
	Filename    string
	Collection  record.Collection
	Searchable  []string
	DefaultSort query.SortState
	Columns     []Column
	Metadata    []report.Pair
	Summary     []Aggregate

	locale *locale.Formatter
}

// Load reads and parses the dataset at path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDatasetRead, path, err)
	}

	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return ds, nil
}

// Parse decodes a HuJSON dataset and checks every reference and record
// against the declared fields.
func Parse(data []byte) (*Dataset, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONC: %w", ErrInvalidDataset, err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var f file

	decodeErr := dec.Decode(&f)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", ErrInvalidDataset, decodeErr)
	}

	validateErr := validation.Struct(f)
	if validateErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDataset, strings.Join(validation.Messages(validateErr), "; "))
	}

	schema, err := buildSchema(f.Fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	ds := &Dataset{
		Name:       f.Name,
		Title:      f.Title,
		Subtitle:   f.Subtitle,
		Filename:   f.Filename,
		Searchable: f.Searchable,
		locale:     locale.Default,
	}

	if ds.Filename == "" {
		ds.Filename = f.Name
	}

	if err := ds.resolveLayout(schema, f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	records := make([]record.Record, 0, len(f.Records))

	for i, raw := range f.Records {
		rec, err := decodeRecord(schema, raw)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrInvalidRecord, i, err)
		}

		records = append(records, rec)
	}

	ds.Collection = record.Collection{Schema: schema, Records: records}

	return ds, nil
}

func buildSchema(specs []fieldSpec) (*record.Schema, error) {
	fields := make([]record.Field, 0, len(specs))

	for _, spec := range specs {
		typ, err := record.ParseFieldType(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", spec.Name, err)
		}

		fields = append(fields, record.Field{
			Name:    spec.Name,
			Label:   spec.Label,
			Type:    typ,
			Options: spec.Options,
		})
	}

	return record.NewSchema(fields...)
}

// resolveLayout checks the searchable set, default sort, columns and
// summary against schema and fills in the defaults.
func (d *Dataset) resolveLayout(schema *record.Schema, f file) error {
	for _, name := range f.Searchable {
		if !schema.Has(name) {
			return fmt.Errorf("%w: searchable field %s", query.ErrUnknownField, name)
		}
	}

	if len(d.Searchable) == 0 {
		for _, field := range schema.Fields() {
			if field.Type == record.String {
				d.Searchable = append(d.Searchable, field.Name)
			}
		}
	}

	if f.DefaultSort != nil {
		if !schema.Has(f.DefaultSort.Field) {
			return fmt.Errorf("%w: default sort field %s", query.ErrUnknownField, f.DefaultSort.Field)
		}

		dir, err := query.ParseDirection(f.DefaultSort.Direction)
		if err != nil {
			return err
		}

		d.DefaultSort = query.SortState{Field: f.DefaultSort.Field, Direction: dir}
	}

	columns, err := resolveColumns(schema, f.Columns)
	if err != nil {
		return err
	}

	d.Columns = columns

	for _, p := range f.Metadata {
		d.Metadata = append(d.Metadata, report.Pair{Label: p.Label, Value: p.Value})
	}

	for _, spec := range f.Summary {
		agg, err := newAggregate(schema, spec)
		if err != nil {
			return err
		}

		d.Summary = append(d.Summary, agg)
	}

	return nil
}

func resolveColumns(schema *record.Schema, specs []columnSpec) ([]Column, error) {
	if len(specs) == 0 {
		fields := schema.Fields()
		columns := make([]Column, 0, len(fields))

		for _, field := range fields {
			format := FormatText
			if field.Type == record.Number {
				format = FormatNumber
			}

			columns = append(columns, Column{Field: field.Name, Header: field.DisplayLabel(), Format: format})
		}

		return columns, nil
	}

	columns := make([]Column, 0, len(specs))

	for _, spec := range specs {
		field, ok := schema.Field(spec.Field)
		if !ok {
			return nil, fmt.Errorf("%w: column field %s", query.ErrUnknownField, spec.Field)
		}

		col := Column{Field: spec.Field, Header: spec.Header, Format: ColumnFormat(spec.Format)}
		if col.Header == "" {
			col.Header = field.DisplayLabel()
		}

		if col.Format == "" {
			col.Format = FormatText
		}

		if err := checkFormat(field, col.Format); err != nil {
			return nil, err
		}

		columns = append(columns, col)
	}

	return columns, nil
}

func checkFormat(field record.Field, format ColumnFormat) error {
	switch format {
	case FormatNumber, FormatCurrency:
		if field.Type != record.Number {
			return fmt.Errorf("column %s: format %s needs a number field, got %s", field.Name, format, field.Type)
		}
	case FormatDate:
		if field.Type != record.Date {
			return fmt.Errorf("column %s: format %s needs a date field, got %s", field.Name, format, field.Type)
		}
	}

	return nil
}

func decodeRecord(schema *record.Schema, raw map[string]any) (record.Record, error) {
	rec := make(record.Record, len(raw))

	for name, v := range raw {
		field, ok := schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", query.ErrUnknownField, name)
		}

		if v == nil {
			continue
		}

		val, err := decodeValue(field, v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}

		rec[name] = val
	}

	return rec, nil
}

func decodeValue(field record.Field, raw any) (record.Value, error) {
	switch v := raw.(type) {
	case string:
		val, err := record.ParseValue(field.Type, v)
		if err != nil {
			return record.Value{}, err
		}

		if field.Type == record.Enum && !field.AllowsOption(v) {
			return record.Value{}, fmt.Errorf("%w: %q is not one of %s", record.ErrInvalidValue, v, strings.Join(field.Options, ", "))
		}

		return val, nil
	case json.Number:
		switch field.Type {
		case record.Number:
			f, err := v.Float64()
			if err != nil {
				return record.Value{}, fmt.Errorf("%w: %s", record.ErrInvalidValue, v)
			}

			return record.NumberValue(f), nil
		case record.String:
			return record.StringValue(v.String()), nil
		default:
			return record.Value{}, fmt.Errorf("%w: number %s for %s field", record.ErrInvalidValue, v, field.Type)
		}
	default:
		return record.Value{}, fmt.Errorf("%w: unsupported JSON value %v", record.ErrInvalidValue, raw)
	}
}

// NewState returns a query state on the first page using the dataset's
// searchable fields and default sort.
func (d *Dataset) NewState(pageSize int) query.State {
	return query.NewState(d.Searchable, d.DefaultSort, pageSize)
}

// Headers returns the export column headers.
func (d *Dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		headers[i] = c.Header
	}

	return headers
}

// Cells converts rec into one report cell per column.
func (d *Dataset) Cells(rec record.Record) []report.Cell {
	cells := make([]report.Cell, len(d.Columns))
	for i, c := range d.Columns {
		cells[i] = d.cell(c, rec)
	}

	return cells
}

func (d *Dataset) cell(c Column, rec record.Record) report.Cell {
	v, ok := rec.Get(c.Field)
	if !ok {
		return report.Text("")
	}

	switch c.Format {
	case FormatNumber:
		return report.Number(v.Num())
	case FormatCurrency:
		return report.Text(d.locale.Currency(v.Num()))
	case FormatDate:
		return report.Text(d.locale.Date(v.Time()))
	case FormatTitle:
		return report.Text(locale.Title(v.Text()))
	default:
		return report.Text(v.Text())
	}
}

// Report builds the export model for rows, the full filtered and sorted
// sequence. now stamps the "Generated" metadata line.
func (d *Dataset) Report(rows []record.Record, now time.Time) (*report.Report, error) {
	body := make([][]report.Cell, len(rows))
	for i, rec := range rows {
		body[i] = d.Cells(rec)
	}

	metadata := append([]report.Pair(nil), d.Metadata...)
	metadata = append(metadata,
		report.Pair{Label: "Total Records", Value: d.locale.Number(float64(len(rows)), 0)},
		report.Pair{Label: "Generated", Value: d.locale.Date(now)},
	)

	summary := make([]report.Pair, 0, len(d.Summary))
	for _, agg := range d.Summary {
		summary = append(summary, report.Pair{Label: agg.Label, Value: agg.Format(d.locale, agg.Compute(rows))})
	}

	return report.New(d.Title, d.Headers(), body,
		report.WithSubtitle(d.Subtitle),
		report.WithMetadata(metadata...),
		report.WithSummary(summary...),
	)
}

// BaseName returns the export file name without extension,
// "<filename>_<YYYY-MM-DD>".
func (d *Dataset) BaseName(now time.Time) string {
	return d.Filename + "_" + now.Format(record.DateLayout)
}
