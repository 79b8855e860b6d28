// Package record defines the in-memory record collections the report
// pipeline works on: a typed schema, scalar values and rows keyed by field
// name.
package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldType is the declared type of a schema field. It decides how values
// are parsed, compared and displayed.
type FieldType int

// Field types.
const (
	String FieldType = iota + 1
	Number
	Date
	Enum
)

// DateLayout is the display and primary parse layout for date values.
const DateLayout = "2006-01-02"

// Error variables for schema and value handling.
var (
	ErrUnknownFieldType = errors.New("unknown field type")
	ErrEmptyFieldName   = errors.New("field name cannot be empty")
	ErrDuplicateField   = errors.New("duplicate field")
	ErrInvalidValue     = errors.New("invalid value")
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Date:
		return "date"
	case Enum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParseFieldType parses the textual form used in dataset files.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return String, nil
	case "number":
		return Number, nil
	case "date":
		return Date, nil
	case "enum":
		return Enum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFieldType, s)
	}
}

// Field describes one column of a collection.
type Field struct {
	Name    string
	Label   string
	Type    FieldType
	Options []string // enum tags, empty when unrestricted
}

// DisplayLabel returns Label, falling back to Name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}

	return f.Name
}

// AllowsOption reports whether tag is acceptable for an enum field.
// Fields without declared options accept any tag.
func (f Field) AllowsOption(tag string) bool {
	if len(f.Options) == 0 {
		return true
	}

	for _, opt := range f.Options {
		if opt == tag {
			return true
		}
	}

	return false
}

// Schema is the ordered, homogeneous field set of a collection.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates the fields and builds a schema.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, ErrEmptyFieldName
		}

		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}

		if f.Type.String() == "unknown" {
			return nil, fmt.Errorf("%w: field %s", ErrUnknownFieldType, f.Name)
		}

		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	return s, nil
}

// MustSchema is NewSchema for static schemas; it panics on error.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}

	return s
}

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)

	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}

	return s.fields[i], true
}

// Has reports whether the schema declares name.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Value is a typed scalar cell of a record.
type Value struct {
	typ FieldType
	str string
	num float64
	at  time.Time
}

// StringValue returns a string value.
func StringValue(s string) Value { return Value{typ: String, str: s} }

// NumberValue returns a numeric value.
func NumberValue(f float64) Value { return Value{typ: Number, num: f} }

// DateValue returns a date value.
func DateValue(t time.Time) Value { return Value{typ: Date, at: t} }

// EnumValue returns an enum tag value.
func EnumValue(tag string) Value { return Value{typ: Enum, str: tag} }

// Type returns the value's type; zero for the zero Value.
func (v Value) Type() FieldType { return v.typ }

// IsZero reports whether v was never set.
func (v Value) IsZero() bool { return v.typ == 0 }

// Str returns the string or enum payload.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.num }

// Time returns the date payload.
func (v Value) Time() time.Time { return v.at }

// Text returns the plain display form used for searching and as the
// default report cell text.
func (v Value) Text() string {
	switch v.typ {
	case String, Enum:
		return v.str
	case Number:
		return FormatNumber(v.num)
	case Date:
		return v.at.Format(DateLayout)
	default:
		return ""
	}
}

// Equal compares type and payload. Dates compare by instant.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}

	switch v.typ {
	case Number:
		return v.num == o.num
	case Date:
		return v.at.Equal(o.at)
	default:
		return v.str == o.str
	}
}

// FormatNumber renders f in its shortest decimal form without exponent,
// e.g. 90, 90.5, 18500.
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseValue parses s as a value of type t.
func ParseValue(t FieldType, s string) (Value, error) {
	switch t {
	case String:
		return StringValue(s), nil
	case Enum:
		return EnumValue(s), nil
	case Number:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
		}

		return NumberValue(f), nil
	case Date:
		at, err := ParseDate(s)
		if err != nil {
			return Value{}, err
		}

		return DateValue(at), nil
	default:
		return Value{}, fmt.Errorf("%w: %d", ErrUnknownFieldType, t)
	}
}

// ParseDate accepts 2006-01-02 and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if at, err := time.Parse(DateLayout, s); err == nil {
		return at, nil
	}

	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidValue, s)
	}

	return at, nil
}

// Record is one row, keyed by field name. Records are treated as immutable
// once handed to the pipeline.
type Record map[string]Value

// Get returns the value of field name.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r[name]
	return v, ok
}

// Collection is an ordered sequence of records sharing one schema.
type Collection struct {
	Schema  *Schema
	Records []Record
}

// Len returns the number of records.
func (c Collection) Len() int { return len(c.Records) }

// WithRecords returns a collection over the same schema holding recs.
func (c Collection) WithRecords(recs []Record) Collection {
	return Collection{Schema: c.Schema, Records: recs}
}
