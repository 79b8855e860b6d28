package dataset

import (
	"fmt"

	"github.com/calvinalkan/school-reports/internal/locale"
	"github.com/calvinalkan/school-reports/internal/query"
	"github.com/calvinalkan/school-reports/internal/record"
)

// AggregateOp is a summary computation.
type AggregateOp string

// Aggregate operations.
const (
	OpCount         AggregateOp = "count"
	OpCountPositive AggregateOp = "count_positive"
	OpSum           AggregateOp = "sum"
	OpAvg           AggregateOp = "avg"
)

// Aggregate is one summary line: a label and a value computed over the
// exported rows.
type Aggregate struct {
	Label  string
	Op     AggregateOp
	Field  string
	Equals string // count only: match rows whose field text equals this
	Style  string // number, currency or integer; empty picks by Op
}

func newAggregate(schema *record.Schema, spec aggregateSpec) (Aggregate, error) {
	agg := Aggregate{
		Label:  spec.Label,
		Op:     AggregateOp(spec.Op),
		Field:  spec.Field,
		Equals: spec.Equals,
		Style:  spec.Format,
	}

	if agg.Field == "" {
		return agg, nil
	}

	field, ok := schema.Field(agg.Field)
	if !ok {
		return Aggregate{}, fmt.Errorf("%w: summary %q field %s", query.ErrUnknownField, agg.Label, agg.Field)
	}

	if agg.Op != OpCount && field.Type != record.Number {
		return Aggregate{}, fmt.Errorf("summary %q: %s needs a number field, got %s", agg.Label, agg.Op, field.Type)
	}

	return agg, nil
}

// Compute evaluates the aggregate over rows. The average of no rows is 0.
func (a Aggregate) Compute(rows []record.Record) float64 {
	switch a.Op {
	case OpCount:
		if a.Field == "" {
			return float64(len(rows))
		}

		n := 0

		for _, rec := range rows {
			v, ok := rec.Get(a.Field)
			if ok && (a.Equals == "" || v.Text() == a.Equals) {
				n++
			}
		}

		return float64(n)
	case OpCountPositive:
		n := 0

		for _, rec := range rows {
			if v, ok := rec.Get(a.Field); ok && v.Num() > 0 {
				n++
			}
		}

		return float64(n)
	case OpSum, OpAvg:
		sum, n := 0.0, 0

		for _, rec := range rows {
			if v, ok := rec.Get(a.Field); ok {
				sum += v.Num()
				n++
			}
		}

		if a.Op == OpSum {
			return sum
		}

		if n == 0 {
			return 0
		}

		return sum / float64(n)
	default:
		return 0
	}
}

// Format renders v for the summary block.
func (a Aggregate) Format(l *locale.Formatter, v float64) string {
	style := a.Style
	if style == "" {
		style = "number"
		if a.Op == OpCount || a.Op == OpCountPositive {
			style = "integer"
		}
	}

	switch style {
	case "currency":
		return l.Currency(v)
	case "integer":
		return l.Number(v, 0)
	default:
		return l.Number(v, 2)
	}
}
