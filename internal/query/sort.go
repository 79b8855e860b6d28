package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/calvinalkan/school-reports/internal/record"
)

// Direction is a sort direction.
type Direction int

// Sort directions.
const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}

	return "asc"
}

// ParseDirection accepts asc/ascending and desc/descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// SortState is the current sort key and direction of a table view.
type SortState struct {
	Field     string
	Direction Direction
}

// Toggle applies the header-click rule: the current field flips direction,
// any other field becomes the key in ascending order.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		if s.Direction == Ascending {
			return SortState{Field: field, Direction: Descending}
		}

		return SortState{Field: field, Direction: Ascending}
	}

	return SortState{Field: field, Direction: Ascending}
}

func (s SortState) String() string {
	if s.Field == "" {
		return "(input order)"
	}

	return s.Field + " " + s.Direction.String()
}

// Sort returns a new slice with records ordered by s.Field. The sort is
// stable; descending negates the ascending comparator so equal keys keep
// their input order in both directions. An empty or unknown field returns
// a copy in input order.
func Sort(schema *record.Schema, records []record.Record, s SortState) []record.Record {
	out := slices.Clone(records)
	if out == nil {
		out = []record.Record{}
	}

	field, ok := schema.Field(s.Field)
	if !ok {
		return out
	}

	compare := comparator(field)
	if s.Direction == Descending {
		asc := compare
		compare = func(a, b record.Record) int { return -asc(a, b) }
	}

	slices.SortStableFunc(out, compare)

	return out
}

// comparator resolves the ascending comparison for field from its declared
// type. Records missing the field sort before records that have it.
func comparator(field record.Field) func(a, b record.Record) int {
	name := field.Name

	var byValue func(a, b record.Value) int

	switch field.Type {
	case record.Number:
		byValue = func(a, b record.Value) int { return cmp.Compare(a.Num(), b.Num()) }
	case record.Date:
		byValue = func(a, b record.Value) int { return a.Time().Compare(b.Time()) }
	default:
		coll := collate.New(language.English)
		byValue = func(a, b record.Value) int { return coll.CompareString(a.Str(), b.Str()) }
	}

	return func(a, b record.Record) int {
		av, aok := a.Get(name)
		bv, bok := b.Get(name)

		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return -1
		case !bok:
			return 1
		}

		return byValue(av, bv)
	}
}
