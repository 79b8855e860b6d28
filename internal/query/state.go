// Package query implements the filter, sort and paginate stages that turn a
// record collection into what a report page shows.
//
// All stages are pure functions over their inputs. The caller owns the
// [State] and threads it between calls; nothing in this package mutates a
// collection.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/school-reports/internal/record"
)

// Error variables for query preconditions.
var (
	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidPageSize  = errors.New("page size must be positive")
	ErrInvalidPageIndex = errors.New("page index must not be negative")
	ErrInvalidFilter    = errors.New("invalid filter value")
	ErrInvalidDirection = errors.New("invalid sort direction")
)

// DefaultPageSize matches the ten rows per page of the dashboard tables.
const DefaultPageSize = 10

// State is the query state of one table view: search text, per-field
// filters, sort key and page cursor.
type State struct {
	Search     string
	Searchable []string // fields the search term is matched against
	Filters    map[string][]record.Value
	Sort       SortState
	PageIndex  int // zero-based
	PageSize   int
}

// NewState returns a state on the first page with the given searchable
// fields and default sort.
func NewState(searchable []string, sort SortState, pageSize int) State {
	return State{
		Searchable: append([]string(nil), searchable...),
		Sort:       sort,
		PageSize:   pageSize,
	}
}

// WithSearch returns a copy with a new search term, back on the first page.
func (s State) WithSearch(term string) State {
	s.Search = term
	s.PageIndex = 0

	return s
}

// WithFilter returns a copy that accepts only the given values for field,
// back on the first page. An empty value list removes the filter.
func (s State) WithFilter(field string, accepted ...record.Value) State {
	filters := make(map[string][]record.Value, len(s.Filters)+1)
	for k, v := range s.Filters {
		filters[k] = v
	}

	if len(accepted) == 0 {
		delete(filters, field)
	} else {
		filters[field] = append([]record.Value(nil), accepted...)
	}

	s.Filters = filters
	s.PageIndex = 0

	return s
}

// ClearFilters drops the search term and all field filters.
func (s State) ClearFilters() State {
	s.Search = ""
	s.Filters = nil
	s.PageIndex = 0

	return s
}

// WithSort returns a copy after applying the header-click rule for field.
// The page cursor is kept.
func (s State) WithSort(field string) State {
	s.Sort = s.Sort.Toggle(field)
	return s
}

// WithPage returns a copy pointing at pageIndex.
func (s State) WithPage(pageIndex int) State {
	s.PageIndex = pageIndex
	return s
}

// Validate checks the state against schema. Filter, Sort and Paginate
// assume a valid state; callers validate once before running them.
func (s State) Validate(schema *record.Schema) error {
	for _, name := range s.Searchable {
		if !schema.Has(name) {
			return fmt.Errorf("%w: search field %s", ErrUnknownField, name)
		}
	}

	for name, accepted := range s.Filters {
		field, ok := schema.Field(name)
		if !ok {
			return fmt.Errorf("%w: filter field %s", ErrUnknownField, name)
		}

		for _, v := range accepted {
			if v.Type() != field.Type {
				return fmt.Errorf("%w: %s expects %s, got %s", ErrInvalidFilter, name, field.Type, v.Type())
			}

			if field.Type == record.Enum && !field.AllowsOption(v.Str()) {
				return fmt.Errorf("%w: %s has no option %q", ErrInvalidFilter, name, v.Str())
			}
		}
	}

	if s.Sort.Field != "" && !schema.Has(s.Sort.Field) {
		return fmt.Errorf("%w: sort field %s", ErrUnknownField, s.Sort.Field)
	}

	if s.PageSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, s.PageSize)
	}

	if s.PageIndex < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageIndex, s.PageIndex)
	}

	return nil
}

// ParseFilter parses a "field=value" argument against schema.
func ParseFilter(schema *record.Schema, arg string) (string, record.Value, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", record.Value{}, fmt.Errorf("%w: %q (want field=value)", ErrInvalidFilter, arg)
	}

	field, found := schema.Field(name)
	if !found {
		return "", record.Value{}, fmt.Errorf("%w: filter field %s", ErrUnknownField, name)
	}

	v, err := record.ParseValue(field.Type, raw)
	if err != nil {
		return "", record.Value{}, fmt.Errorf("filter %s: %w", name, err)
	}

	return name, v, nil
}

// Result is the output of running a state over a collection.
type Result struct {
	// Rows is the full filtered and sorted sequence. Exports use this, not
	// the page.
	Rows []record.Record
	Page Page[record.Record]
}

// Run applies filter, sort and pagination in order.
func Run(coll record.Collection, s State) Result {
	rows := Sort(coll.Schema, Filter(coll, s), s.Sort)

	return Result{
		Rows: rows,
		Page: Paginate(rows, s.PageIndex, s.PageSize),
	}
}
