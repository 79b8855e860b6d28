package cli

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/school-reports/internal/dataset"
	"github.com/calvinalkan/school-reports/internal/query"
	"github.com/calvinalkan/school-reports/internal/record"
)

var errInvalidPage = errors.New("--page must be at least 1")

// addQueryFlags registers the flags shared by ls and export. Paging flags
// are only added when paging is true.
func addQueryFlags(fs *flag.FlagSet, paging bool) {
	fs.StringP("search", "s", "", "Case-insensitive search over the searchable fields")
	fs.StringArrayP("filter", "f", nil, "Keep rows where `field=value` (repeatable; values of one field are OR-ed)")
	fs.String("sort", "", "Sort by `field` (default: the dataset's default sort)")
	fs.Bool("desc", false, "Sort descending")

	if paging {
		fs.IntP("page", "p", 1, "Page `number` to show (1-based)")
		fs.Int("page-size", 0, "Rows per page (default: page_size from config)")
	}
}

// queryState builds and validates the query state described by the flags.
func queryState(fs *flag.FlagSet, ds *dataset.Dataset, defaultPageSize int) (query.State, error) {
	pageSize := defaultPageSize
	if fs.Lookup("page-size") != nil && fs.Changed("page-size") {
		pageSize, _ = fs.GetInt("page-size")
	}

	st := ds.NewState(pageSize)

	search, _ := fs.GetString("search")
	if search != "" {
		st = st.WithSearch(search)
	}

	filters, _ := fs.GetStringArray("filter")

	accepted := make(map[string][]record.Value)
	order := make([]string, 0, len(filters))

	for _, arg := range filters {
		name, v, err := query.ParseFilter(ds.Collection.Schema, arg)
		if err != nil {
			return query.State{}, err
		}

		if _, seen := accepted[name]; !seen {
			order = append(order, name)
		}

		accepted[name] = append(accepted[name], v)
	}

	for _, name := range order {
		st = st.WithFilter(name, accepted[name]...)
	}

	desc, _ := fs.GetBool("desc")

	dir := query.Ascending
	if desc {
		dir = query.Descending
	}

	if sortField, _ := fs.GetString("sort"); sortField != "" {
		st.Sort = query.SortState{Field: sortField, Direction: dir}
	} else if desc {
		st.Sort.Direction = query.Descending
	}

	if fs.Lookup("page") != nil {
		page, _ := fs.GetInt("page")
		if page < 1 {
			return query.State{}, fmt.Errorf("%w: %d", errInvalidPage, page)
		}

		st = st.WithPage(page - 1)
	}

	if err := st.Validate(ds.Collection.Schema); err != nil {
		return query.State{}, err
	}

	return st, nil
}
