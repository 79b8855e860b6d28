package query

import (
	"strings"

	"github.com/calvinalkan/school-reports/internal/record"
)

// Filter returns the records of coll that match the search term and every
// field filter of s, in input order. An empty search and no filters return
// every record.
func Filter(coll record.Collection, s State) []record.Record {
	term := strings.ToLower(s.Search)
	out := make([]record.Record, 0, len(coll.Records))

	for _, rec := range coll.Records {
		if matchesSearch(rec, s.Searchable, term) && matchesFilters(rec, s.Filters) {
			out = append(out, rec)
		}
	}

	return out
}

func matchesSearch(rec record.Record, fields []string, term string) bool {
	if term == "" {
		return true
	}

	for _, name := range fields {
		v, ok := rec.Get(name)
		if !ok {
			continue
		}

		if strings.Contains(strings.ToLower(v.Text()), term) {
			return true
		}
	}

	return false
}

func matchesFilters(rec record.Record, filters map[string][]record.Value) bool {
	for name, accepted := range filters {
		if len(accepted) == 0 {
			continue
		}

		v, ok := rec.Get(name)
		if !ok {
			return false
		}

		if !containsValue(accepted, v) {
			return false
		}
	}

	return true
}

func containsValue(set []record.Value, v record.Value) bool {
	for _, candidate := range set {
		if candidate.Equal(v) {
			return true
		}
	}

	return false
}
