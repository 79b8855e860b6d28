package cli_test

import (
	"fmt"
	"strings"
)

// gradesDataset has three students with a numeric score column and no
// summary, so exports are easy to compare.
const gradesDataset = `// grades used by the cli tests
{
  "name": "grades",
  "title": "Grade Sheet",
  "fields": [
    {"name": "id", "label": "Student ID", "type": "string"},
    {"name": "name", "label": "Name", "type": "string"},
    {"name": "section", "type": "enum", "options": ["rizal", "bonifacio"]},
    {"name": "score", "label": "Score", "type": "number"},
  ],
  "default_sort": {"field": "id"},
  "columns": [
    {"field": "id"},
    {"field": "name"},
    {"field": "section", "format": "title"},
    {"field": "score", "format": "number"},
  ],
  "records": [
    {"id": "S-1", "name": "Santos, Maria", "section": "rizal", "score": 90},
    {"id": "S-2", "name": "Juan Cruz", "section": "bonifacio", "score": 82.5},
    {"id": "S-3", "name": "Ana Reyes", "section": "rizal", "score": 77},
  ],
}
`

// rosterDataset returns a dataset with n students named "Student 01" and
// so on, for paging tests.
func rosterDataset(n int) string {
	recs := make([]string, n)
	for i := range recs {
		recs[i] = fmt.Sprintf(`{"id": "R-%02d", "name": "Student %02d", "year": %d}`, i+1, i+1, 7+i%4)
	}

	return `{
  "name": "roster",
  "title": "Class Roster",
  "fields": [
    {"name": "id", "type": "string"},
    {"name": "name", "type": "string"},
    {"name": "year", "type": "number"},
  ],
  "default_sort": {"field": "id"},
  "records": [` + strings.Join(recs, ",\n") + `],
}`
}
