package cli

import (
	"context"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/school-reports/internal/dataset"
)

// SchemaCmd returns the schema command.
func SchemaCmd(a *app) *Command {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "schema <dataset>",
		Short: "Describe a dataset's fields and report layout",
		Long:  "Print the fields, searchable set, default sort, export columns and summary lines of a dataset.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return errDatasetArg
			}

			ds, err := a.loadDataset(args[0])
			if err != nil {
				return err
			}

			o.Printf("%s", describe(ds))

			return nil
		},
	}
}

func describe(ds *dataset.Dataset) string {
	var b strings.Builder

	b.WriteString("name=" + ds.Name + "\n")
	b.WriteString("title=" + ds.Title + "\n")
	b.WriteString("records=" + strconv.Itoa(ds.Collection.Len()) + "\n")
	b.WriteString("searchable=" + strings.Join(ds.Searchable, ",") + "\n")
	b.WriteString("default_sort=" + ds.DefaultSort.String() + "\n")
	b.WriteString("\n")

	fields := ds.Collection.Schema.Fields()
	rows := make([][]string, len(fields))

	for i, f := range fields {
		rows[i] = []string{f.Name, f.DisplayLabel(), f.Type.String(), strings.Join(f.Options, ",")}
	}

	b.WriteString(renderTable([]string{"FIELD", "LABEL", "TYPE", "OPTIONS"}, rows))
	b.WriteString("\n")

	cols := make([][]string, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = []string{c.Header, c.Field, string(c.Format)}
	}

	b.WriteString(renderTable([]string{"COLUMN", "FIELD", "FORMAT"}, cols))

	if len(ds.Summary) > 0 {
		b.WriteString("\n")

		sums := make([][]string, len(ds.Summary))
		for i, s := range ds.Summary {
			sums[i] = []string{s.Label, string(s.Op), s.Field}
		}

		b.WriteString(renderTable([]string{"SUMMARY", "OP", "FIELD"}, sums))
	}

	return b.String()
}
