package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/school-reports/internal/dataset"
	"github.com/calvinalkan/school-reports/internal/export"
	"github.com/calvinalkan/school-reports/internal/query"
)

var errFormatRequired = errors.New("--format is required")

// ExportCmd returns the export command.
func ExportCmd(a *app) *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.StringP("format", "F", "", "Export `format`: pdf, excel or csv")
	fs.StringP("name", "n", "", "Base file `name` without extension (default: <filename>_<date>)")
	addQueryFlags(fs, false)

	return &Command{
		Flags: fs,
		Usage: "export <dataset> --format <fmt> [flags]",
		Short: "Export a dataset to PDF, Excel or CSV",
		Long: `Export every row that matches the search and filters, in sort order,
to the output directory. Pagination never limits an export.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execExport(o, a, fs, args)
		},
	}
}

func execExport(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errDatasetArg
	}

	raw, _ := fs.GetString("format")
	if strings.TrimSpace(raw) == "" {
		return errFormatRequired
	}

	format, err := export.ParseFormat(raw)
	if err != nil {
		return err
	}

	ds, err := a.loadDataset(args[0])
	if err != nil {
		return err
	}

	st, err := queryState(fs, ds, a.cfg.PageSize)
	if err != nil {
		return err
	}

	name, _ := fs.GetString("name")

	art, err := a.export(ds, st, format, name)
	if err != nil {
		return err
	}

	o.Println(art.Path)

	return nil
}

// export runs st over ds and saves the full result in format. An empty
// name falls back to the dataset's dated base name.
func (a *app) export(ds *dataset.Dataset, st query.State, format export.Format, name string) (export.Artifact, error) {
	res := query.Run(ds.Collection, st)

	now := a.now()

	rep, err := ds.Report(res.Rows, now)
	if err != nil {
		return export.Artifact{}, fmt.Errorf("build report: %w", err)
	}

	if name == "" {
		name = ds.BaseName(now)
	}

	return a.engine.Export(format, rep, a.cfg.OutputDirAbs, name)
}
