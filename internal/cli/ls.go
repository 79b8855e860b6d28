package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/school-reports/internal/query"
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	addQueryFlags(fs, true)

	return &Command{
		Flags: fs,
		Usage: "ls <dataset> [flags]",
		Short: "Show one page of a dataset",
		Long: `Filter, sort and paginate a dataset and print the requested page as a table.

The dataset is a name looked up in dataset_dir (students -> students.jsonc)
or a path to a dataset file.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execLs(o, a, fs, args)
		},
	}
}

func execLs(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errDatasetArg
	}

	ds, err := a.loadDataset(args[0])
	if err != nil {
		return err
	}

	st, err := queryState(fs, ds, a.cfg.PageSize)
	if err != nil {
		return err
	}

	res := query.Run(ds.Collection, st)

	if st.PageIndex >= res.Page.TotalPages {
		o.Warn(
			fmt.Sprintf("page %d is past the last page (%d)", st.PageIndex+1, res.Page.TotalPages),
			fmt.Sprintf("use --page 1 to %d", res.Page.TotalPages),
		)
	}

	o.Printf("%s", pageTable(ds, res.Page))
	o.Println()
	o.Println(pageStatus(res.Page))
	o.Println(pageButtons(res.Page))

	return nil
}
