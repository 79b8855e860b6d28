package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/school-reports/internal/dataset"
	"github.com/calvinalkan/school-reports/internal/export"
	"github.com/calvinalkan/school-reports/internal/query"
	"github.com/calvinalkan/school-reports/internal/record"
)

const browsePrompt = "rpt> "

var (
	errNoNextPage   = errors.New("already on the last page")
	errNoPrevPage   = errors.New("already on the first page")
	errPageRange    = errors.New("page out of range")
	errUsage        = errors.New("usage")
	errUnknownInput = errors.New("unknown command")
)

// BrowseCmd returns the browse command.
func BrowseCmd(a *app) *Command {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.Int("page-size", 0, "Rows per page (default: page_size from config)")

	return &Command{
		Flags: fs,
		Usage: "browse <dataset> [flags]",
		Short: "Interactively search, filter, sort, page and export a dataset",
		Long: `Open an interactive table view of a dataset. Type 'help' at the prompt
for the available commands. Commands are read from stdin, so a script can
be piped in.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return errDatasetArg
			}

			ds, err := a.loadDataset(args[0])
			if err != nil {
				return err
			}

			pageSize := a.cfg.PageSize
			if fs.Changed("page-size") {
				pageSize, _ = fs.GetInt("page-size")
			}

			st := ds.NewState(pageSize)
			if err := st.Validate(ds.Collection.Schema); err != nil {
				return err
			}

			s := &session{app: a, ds: ds, st: st, o: o}

			return s.run(ctx, newLineReader(a.in, s.complete))
		},
	}
}

// lineReader yields one input line per call. io.EOF ends the session.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// newLineReader uses liner when in is an interactive terminal and a plain
// scanner otherwise.
func newLineReader(in io.Reader, complete liner.Completer) lineReader {
	if in == nil {
		in = strings.NewReader("")
	}

	if f, ok := in.(*os.File); ok && isTerminal(f) && liner.TerminalSupported() {
		st := liner.NewLiner()
		st.SetCtrlCAborts(true)
		st.SetCompleter(complete)

		r := &termReader{state: st, history: historyFile()}
		r.loadHistory()

		return r
	}

	return &scanReader{scanner: bufio.NewScanner(in)}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".rpt_history")
}

type termReader struct {
	state   *liner.State
	history string
}

func (r *termReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}

	if err == nil && strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}

	return line, err
}

func (r *termReader) loadHistory() {
	if r.history == "" {
		return
	}

	f, err := os.Open(r.history)
	if err != nil {
		return
	}

	defer func() { _ = f.Close() }()

	_, _ = r.state.ReadHistory(f)
}

func (r *termReader) Close() error {
	if r.history != "" {
		if f, err := os.Create(r.history); err == nil {
			_, _ = r.state.WriteHistory(f)
			_ = f.Close()
		}
	}

	return r.state.Close()
}

type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) ReadLine(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}

	if err := r.scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (*scanReader) Close() error { return nil }

// session is one browse loop over a dataset. Every command replaces st
// with a new validated state; an invalid command leaves it untouched.
type session struct {
	app *app
	ds  *dataset.Dataset
	st  query.State
	o   *IO
}

func (s *session) run(ctx context.Context, in lineReader) error {
	defer func() { _ = in.Close() }()

	s.o.Println(s.ds.Title)
	s.o.Println("Type 'help' for available commands.")
	s.o.Println()
	s.show()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := in.ReadLine(browsePrompt)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		quit, err := s.exec(line)
		if err != nil {
			s.o.ErrPrintln("error:", err)
		}

		if quit {
			return nil
		}
	}
}

// exec runs one command line. quit reports whether the session should end.
func (s *session) exec(line string) (quit bool, err error) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		s.help()
		return false, nil
	case "next", "n":
		return false, s.step(1)
	case "prev", "p":
		return false, s.step(-1)
	case "page":
		return false, s.gotoPage(rest)
	case "sort":
		return false, s.sort(rest)
	case "search":
		return false, s.apply(s.st.WithSearch(rest))
	case "filter":
		return false, s.filter(rest)
	case "unfilter":
		return false, s.unfilter(rest)
	case "clear":
		return false, s.apply(s.st.ClearFilters())
	case "export":
		return false, s.export(rest)
	default:
		return false, fmt.Errorf("%w: %s (type 'help' for commands)", errUnknownInput, cmd)
	}
}

// apply validates next, makes it current and shows the new page.
func (s *session) apply(next query.State) error {
	if err := next.Validate(s.ds.Collection.Schema); err != nil {
		return err
	}

	s.st = next
	s.show()

	return nil
}

func (s *session) result() query.Result {
	return query.Run(s.ds.Collection, s.st)
}

func (s *session) show() {
	page := s.result().Page

	s.o.Printf("%s", pageTable(s.ds, page))
	s.o.Println(pageStatus(page) + " | sort: " + s.st.Sort.String() + s.describeFilters())
	s.o.Println(pageButtons(page))
}

func (s *session) describeFilters() string {
	var parts []string

	if s.st.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", s.st.Search))
	}

	names := make([]string, 0, len(s.st.Filters))
	for name := range s.st.Filters {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		texts := make([]string, len(s.st.Filters[name]))
		for i, v := range s.st.Filters[name] {
			texts[i] = v.Text()
		}

		parts = append(parts, name+"="+strings.Join(texts, "|"))
	}

	if len(parts) == 0 {
		return ""
	}

	return " | " + strings.Join(parts, " | ")
}

func (s *session) step(delta int) error {
	page := s.result().Page

	switch {
	case delta > 0 && !page.HasNext():
		return errNoNextPage
	case delta < 0 && !page.HasPrev():
		return errNoPrevPage
	}

	return s.apply(s.st.WithPage(s.st.PageIndex + delta))
}

func (s *session) gotoPage(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: page <number>", errUsage)
	}

	total := s.result().Page.TotalPages
	if n < 1 || n > total {
		return fmt.Errorf("%w: %d (1 to %d)", errPageRange, n, total)
	}

	return s.apply(s.st.WithPage(n - 1))
}

func (s *session) sort(field string) error {
	if field == "" {
		return fmt.Errorf("%w: sort <field>", errUsage)
	}

	if !s.ds.Collection.Schema.Has(field) {
		return fmt.Errorf("%w: sort field %s", query.ErrUnknownField, field)
	}

	return s.apply(s.st.WithSort(field))
}

// filter adds one accepted value to a field's filter.
func (s *session) filter(arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: filter <field>=<value>", errUsage)
	}

	name, v, err := query.ParseFilter(s.ds.Collection.Schema, arg)
	if err != nil {
		return err
	}

	accepted := s.st.Filters[name]
	if slices.ContainsFunc(accepted, v.Equal) {
		s.show()
		return nil
	}

	next := append(append([]record.Value(nil), accepted...), v)

	return s.apply(s.st.WithFilter(name, next...))
}

func (s *session) unfilter(field string) error {
	if field == "" {
		return fmt.Errorf("%w: unfilter <field>", errUsage)
	}

	return s.apply(s.st.WithFilter(field))
}

func (s *session) export(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) == 0 || len(fields) > 2 {
		return fmt.Errorf("%w: export <pdf|excel|csv> [name]", errUsage)
	}

	format, err := export.ParseFormat(fields[0])
	if err != nil {
		return err
	}

	name := ""
	if len(fields) == 2 {
		name = fields[1]
	}

	art, err := s.app.export(s.ds, s.st, format, name)
	if err != nil {
		return err
	}

	s.app.log.Debug("browse export", zap.String("report_id", art.ID.String()))
	s.o.Println("exported " + art.Path)

	return nil
}

func (s *session) help() {
	s.o.Println(`Commands:
  next, n                 Next page
  prev, p                 Previous page
  page <n>                Jump to page n
  sort <field>            Sort by field; again to flip direction
  search <text>           Search the searchable fields (empty clears)
  filter <field>=<value>  Also accept value for field
  unfilter <field>        Drop the filter on field
  clear                   Drop search and all filters
  export <fmt> [name]     Export all matching rows (pdf, excel, csv)
  help                    Show this help
  quit, exit, q           Leave`)
	s.o.Println("Fields: " + strings.Join(s.fieldNames(), ", "))
}

func (s *session) fieldNames() []string {
	fields := s.ds.Collection.Schema.Fields()

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	return names
}

var browseCommands = []string{
	"next", "prev", "page", "sort", "search", "filter", "unfilter", "clear", "export", "help", "quit",
}

// complete offers command names for the first word and field names or
// export formats for the second.
func (s *session) complete(line string) []string {
	cmd, rest, hasArg := strings.Cut(line, " ")
	if !hasArg {
		var out []string

		for _, c := range browseCommands {
			if strings.HasPrefix(c, strings.ToLower(cmd)) {
				out = append(out, c+" ")
			}
		}

		return out
	}

	var candidates []string

	switch strings.ToLower(cmd) {
	case "sort", "unfilter":
		candidates = s.fieldNames()
	case "filter":
		for _, f := range s.fieldNames() {
			candidates = append(candidates, f+"=")
		}
	case "export":
		for _, f := range export.AllFormats() {
			candidates = append(candidates, f.String())
		}
	}

	var out []string

	for _, c := range candidates {
		if strings.HasPrefix(c, rest) {
			out = append(out, cmd+" "+c)
		}
	}

	return out
}
