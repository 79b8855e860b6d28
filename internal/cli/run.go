// Package cli implements the rpt command line: listing, exporting and
// interactively browsing report datasets.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/school-reports/internal/config"
	"github.com/calvinalkan/school-reports/internal/dataset"
	"github.com/calvinalkan/school-reports/internal/export"
	"github.com/calvinalkan/school-reports/internal/logging"
)

// ErrDatasetNotFound is returned when a dataset argument resolves to no file.
var ErrDatasetNotFound = errors.New("dataset not found")

var errDatasetArg = errors.New("expected exactly one dataset argument")

// datasetExts are tried in order when a dataset is given by name.
var datasetExts = []string{".jsonc", ".json"}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	engine *export.Engine
	log    *zap.Logger
	in     io.Reader
	now    func() time.Time
}

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("rpt", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{}) // discard pflag output

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use config `file`")
	outDir := globals.String("out-dir", "", "Write exports to `dir`")
	verbose := globals.BoolP("verbose", "v", false, "Log debug output to stderr")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	parseErr := globals.Parse(args)
	if parseErr != nil && !errors.Is(parseErr, flag.ErrHelp) {
		fprintln(errOut, "error:", parseErr)
		printUsage(errOut)

		return 1
	}

	rest := globals.Args()

	if *help || errors.Is(parseErr, flag.ErrHelp) || len(rest) == 0 {
		printUsage(out)

		return 0
	}

	input := config.LoadInput{
		WorkDirOverride: *workDir,
		ConfigPath:      *configPath,
		Env:             env,
	}

	if globals.Changed("out-dir") {
		input.Overrides.OutputDir = outDir
	}

	if *verbose {
		debug := "debug"
		input.Overrides.LogLevel = &debug
	}

	cfg, err := config.Load(input)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	log, err := logging.New(errOut, cfg.LogLevel)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	defer func() { _ = log.Sync() }()

	a := newApp(&cfg, log, in)

	commands := a.commands()

	name := rest[0]

	cmd, ok := findCommand(commands, name)
	if !ok {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, rest[1:])
	if code != 0 {
		return code
	}

	return o.Finish()
}

func newApp(cfg *config.Config, log *zap.Logger, in io.Reader) *app {
	doc := export.NewDocumentRenderer(
		export.WithInstitution(cfg.Institution()),
		export.WithOrientation(cfg.PageOrientation()),
	)

	return &app{
		cfg:    cfg,
		engine: export.NewEngine(export.WithLogger(log), export.WithRenderer(doc)),
		log:    log,
		in:     in,
		now:    time.Now,
	}
}

func (a *app) commands() []*Command {
	return []*Command{
		LsCmd(a),
		ExportCmd(a),
		BrowseCmd(a),
		SchemaCmd(a),
		PrintConfigCmd(a.cfg),
	}
}

func findCommand(commands []*Command, name string) (*Command, bool) {
	for _, c := range commands {
		if c.Name() == name {
			return c, true
		}
	}

	return nil, false
}

// loadDataset resolves arg to a dataset file. Paths (anything with a
// separator or extension) are taken relative to the working directory;
// bare names are looked up in the dataset directory.
func (a *app) loadDataset(arg string) (*dataset.Dataset, error) {
	if arg == "" {
		return nil, fmt.Errorf("%w: no dataset given", ErrDatasetNotFound)
	}

	var candidates []string

	if strings.ContainsRune(arg, filepath.Separator) || strings.ContainsRune(arg, '/') || filepath.Ext(arg) != "" {
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.EffectiveCwd, path)
		}

		candidates = append(candidates, path)
	} else {
		for _, ext := range datasetExts {
			candidates = append(candidates, filepath.Join(a.cfg.DatasetDirAbs, arg+ext))
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			a.log.Debug("loading dataset", zap.String("path", path))

			return dataset.Load(path)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, arg)
}

func printUsage(w io.Writer) {
	fprintln(w, `rpt - school report pipeline

Usage: rpt [global flags] <command> [flags] [args]

Commands:`)

	a := &app{cfg: &config.Config{}}
	for _, c := range a.commands() {
		fprintln(w, c.HelpLine())
	}

	fprintln(w, `
Global flags:
  -C, --cwd <dir>       Run as if started in <dir>
  -c, --config <file>   Use config file
      --out-dir <dir>   Write exports to <dir>
  -v, --verbose         Log debug output to stderr
  -h, --help            Show help

Run 'rpt <command> --help' for command flags.`)
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
