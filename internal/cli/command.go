package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one rpt subcommand: its flags, its help text and the function
// that runs it.
type Command struct {
	Flags *flag.FlagSet

	// Usage follows "rpt" in help output; its first word is the command
	// name, e.g. "ls <dataset> [flags]".
	Usage string

	Short string // listed by "rpt --help"
	Long  string // shown by "rpt <cmd> --help"; falls back to Short

	// Exec receives the positional arguments left after flag parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine is the command's row in the global command list.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-30s %s", c.Usage, c.Short)
}

// PrintHelp writes usage, description and flag defaults to out.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: rpt", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses args into Flags and calls Exec. Flag and Exec errors are
// printed as "error: ..." and give exit code 1; --help gives 0.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.printUsageLine(o)

		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	return 0
}

// printUsageLine writes the usage line to stderr after a flag error, so a
// failed command leaves stdout empty.
func (c *Command) printUsageLine(o *IO) {
	o.ErrPrintln("Usage: rpt", c.Usage)
}
