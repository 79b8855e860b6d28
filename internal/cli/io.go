package cli

import (
	"fmt"
	"io"
)

// IO is the output side of one rpt invocation. Tables, paths and config
// go to out; errors and warnings go to errOut. A warning does not stop the
// command but turns its exit code into 1, so scripts notice an empty page
// or a skipped step.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	flushed  bool
}

// NewIO returns an IO writing to out and errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a warning as "issue: action". It is written to errOut
// before the first line of regular output and again by Finish, so a long
// table piped through head or tail still shows it.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Println writes a line of regular output.
func (o *IO) Println(a ...any) {
	o.flushWarnings()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted regular output.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarnings()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes a diagnostic line. Warnings are not flushed.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish repeats the warnings after the output and returns the exit code
// of a command that did not fail: 1 with warnings, 0 without.
func (o *IO) Finish() int {
	o.flushWarnings()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushWarnings() {
	if !o.flushed && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.flushed = true
	}
}
