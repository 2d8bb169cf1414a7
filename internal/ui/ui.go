package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	boldRed    = color.New(color.FgRed, color.Bold)
	boldGreen  = color.New(color.FgGreen, color.Bold)
	boldYellow = color.New(color.FgYellow, color.Bold)
	boldCyan   = color.New(color.FgCyan, color.Bold)
	faint      = color.New(color.Faint)
)

const shownElsewhereMarker = " [shown elsewhere]"

// Printer writes command output. Trees and encoded documents go to Out,
// status and diagnostics to Err.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

func New() *Printer {
	return &Printer{Out: os.Stdout, Err: color.Error}
}

// Tree prints rendered tree lines, dimming the marker on leaf lines.
func (p *Printer) Tree(lines []string) {
	for _, line := range lines {
		if title, ok := strings.CutSuffix(line, shownElsewhereMarker); ok {
			fmt.Fprintln(p.Out, title+faint.Sprint(shownElsewhereMarker))
			continue
		}
		fmt.Fprintln(p.Out, line)
	}
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.Err, "%s%s\n", boldRed.Sprint("error: "), msg)
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.Err, "%s%s\n", boldYellow.Sprint("warning: "), msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.Err, faint.Sprint(msg))
}

// Check is the outcome of one environment check run by `pcs validate`.
type Check struct {
	Name string
	Err  error
}

// ValidateResult prints one line per check and reports whether all passed.
func (p *Printer) ValidateResult(checks []Check) bool {
	ok := true
	for _, c := range checks {
		if c.Err != nil {
			ok = false
			fmt.Fprintf(p.Err, "%s %s: %v\n", boldRed.Sprint("✗"), c.Name, c.Err)
			continue
		}
		fmt.Fprintf(p.Err, "%s %s\n", boldGreen.Sprint("✓"), c.Name)
	}
	return ok
}

// Watching announces that a file is being watched for changes.
func (p *Printer) Watching(path string) {
	fmt.Fprintf(p.Err, "%s %s %s\n", boldCyan.Sprint("watching"), path, faint.Sprint("(ctrl-c to stop)"))
}

// Reloaded separates successive renders of a watched file.
func (p *Printer) Reloaded(path string) {
	fmt.Fprintf(p.Err, "\n%s %s\n", boldCyan.Sprint("── reloaded"), path)
}
