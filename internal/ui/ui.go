// Package ui renders human-readable check output on stderr.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/papapumpkin/pagecheck/internal/report"
	"github.com/papapumpkin/pagecheck/internal/suite"
)

// Printer writes styled progress and results. The zero value writes to
// os.Stderr.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w, or to os.Stderr when w is nil.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) out() io.Writer {
	if p.w == nil {
		return os.Stderr
	}
	return p.w
}

// SuiteStart prints the suite header.
func (p *Printer) SuiteStart(name, target string) {
	fmt.Fprintln(p.out(), styleHeader.Render(name)+" "+styleDim.Render(target))
}

// Check prints one check line and, for failures, the title and an indented
// detail line per finding.
func (p *Printer) Check(cr suite.CheckResult) {
	w := p.out()
	elapsed := styleDim.Render(fmt.Sprintf("(%s)", cr.Elapsed.Round(time.Millisecond)))
	if cr.Passed {
		fmt.Fprintf(w, "  %s %s %s\n", stylePass.Render(iconPass), cr.Name, elapsed)
		return
	}
	fmt.Fprintf(w, "  %s %s %s\n", styleFail.Render(iconFail), cr.Name, elapsed)
	title, details := report.Describe(cr.Err)
	fmt.Fprintf(w, "      %s\n", styleTitle.Render(title))
	for _, d := range details {
		fmt.Fprintf(w, "        %s\n", styleDetail.Render(d))
	}
}

// Summary prints the pass/fail tally for a finished suite.
func (p *Printer) Summary(r *suite.Result) {
	failed := len(r.Failures())
	passed := len(r.Checks) - failed
	if failed == 0 {
		fmt.Fprintln(p.out(), stylePass.Render(fmt.Sprintf("%s %d passing", iconPass, passed)))
		return
	}
	fmt.Fprintln(p.out(), styleFail.Render(fmt.Sprintf("%s %d passing, %d failing", iconFail, passed, failed)))
}

// Diff prints a unified diff with added and removed lines colored.
func (p *Printer) Diff(unified string) {
	w := p.out()
	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			fmt.Fprintln(w, styleDiffHdr.Render(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(w, styleDiffAdd.Render(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(w, styleDiffDel.Render(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
}

// Watching announces that target is being watched.
func (p *Printer) Watching(target string) {
	fmt.Fprintf(p.out(), "\n%s %s\n", styleHeader.Render(iconWatch+" watching"), styleDim.Render(target+" (ctrl-c to stop)"))
}

// Changed announces a re-run triggered by a change to target.
func (p *Printer) Changed(target string) {
	fmt.Fprintf(p.out(), "\n%s\n", styleDim.Render(fmt.Sprintf("── %s changed, re-running ──", target)))
}

// Error prints an error message.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.out(), "%s%s\n", styleError.Render("error: "), msg)
}

// Info prints a de-emphasized message.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.out(), styleDim.Render(msg))
}
