// Package diag prints schema errors and layout warnings for humans.
package diag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/parser"
)

// Printer writes one diagnostic per line:
//
//	file:line:col: error: missing field layout: Foo.Bar: every field must have ...
//
// It is safe for concurrent use.
type Printer struct {
	mu sync.Mutex
	w  io.Writer

	pos   *color.Color
	err   *color.Color
	warn  *color.Color
	scope *color.Color

	errors   int
	warnings int
}

// NewPrinter returns a printer writing to w. Colors are enabled when w is
// a terminal.
func NewPrinter(w io.Writer) *Printer {
	return NewPrinterColor(w, IsTerminal(w))
}

// NewPrinterColor returns a printer with colors forced on or off.
func NewPrinterColor(w io.Writer, colored bool) *Printer {
	p := &Printer{
		w:     w,
		pos:   color.New(color.Bold),
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		scope: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.pos, p.err, p.warn, p.scope} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Error prints err. Schema errors are broken down into position, kind and
// scope; anything else is printed as is.
func (p *Printer) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors++

	var perr *parser.Error
	if errors.As(err, &perr) {
		p.line(perr.Pos.String(), p.err.Sprint("error"), perr.Kind.String()+": "+p.scopeOf(perr.Scope())+perr.Msg)
		return
	}
	p.line("", p.err.Sprint("error"), err.Error())
}

// Warning prints a non-fatal finding.
func (p *Printer) Warning(f analyzer.Finding) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.warnings++

	scope := f.Record
	if f.Field != "" {
		scope += "." + f.Field
	}
	msg := p.scopeOf(scope) + f.Msg
	if f.Obligation != 0 {
		msg = f.Obligation.String() + ": " + msg
	}
	p.line(f.Pos.String(), p.warn.Sprint("warning"), msg)
}

func (p *Printer) scopeOf(scope string) string {
	if scope == "" {
		return ""
	}
	return p.scope.Sprint(scope) + ": "
}

func (p *Printer) line(pos, label, msg string) {
	if pos != "" && pos != "-" {
		fmt.Fprintf(p.w, "%s: %s: %s\n", p.pos.Sprint(pos), label, msg)
		return
	}
	fmt.Fprintf(p.w, "%s: %s\n", label, msg)
}

// Counts returns the number of errors and warnings printed so far.
func (p *Printer) Counts() (errs, warns int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errors, p.warnings
}

// Summary prints the totals, or nothing if there were no diagnostics.
func (p *Printer) Summary() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.errors == 0 && p.warnings == 0 {
		return
	}
	fmt.Fprintf(p.w, "%s, %s\n",
		p.err.Sprint(plural(p.errors, "error")),
		p.warn.Sprint(plural(p.warnings, "warning")))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
