package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes styled status lines for the CLI. Quiet printers drop
// everything except errors.
type Printer struct {
	out   io.Writer
	quiet bool
}

// NewPrinter creates a printer writing to out, or stdout when out is nil
func NewPrinter(out io.Writer, quiet bool) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, quiet: quiet}
}

// Error prints an error message, with an optional cause
func (p *Printer) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(p.out, errorStyle.Render("✗ "+msg))
}

// Success prints a success message
func (p *Printer) Success(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, successStyle.Render("✓ "+msg))
}

// Info prints a label and its value
func (p *Printer) Info(label string, value string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, labelStyle.Render(label)+valueStyle.Render(value))
}

// Warning prints a warning message, with an optional cause
func (p *Printer) Warning(msg string, args ...interface{}) {
	if p.quiet {
		return
	}
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(p.out, warningStyle.Render("! "+msg))
}

// Print writes a pre-rendered block
func (p *Printer) Print(block string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, block)
}
