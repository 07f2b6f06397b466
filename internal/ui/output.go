// Package ui holds terminal presentation helpers.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes colour-coded status lines. Colour is dropped when the
// target writer is not a terminal or NO_COLOR is set.
type Printer struct {
	Out io.Writer
	Err io.Writer

	red    *color.Color
	yellow *color.Color
	green  *color.Color
}

func NewPrinter(out, errOut io.Writer) *Printer {
	p := &Printer{
		Out:    out,
		Err:    errOut,
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		green:  color.New(color.FgGreen),
	}
	if color.NoColor || !IsTerminal(out) {
		p.green.DisableColor()
	}
	if color.NoColor || !IsTerminal(errOut) {
		p.red.DisableColor()
		p.yellow.DisableColor()
	}
	return p
}

// Errorf reports a failure on the error stream in red.
func (p *Printer) Errorf(format string, args ...any) {
	p.red.Fprintln(p.Err, fmt.Sprintf(format, args...))
}

// Noticef reports a benign condition on stdout in yellow.
func (p *Printer) Noticef(format string, args ...any) {
	p.yellow.Fprintln(p.Out, fmt.Sprintf(format, args...))
}

// Successf reports progress on stdout in green.
func (p *Printer) Successf(format string, args ...any) {
	p.green.Fprintln(p.Out, fmt.Sprintf(format, args...))
}
