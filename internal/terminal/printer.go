package terminal

import (
	"fmt"
	"io"
)

// Printer writes rendered messages. Successes, information and listed
// entries go to out; warnings and errors go to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	outR   *Renderer
	errR   *Renderer
}

// NewPrinter creates a Printer. Color detection in ColorAuto mode is done
// per stream, so piping stdout keeps badges on a terminal stderr.
func NewPrinter(out, errOut io.Writer, colorMode string) *Printer {
	return &Printer{
		out:    out,
		errOut: errOut,
		outR:   NewRenderer(out, colorMode),
		errR:   NewRenderer(errOut, colorMode),
	}
}

func (p *Printer) Success(message string) { p.write(p.out, p.outR, Success, message) }
func (p *Printer) Info(message string)    { p.write(p.out, p.outR, Info, message) }
func (p *Printer) Warn(message string)    { p.write(p.errOut, p.errR, Warning, message) }
func (p *Printer) Error(message string)   { p.write(p.errOut, p.errR, Error, message) }

// Entry prints one listed path, undecorated so the output can be piped.
func (p *Printer) Entry(path string) { p.write(p.out, p.outR, Plain, path) }

func (p *Printer) write(w io.Writer, r *Renderer, sev Severity, message string) {
	fmt.Fprintln(w, r.Render(sev, message))
}
