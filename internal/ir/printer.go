package ir

import (
	"bytes"
	"fmt"
)

// Printer renders a From expression as multi-line, indented query syntax.
// It is grounded on funxy's internal/prettyprinter.CodePrinter: an
// indent-tracking bytes.Buffer accumulator, one writeIndent per line,
// rather than a full recursive pretty-printing combinator library — the
// core only ever needs to print `from` expressions and generators, not
// the full surface language funxy's printer targets.
type Printer struct {
	buf    bytes.Buffer
	indent int
}

// NewPrinter returns an empty Printer.
func NewPrinter() *Printer { return &Printer{} }

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
}

func (p *Printer) line(format string, args ...any) {
	p.writeIndent()
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

// PrintFrom renders f and returns the accumulated text.
func (p *Printer) PrintFrom(f From) string {
	parts := make([]string, len(f.Sources))
	for i, s := range f.Sources {
		parts[i] = fmt.Sprintf("%s in %s", s.Pattern.String(), s.Expr.String())
	}
	header := "from "
	for i, part := range parts {
		if i > 0 {
			header += ", "
		}
		header += part
	}
	p.line("%s", header)
	p.indent++
	for _, step := range f.Steps {
		p.line("%s", step.String())
	}
	p.indent--
	return p.buf.String()
}

// Print is a convenience one-shot wrapper around Printer.
func Print(f From) string {
	return NewPrinter().PrintFrom(f)
}
