// Package diag collects the warnings a filter run produces and prints
// them on stderr after the document has been written. Messages never
// go to stdout, which belongs to the JSON stream.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

type Severity int

const (
	Info Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "info"
}

// Kind identifies what went wrong, for machine consumers and tests.
type Kind string

const (
	MalformedAttributes Kind = "malformed-attributes"
	DuplicateLabel      Kind = "duplicate-label"
	UnresolvedReference Kind = "unresolved-reference"
	UnknownOption       Kind = "unknown-option"
	MixedTags           Kind = "mixed-tags"
)

type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
}

// Collector accumulates diagnostics during a run. The zero value is
// ready to use.
type Collector struct {
	diags []Diagnostic
}

func (c *Collector) Warnf(kind Kind, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Kind:     kind,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *Collector) Infof(kind Kind, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Kind:     kind,
		Severity: Info,
		Message:  fmt.Sprintf(format, args...),
	})
}

// All returns the collected diagnostics in arrival order.
func (c *Collector) All() []Diagnostic {
	return c.diags
}

func (c *Collector) HasWarnings() bool {
	for _, d := range c.diags {
		if d.Severity == Warning {
			return true
		}
	}
	return false
}

type styles struct {
	warn *color.Color
	info *color.Color
	kind *color.Color
}

func newStyles() *styles {
	return &styles{
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		kind: color.New(color.Faint),
	}
}

// Printer writes diagnostics honoring the configured warning level:
// 0 prints nothing, 1 prints warnings, 2 prints warnings and info.
type Printer struct {
	out    io.Writer
	level  int
	prefix string
	styles *styles
}

func NewPrinter(out io.Writer, level int) *Printer {
	return &Printer{out: out, level: level, prefix: "tablenos", styles: newStyles()}
}

// WithPrefix sets the message prefix, normally the source file name in
// batch runs.
func (p *Printer) WithPrefix(prefix string) *Printer {
	q := *p
	q.prefix = prefix
	return &q
}

// Print writes every diagnostic the level admits and reports how many
// were written.
func (p *Printer) Print(diags []Diagnostic) int {
	var printed int
	for _, d := range diags {
		if !p.admits(d.Severity) {
			continue
		}
		style := p.styles.info
		if d.Severity == Warning {
			style = p.styles.warn
		}
		fmt.Fprintf(p.out, "%s %s %s\n",
			style.Sprintf("%s: %s:", p.prefix, d.Severity),
			d.Message,
			p.styles.kind.Sprintf("[%s]", d.Kind))
		printed++
	}
	return printed
}

func (p *Printer) admits(s Severity) bool {
	switch p.level {
	case 0:
		return false
	case 1:
		return s == Warning
	default:
		return true
	}
}
