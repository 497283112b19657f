// Package diag implements the diagnostic model shared by every compiler
// pass: a span-carrying error with an optional related location,
// rendered in the "file:line:col: kind: message" form spec'd for
// user-visible output.
package diag

import (
	"fmt"
	"strings"

	"github.com/hivellm/tml/internal/source"
)

// Kind classifies which pass produced a Diagnostic, used only for the
// rendered "<kind>" label (e.g. "lex error", "type error").
type Kind string

const (
	KindLex     Kind = "lex error"
	KindParse   Kind = "parse error"
	KindType    Kind = "type error"
	KindBorrow  Kind = "borrow error"
	KindCodegen Kind = "codegen error"
)

// Diagnostic is one compiler error or note. Code is the stable
// identifier from the taxonomy in spec.md §7 (e.g. "L001", "T011",
// "C003"); it is empty for diagnostics that have none (parser errors
// are not code-tagged in the source spec).
type Diagnostic struct {
	Kind    Kind
	Code    string
	Message string
	Span    source.Span
	Notes   []string
	Related *Diagnostic
}

// New builds a Diagnostic with no notes and no related location.
func New(kind Kind, code string, span source.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Code: code, Span: span, Message: fmt.Sprintf(format, args...)}
}

// WithNote appends a note and returns the receiver, for chaining at
// the call site.
func (d *Diagnostic) WithNote(format string, args ...any) *Diagnostic {
	d.Notes = append(d.Notes, fmt.Sprintf(format, args...))
	return d
}

// WithRelated attaches a related diagnostic (e.g. the earlier move or
// borrow a borrow-checker error refers back to).
func (d *Diagnostic) WithRelated(related *Diagnostic) *Diagnostic {
	d.Related = related
	return d
}

func (d *Diagnostic) Error() string { return d.Message }

// Render produces the full multi-line user-visible form: a one-line
// summary, the offending source line with a caret underline, zero or
// more indented notes, and — when present — the related location
// rendered the same way.
func (d *Diagnostic) Render(file *source.File) string {
	var sb strings.Builder
	renderOne(&sb, d, file, "")
	if d.Related != nil {
		sb.WriteString("related:\n")
		renderOne(&sb, d.Related, file, "  ")
	}
	return sb.String()
}

func renderOne(sb *strings.Builder, d *Diagnostic, file *source.File, indent string) {
	pos := file.Position(d.Span.Start)
	code := d.Code
	if code != "" {
		code = " " + code
	}
	fmt.Fprintf(sb, "%s%s:%d:%d:%s %s: %s\n", indent, file.Name, pos.Line, pos.Column, code, d.Kind, d.Message)

	line := file.Line(pos.Line)
	if line != "" {
		fmt.Fprintf(sb, "%s%s\n", indent, line)
		width := d.Span.End - d.Span.Start
		if width < 1 {
			width = 1
		}
		if pos.Column-1 >= 0 {
			sb.WriteString(indent)
			sb.WriteString(strings.Repeat(" ", pos.Column-1))
			sb.WriteString(strings.Repeat("^", width))
			sb.WriteString("\n")
		}
	}
	for _, note := range d.Notes {
		fmt.Fprintf(sb, "%s  note: %s\n", indent, note)
	}
}

// Bag accumulates diagnostics for a single pass. A pass is considered
// failed if its Bag is non-empty; the driver refuses to advance to the
// next pass in that case (spec.md §2, §7).
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Errorf(kind Kind, code string, span source.Span, format string, args ...any) *Diagnostic {
	d := New(kind, code, span, format, args...)
	b.Add(d)
	return d
}

func (b *Bag) HasErrors() bool      { return len(b.items) > 0 }
func (b *Bag) Items() []*Diagnostic { return b.items }
func (b *Bag) Len() int             { return len(b.items) }

// Render renders every diagnostic in the bag, in discovery order
// (spec.md §5 ordering guarantee), separated by blank lines.
func (b *Bag) Render(file *source.File) string {
	parts := make([]string, 0, len(b.items))
	for _, d := range b.items {
		parts = append(parts, d.Render(file))
	}
	return strings.Join(parts, "\n")
}
