// Package diag collects compiler diagnostics shared by every pipeline
// stage (lex, parse, check, ir, cgen).
//
// Every stage accumulates as many independent diagnostics as it can
// before giving up, per spec.md's "propagation policy": a phase stops
// its local traversal as soon as it cannot continue safely, but never
// bails out after the first error.
package diag

import "fmt"

// Diagnostic is a single compiler message anchored at a source
// location. Severity is informational only — an Error-severity
// diagnostic and a Warning-severity one both count toward the error
// total per spec.md §4.4(a) ("un-modified var is a warning-level
// diagnostic that still halts compilation").
type Diagnostic struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (d Diagnostic) String() string {
	if d.Col > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Col, d.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Msg)
}

// Bag accumulates diagnostics for one compilation.
type Bag struct {
	items []Diagnostic
}

// Add records a diagnostic at file:line:col.
func (b *Bag) Add(file string, line, col int, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{
		File: file,
		Line: line,
		Col:  col,
		Msg:  fmt.Sprintf(format, args...),
	})
}

// AddAt records a diagnostic from an already-built Diagnostic value.
func (b *Bag) AddAt(d Diagnostic) {
	b.items = append(b.items, d)
}

// HasErrors reports whether any diagnostic has been recorded.
func (b *Bag) HasErrors() bool {
	return len(b.items) > 0
}

// Len returns the number of accumulated diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// All returns the accumulated diagnostics in detection order.
func (b *Bag) All() []Diagnostic {
	return b.items
}

// Strings renders every diagnostic as "file:line:col: msg".
func (b *Bag) Strings() []string {
	out := make([]string, len(b.items))
	for i, d := range b.items {
		out[i] = d.String()
	}
	return out
}

// Merge appends another bag's diagnostics, preserving order.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}
