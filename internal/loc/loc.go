// Package loc holds the source location value shared by step definitions,
// pickle steps, and diagnostics.
package loc

import "fmt"

// Location points at a position inside a source artifact: a feature file for
// pickle steps, a Go file for step definitions, an HCL file for macros.
type Location struct {
	URI    string `json:"uri,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// String renders the location in the conventional uri:line:column form,
// omitting trailing zero parts.
func (l Location) String() string {
	switch {
	case l.URI == "":
		return "<unknown>"
	case l.Line == 0:
		return l.URI
	case l.Column == 0:
		return fmt.Sprintf("%s:%d", l.URI, l.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", l.URI, l.Line, l.Column)
	}
}

// IsZero reports whether the location carries no information.
func (l Location) IsZero() bool {
	return l == Location{}
}
