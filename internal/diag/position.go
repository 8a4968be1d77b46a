// Package diag implements the message/position model: source
// positions and the diagnostic records the lexer, prelude loader, and
// parser attach to them.
package diag

import "fmt"

// File identifies a source file a position points into. It is a thin
// handle rather than the content itself — content is owned by the
// lexer.Input that produced the tokens.
type File struct {
	Path string
}

func (f *File) String() string {
	if f == nil {
		return "<unknown>"
	}
	return f.Path
}

// Position is a 1-based line/column location with a code-point length,
// matching Token's own position fields.
type Position struct {
	File     *File
	Line     int
	Column   int
	LengthCP int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File.String(), p.Line, p.Column)
}

// IsZero reports whether the position was never set (e.g. a synthetic
// diagnostic with no source anchor).
func (p Position) IsZero() bool {
	return p.File == nil && p.Line == 0 && p.Column == 0
}
