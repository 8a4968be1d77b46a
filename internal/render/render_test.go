package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pushc/internal/config"
	"pushc/internal/diag"
	"pushc/internal/lexer"
)

func TestRenderHeaderAndExcerpt(t *testing.T) {
	r := New(config.ColorNever)
	in := lexer.NewStringInput("t.push", "let a = ;\n")
	in.Configure(lexer.NewConfig())

	file := &diag.File{Path: "t.push"}
	d := diag.Diagnostic{
		Code:     diag.ErrEmptyStatement,
		Severity: diag.SeverityError,
		Message:  "statement divider with no preceding expression",
		Pos:      diag.Position{File: file, Line: 1, Column: 9, LengthCP: 1},
	}

	out := r.Render(d, in)
	require.Contains(t, out, "error[1009]")
	require.Contains(t, out, "t.push:1:9")
	require.Contains(t, out, "let a = ;")
	require.Contains(t, out, "^")
	// Caret sits under column 9.
	lines := strings.Split(out, "\n")
	var caretLine string
	for _, l := range lines {
		if strings.Contains(l, "^") {
			caretLine = l
		}
	}
	require.Equal(t, "^", strings.TrimSpace(caretLine))
	require.Equal(t, len("   1 | ")+8, strings.Index(caretLine, "^"))
}

func TestRenderNotes(t *testing.T) {
	r := New(config.ColorNever)
	d := diag.Diagnostic{
		Code:     diag.ErrOrphanToken,
		Severity: diag.SeverityWarning,
		Message:  `orphan token "}"`,
		Notes:    []diag.Note{{Text: "previous opener was here"}},
	}
	out := r.Render(d, nil)
	require.Contains(t, out, "warning[1001]")
	require.Contains(t, out, "note: previous opener was here")
}
