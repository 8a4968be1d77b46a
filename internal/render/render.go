// Package render turns recorded diagnostics into terminal output: a
// severity-coloured header line plus an annotated source excerpt. It is
// the message/colour collaborator the core hands its diagnostics to.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"pushc/internal/config"
	"pushc/internal/diag"
	"pushc/internal/lexer"
)

// Renderer formats diagnostics for one compilation run.
type Renderer struct {
	color bool

	errStyle  lipgloss.Style
	warnStyle lipgloss.Style
	noteStyle lipgloss.Style
	posStyle  lipgloss.Style
	gutter    lipgloss.Style
	caret     lipgloss.Style
}

// New builds a Renderer honouring the --color mode: auto enables colour
// only when stdout is a terminal.
func New(mode config.ColorMode) *Renderer {
	color := false
	switch mode {
	case config.ColorAlways:
		color = true
	case config.ColorAuto:
		color = isatty.IsTerminal(os.Stdout.Fd())
	}
	r := &Renderer{color: color}
	if color {
		r.errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		r.warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
		r.noteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
		r.posStyle = lipgloss.NewStyle().Bold(true)
		r.gutter = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		r.caret = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	} else {
		plain := lipgloss.NewStyle()
		r.errStyle, r.warnStyle, r.noteStyle = plain, plain, plain
		r.posStyle, r.gutter, r.caret = plain, plain, plain
	}
	return r
}

func (r *Renderer) severityStyle(s diag.Severity) lipgloss.Style {
	switch s {
	case diag.SeverityWarning:
		return r.warnStyle
	case diag.SeverityNotification:
		return r.noteStyle
	default:
		return r.errStyle
	}
}

// Render formats one diagnostic. in optionally supplies the source the
// diagnostic points into, for the excerpt; nil yields the header only.
func (r *Renderer) Render(d diag.Diagnostic, in lexer.Input) string {
	var b strings.Builder

	sev := r.severityStyle(d.Severity)
	b.WriteString(sev.Render(fmt.Sprintf("%s[%d]", d.Severity, d.Code)))
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteString("\n")

	if !d.Pos.IsZero() {
		b.WriteString("  ")
		b.WriteString(r.posStyle.Render(fmt.Sprintf("--> %s", d.Pos)))
		b.WriteString("\n")
		r.writeExcerpt(&b, d.Pos, in)
	}

	for _, note := range d.Notes {
		b.WriteString("  ")
		b.WriteString(r.noteStyle.Render("note"))
		b.WriteString(": ")
		b.WriteString(note.Text)
		if !note.Pos.IsZero() {
			b.WriteString(fmt.Sprintf(" (%s)", note.Pos))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// writeExcerpt prints the diagnostic's source line with a caret run
// underlining the token, its width taken from the position's code-point
// length.
func (r *Renderer) writeExcerpt(b *strings.Builder, pos diag.Position, in lexer.Input) {
	if in == nil || pos.Line < 1 {
		return
	}
	lines := in.GetLines(pos.Line, pos.Line+1)
	if len(lines) == 0 {
		return
	}
	prefix := fmt.Sprintf("%4d | ", pos.Line)
	b.WriteString(r.gutter.Render(prefix))
	b.WriteString(lines[0])
	b.WriteString("\n")

	width := pos.LengthCP
	if width < 1 {
		width = 1
	}
	pad := strings.Repeat(" ", len(prefix)+pos.Column-1)
	b.WriteString(pad)
	b.WriteString(r.caret.Render(strings.Repeat("^", width)))
	b.WriteString("\n")
}

// RenderAll formats every diagnostic in report order, separated by
// blank lines.
func (r *Renderer) RenderAll(diags []diag.Diagnostic, in lexer.Input) string {
	parts := make([]string, 0, len(diags))
	for _, d := range diags {
		parts = append(parts, r.Render(d, in))
	}
	return strings.Join(parts, "\n")
}
