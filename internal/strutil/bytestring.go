// Package strutil provides tab-aware, grapheme-aware string measurement on
// top of raw byte slices, the primitive that token positions and line
// ranges are built from.
package strutil

import (
	"strings"

	"github.com/rivo/uniseg"
)

// DefaultTabWidth is used when no preference overrides it.
const DefaultTabWidth = 4

// CodePointLen returns the number of Unicode code points in s.
func CodePointLen(s string) int {
	return len([]rune(s))
}

// GraphemeLen returns the number of user-perceived characters (grapheme
// clusters) in s, counting a tab as tabWidth and a combining sequence as a
// single cluster regardless of how many code points compose it. This is
// the metric used for column accounting,
// distinct from CodePointLen which backs Token.length_cp.
func GraphemeLen(s string, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	n := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		if cluster == "\t" {
			n += tabWidth
			continue
		}
		n++
	}
	return n
}

// NormalizeNewlines rewrites CR and CRLF sequences to LF, matching the
// lexer's position-accounting contract: "advancing past '\n'
// (not preceded by '\r') or past '\r' increments line and resets column".
func NormalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\r' {
			b.WriteRune('\n')
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SplitLines splits s into lines without their terminators, after CR/CRLF
// normalization. Used by the lexer input's GetLines.
func SplitLines(s string) []string {
	normalized := NormalizeNewlines(s)
	if normalized == "" {
		return []string{""}
	}
	return strings.Split(normalized, "\n")
}

// ExpandTabs replaces every tab in s with tabWidth spaces, used when
// rendering a line range for GetLines.
func ExpandTabs(s string, tabWidth int) string {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' {
			for i := 0; i < tabWidth; i++ {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TrimBOM strips a leading UTF-8 byte-order-mark, matching the lexer's
// "A leading UTF-8 BOM on first read is silently consumed" rule.
func TrimBOM(s string) string {
	const bom = "\ufeff"
	return strings.TrimPrefix(s, bom)
}
