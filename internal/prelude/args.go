package prelude

import (
	"fmt"
	"strconv"

	"pushc/internal/lexer"
)

// namedLiterals maps the closed set of bare identifiers a prelude file
// may use in place of a quoted string.
var namedLiterals = map[string]string{
	"semicolon":           ";",
	"left_brace":          "{",
	"right_brace":         "}",
	"left_parenthesis":    "(",
	"right_parenthesis":   ")",
	"left_bracket":        "[",
	"right_bracket":       "]",
	"newline":             "\n",
	"horizontal_tab":      "\t",
	"vertical_tab":        "\v",
	"carriage_return":     "\r",
	"backslash":           "\\",
	"quote":               "'",
	"double_quotes":       "\"",
	"null":                "\x00",
	"triple_double_quotes": "\"\"\"",
}

// reader is a raw token cursor over one prelude file, tokenized by the
// bootstrap prelude-prelude configuration.
type reader struct {
	in  lexer.Input
	cur lexer.Token
}

func newReader(in lexer.Input) *reader {
	r := &reader{in: in}
	r.advance()
	return r
}

func (r *reader) advance() { r.cur = r.in.GetToken() }

// skipTrivia discards comment tokens: the begin token (emitted at the
// enclosing level, matched by kind) and everything carrying the comment
// level itself.
func (r *reader) skipTrivia() {
	for !r.cur.IsEOF() &&
		(r.cur.Kind == lexer.KindCommentBegin ||
			r.cur.Level == lexer.LevelComment || r.cur.Level == lexer.LevelCommentLine) {
		r.advance()
	}
}

func (r *reader) atEOF() bool { return r.cur.IsEOF() }

func (r *reader) expectOp(content string) error {
	r.skipTrivia()
	if r.cur.Kind != lexer.KindOp || r.cur.Content != content {
		return fmt.Errorf("expected %q, got %q", content, r.cur.Content)
	}
	r.advance()
	return nil
}

func (r *reader) consumeComma() error { return r.expectOp(",") }

func (r *reader) peekIsComma() bool {
	r.skipTrivia()
	return r.cur.Kind == lexer.KindOp && r.cur.Content == ","
}

func (r *reader) peekContent() string {
	r.skipTrivia()
	return r.cur.Content
}

// getIdentifier consumes and returns an identifier token's content.
func (r *reader) getIdentifier() (string, error) {
	r.skipTrivia()
	if r.cur.Kind != lexer.KindIdentifier && r.cur.Kind != lexer.KindKeyword {
		return "", fmt.Errorf("expected identifier, got %q", r.cur.Content)
	}
	s := r.cur.Content
	r.advance()
	return s, nil
}

// getNumber consumes and returns a numeric literal token's value.
func (r *reader) getNumber() (int64, error) {
	r.skipTrivia()
	if r.cur.Kind != lexer.KindNumber {
		return 0, fmt.Errorf("expected number, got %q", r.cur.Content)
	}
	n, err := strconv.ParseInt(r.cur.Content, 0, 64)
	r.advance()
	return n, err
}

// getStringLiteral consumes either a quoted string (joining its inner
// tokens, translating escapes via the escape map) or one of the named
// literal identifiers, per parse_string_literal's rule.
func (r *reader) getStringLiteral(escapes map[string]rune) (string, error) {
	r.skipTrivia()
	switch r.cur.Kind {
	case lexer.KindStringBegin:
		r.advance()
		text := ""
		for r.cur.Kind != lexer.KindStringEnd {
			if r.atEOF() {
				return "", fmt.Errorf("unterminated string literal")
			}
			// Whitespace inside the string never surfaces as its own
			// token; it rides on the next token's leading_ws, so the
			// join has to restore it.
			text += r.cur.LeadingWS
			switch r.cur.Kind {
			case lexer.KindEscapedChar:
				if ch, ok := escapes[r.cur.Content]; ok {
					text += string(ch)
				} else {
					text += r.cur.Content
				}
			default:
				text += r.cur.Content
			}
			r.advance()
		}
		text += r.cur.LeadingWS
		r.advance()
		return text, nil
	case lexer.KindIdentifier:
		name := r.cur.Content
		if lit, ok := namedLiterals[name]; ok {
			r.advance()
			return lit, nil
		}
		if name == "operators" || name == "keywords" || name == "ascii_oct" || name == "ascii_hex" || name == "unicode_32_hex" {
			r.advance()
			return "\x02" + name, nil
		}
		return "", fmt.Errorf("unknown named literal %q", name)
	default:
		return "", fmt.Errorf("expected string literal, got %q", r.cur.Content)
	}
}

// listSize maps the fixed-width list keyword to its arity.
func listSize(name string) (int, error) {
	switch name {
	case "single_list":
		return 1, nil
	case "double_list":
		return 2, nil
	case "triple_list":
		return 3, nil
	case "quadruple_list":
		return 4, nil
	case "quintuple_list":
		return 5, nil
	case "sextuple_list":
		return 6, nil
	default:
		return 0, fmt.Errorf("unknown list size keyword %q", name)
	}
}
