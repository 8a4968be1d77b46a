package lexer

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// preludePreludeConfig builds the minimal bootstrap configuration used to
// parse prelude files themselves.
func preludePreludeConfig() *Config {
	c := NewConfig()
	c.StatDividers = []string{";"}
	c.AddLevel(LevelDef{Name: "line_comment", Kind: LevelCommentLine, Begin: "//", End: "\n", BeginKind: KindCommentBegin, EndKind: KindCommentEnd}, "")
	c.AddLevel(LevelDef{Name: "line_comment_cr", Kind: LevelCommentLine, Begin: "//", End: "\r", BeginKind: KindCommentBegin, EndKind: KindCommentEnd}, "")
	c.AddLevel(LevelDef{Name: "block_comment", Kind: LevelComment, Begin: "/*", End: "*/", BeginKind: KindCommentBegin, EndKind: KindCommentEnd}, "", "block_comment")
	c.AddLevel(LevelDef{Name: "string", Kind: LevelString, Begin: `"`, End: `"`, BeginKind: KindStringBegin, EndKind: KindStringEnd}, "")
	c.Operators = []string{",", "->", "#"}
	c.AddRange(RangeIdentifier, 'a', 'z')
	c.AddRange(RangeIdentifier, 'A', 'Z')
	c.AddRange(RangeIdentifier, '_', '_')
	c.AddRange(RangeIdentifier, 0x1F000, 0x1FFFF) // lets emoji clusters count as identifier runes for the column test below
	c.AddRange(RangeOptIdentifier, '0', '9')
	c.AddRange(RangeInteger, '0', '9')
	c.AddRange(RangeWS, ' ', ' ')
	c.AddRange(RangeWS, '\t', '\t')
	c.AddRange(RangeWS, '\n', '\n')
	c.AddRange(RangeWS, '\r', '\r')
	c.AddRange(RangeOp, '!', '/')
	c.AddRange(RangeOp, ':', '@')
	return c
}

func lexAll(t *testing.T, input Input) []Token {
	t.Helper()
	var toks []Token
	for {
		tok := input.GetToken()
		if tok.IsEOF() {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestLexerBasicTokenStream(t *testing.T) {
	cfg := preludePreludeConfig()
	cfg.Operators = append(cfg.Operators, "=", "+", "-", ".")
	cfg.Keywords = []string{"let"}

	src := "let a = 1 + 2; // trailing\n"
	in := NewStringInput("t.push", src)
	in.Configure(cfg)

	toks := lexAll(t, in)
	require.NotEmpty(t, toks)
	require.Equal(t, KindKeyword, toks[0].Kind)
	require.Equal(t, "let", toks[0].Content)
	require.Equal(t, KindIdentifier, toks[1].Kind)
	require.Equal(t, "a", toks[1].Content)
	require.Equal(t, KindOp, toks[2].Kind)
	require.Equal(t, "=", toks[2].Content)
	require.Equal(t, KindNumber, toks[3].Kind)
	require.Equal(t, "1", toks[3].Content)
	require.Equal(t, KindOp, toks[4].Kind)
	require.Equal(t, "+", toks[4].Content)
	require.Equal(t, KindNumber, toks[5].Kind)
	require.Equal(t, "2", toks[5].Content)
	require.Equal(t, KindStatDivider, toks[6].Kind)
	// The trailing "// trailing\n" becomes comment_begin + identifier + comment_end.
	require.Equal(t, KindCommentBegin, toks[7].Kind)
	require.Equal(t, "//", toks[7].Content)
	require.Equal(t, KindIdentifier, toks[8].Kind)
	require.Equal(t, "trailing", toks[8].Content)
	require.Equal(t, KindCommentEnd, toks[9].Kind)
	require.Equal(t, "\n", toks[9].Content)
}

func TestLexerNestedBlockComments(t *testing.T) {
	cfg := preludePreludeConfig()
	src := "/* outer /* inner */ still */"
	in := NewStringInput("t.push", src)
	in.Configure(cfg)

	toks := lexAll(t, in)
	var kinds []Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	require.Equal(t, []Kind{
		KindCommentBegin, KindIdentifier, KindCommentBegin, KindIdentifier,
		KindCommentEnd, KindIdentifier, KindCommentEnd,
	}, kinds)
	require.Equal(t, LevelNormal, toks[0].Level) // outer "/*" opens from normal
	require.Equal(t, LevelComment, toks[2].Level) // inner "/*" opens from inside comment
	require.Equal(t, LevelComment, toks[4].Level) // inner "*/" closes the inner comment
}

func TestLexerGraphemeColumn(t *testing.T) {
	cfg := preludePreludeConfig()
	cfg.Operators = append(cfg.Operators, "+")
	src := "🦄🦓and🦌 + b"
	in := NewStringInput("t.push", src)
	in.Configure(cfg)

	toks := lexAll(t, in)
	require.Equal(t, "🦄🦓and🦌", toks[0].Content)
	require.Equal(t, 6, toks[0].LengthCP) // unicorn+zebra+a+n+d+deer
	require.Equal(t, 1, toks[0].Column)
	// "+" begins after 6 graphemes plus one leading space: column 8.
	require.Equal(t, 8, toks[1].Column)
}

func TestLexerBOMConsumedSilently(t *testing.T) {
	cfg := preludePreludeConfig()
	src := "\ufeffa"
	in := NewStringInput("t.push", src)
	in.Configure(cfg)
	tok := in.GetToken()
	require.Equal(t, KindIdentifier, tok.Kind)
	require.Equal(t, "a", tok.Content)
	require.Equal(t, 1, tok.Column)
}

func TestPreviewTokenDoesNotAdvance(t *testing.T) {
	cfg := preludePreludeConfig()
	src := "a b"
	in := NewStringInput("t.push", src)
	in.Configure(cfg)

	preview := in.PreviewToken()
	require.Equal(t, "a", preview.Content)
	got := in.GetToken()
	require.Equal(t, "a", got.Content)
	got2 := in.GetToken()
	require.Equal(t, "b", got2.Content)
}

func TestPreviewNextTokenCapsAtTwo(t *testing.T) {
	cfg := preludePreludeConfig()
	src := "a b c"
	in := NewStringInput("t.push", src)
	in.Configure(cfg)

	require.Equal(t, "a", in.PreviewToken().Content)
	require.Equal(t, "b", in.PreviewNextToken().Content)
	require.Equal(t, "b", in.PreviewNextToken().Content) // repeated call stays put
	require.Equal(t, "a", in.GetToken().Content)
	require.Equal(t, "b", in.GetToken().Content)
	require.Equal(t, "c", in.GetToken().Content)
}

func TestLexerRoundTripReconstruction(t *testing.T) {
	cfg := preludePreludeConfig()
	cfg.Operators = append(cfg.Operators, "=", "+")
	cfg.Keywords = []string{"let"}

	// CR+LF is normalised to LF in the reconstruction.
	src := "let a = 1 + 2;\r\n/* note */ b\n"
	want := "let a = 1 + 2;\n/* note */ b\n"

	in := NewStringInput("t.push", src)
	in.Configure(cfg)

	var b strings.Builder
	for {
		tok := in.GetToken()
		b.WriteString(tok.LeadingWS)
		b.WriteString(tok.Content)
		if tok.IsEOF() {
			break
		}
		require.GreaterOrEqual(t, tok.Line, 1)
		require.GreaterOrEqual(t, tok.Column, 1)
		require.Equal(t, len([]rune(tok.Content)), tok.LengthCP)
	}
	require.Equal(t, want, b.String())
}

func TestLexerStressManyTokens(t *testing.T) {
	cfg := preludePreludeConfig()
	cfg.Operators = append(cfg.Operators, ".")

	var src strings.Builder
	const groups = 10000
	for i := 0; i < groups; i++ {
		src.WriteString("ident")
		src.WriteString(strconv.Itoa(i))
		src.WriteString(" . ")
	}

	in := NewStringInput("big.push", src.String())
	in.Configure(cfg)

	identifiers, ops := 0, 0
	for {
		tok := in.GetToken()
		if tok.IsEOF() {
			break
		}
		switch tok.Kind {
		case KindIdentifier:
			identifiers++
		case KindOp:
			ops++
		}
	}
	require.Equal(t, groups, identifiers)
	require.Equal(t, groups, ops)
}

func TestGetLinesExpandsTabsAndIsHalfOpen(t *testing.T) {
	cfg := preludePreludeConfig()
	cfg.TabWidth = 4
	in := NewStringInput("t.push", "a\n\tb\nc")
	in.Configure(cfg)
	lines := in.GetLines(1, 3)
	require.Equal(t, []string{"a", "    b"}, lines)
}
