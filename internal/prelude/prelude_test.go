package prelude

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pushc/internal/diag"
	"pushc/internal/grammar"
	"pushc/internal/lexer"
)

func writePrelude(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.push")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const samplePrelude = `
define_mci_rule(EXPRESSION_RULES, divide, semicolon);
define_mci_rule(IDENTIFIER_RULES, no_spaces);
define_mci_rule(IDENTIFIER_CASE, variable, snake);
define_mci_rule(LITERAL_CHARACTER_ESCAPES, "\n", newline);
define_mci_rule(NEW_RANGE, identifier, "a" "z");
define_mci_rule(NEW_LEVEL, COMMENT_LINE, line_comment, "//", newline);
define_mci_rule(SYNTAX, OPERATOR, add, 5, ltr, triple_list, expr -> left, "+" -> op, expr -> right);
define_mci_rule(SYNTAX, SCOPE_ACCESS, 1, ltr, single_list, "::" -> op);
define_mci_rule(BASE_TYPE, INTEGER, i64);
define_mci_rule(TYPE_MEMORY_BLOB, "byte", 1);
define_mci_rule(NEW_LITERAL, "true", "bool", 1);
`

func TestLoadFileAppliesEveryMCI(t *testing.T) {
	path := writePrelude(t, samplePrelude)
	sink := diag.NewSink(diag.DefaultCaps())

	cfg, err := LoadFile(path, sink)
	require.NoError(t, err)
	require.False(t, sink.HasErrors())

	require.Contains(t, cfg.Lexer.StatDividers, ";")
	require.False(t, cfg.SpaceBindsIdentifier)
	require.Equal(t, "snake", cfg.IdentifierCase["variable"])
	require.Equal(t, byte('\n'), byte(cfg.Lexer.Escapes[`\n`]))
	require.True(t, cfg.Lexer.InRange(lexer.RangeIdentifier, 'q'))
	require.Equal(t, "i64", cfg.BaseTypes["INTEGER"])
	require.Equal(t, 1, cfg.MemBlobs["byte"])
	require.Equal(t, int64(1), cfg.Literals["true"].Value)
	require.Equal(t, "bool", cfg.Literals["true"].TypeName)
	require.Equal(t, "::", cfg.ScopeAccessOp)
	require.False(t, cfg.ScopeAccessFellBack())

	require.Len(t, cfg.Rules.Rules, 2)
	var addRule *grammar.Rule
	for _, rule := range cfg.Rules.Rules {
		if rule.Type == grammar.SyntaxOperator {
			addRule = rule
		}
	}
	require.NotNil(t, addRule)
	require.Equal(t, "add", addRule.Fn)
	require.Len(t, addRule.Pattern, 3)
	require.Equal(t, "op", addRule.Pattern[1].Label)
	require.Equal(t, "+", addRule.Pattern[1].Literal)
	require.Equal(t, "left", addRule.Pattern[0].Label)

	// Finalize registers every rule-pattern literal into the lexer's
	// non-sticky tables.
	require.Contains(t, cfg.Lexer.Operators, "+")
	require.Contains(t, cfg.Lexer.Operators, "::")
}

func TestLoadFileScopeAccessFallsBackWithoutRule(t *testing.T) {
	path := writePrelude(t, `define_mci_rule(BASE_TYPE, INTEGER, i64);`)
	sink := diag.NewSink(diag.DefaultCaps())

	cfg, err := LoadFile(path, sink)
	require.NoError(t, err)
	require.Equal(t, "::", cfg.ScopeAccessOp)
	require.True(t, cfg.ScopeAccessFellBack())

	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ErrScopeAccessFallback {
			found = true
		}
	}
	require.True(t, found)
}

func TestLoadFileRejectsUnknownMCI(t *testing.T) {
	path := writePrelude(t, `define_mci_rule(NOT_A_REAL_MCI, foo);`)
	_, err := LoadFile(path, diag.NewSink(diag.DefaultCaps()))
	require.Error(t, err)
}

func TestLoadResolvesBootstrapPreludeWithoutFile(t *testing.T) {
	cfg, err := Load("prelude", "/nonexistent", nil)
	require.NoError(t, err)
	require.Contains(t, cfg.Lexer.Operators, ",")
}
