package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pushc/internal/lexer"
)

func TestMatchesNoneKindMatchesAnything(t *testing.T) {
	pattern := &Node{Kind: KindNone}
	candidate := &Node{Kind: KindAtomicSymbol, Properties: Properties(PropSymbol)}
	require.True(t, pattern.Matches(candidate))
}

func TestMatchesTokenKindRequiresContent(t *testing.T) {
	pattern := NewToken(lexer.Token{Content: "+"}, 0)
	pattern.Kind = KindToken
	match := NewToken(lexer.Token{Content: "+"}, 0)
	mismatch := NewToken(lexer.Token{Content: "-"}, 0)
	require.True(t, pattern.Matches(match))
	require.False(t, pattern.Matches(mismatch))
}

func TestMatchesRequiresPropertySubset(t *testing.T) {
	pattern := &Node{Kind: KindNone, Properties: Properties(PropOperand | PropSymbol)}
	full := &Node{Kind: KindAtomicSymbol, Properties: Properties(PropOperand | PropSymbol | PropLiteral)}
	partial := &Node{Kind: KindAtomicSymbol, Properties: Properties(PropOperand)}
	require.True(t, pattern.Matches(full))
	require.False(t, pattern.Matches(partial))
}

func TestPropertiesWithAndHas(t *testing.T) {
	var p Properties
	p = p.With(PropOperand).With(PropLiteral)
	require.True(t, p.Has(PropOperand))
	require.True(t, p.Has(PropLiteral))
	require.False(t, p.Has(PropBraces))
}
