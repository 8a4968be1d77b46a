package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphemeLenEmojiCluster(t *testing.T) {
	// "🦄🦓and🦌": single-codepoint unicorn/zebra emoji, the ascii "and",
	// then a single-codepoint deer emoji. Pins column accounting to
	// grapheme clusters rather than bytes or code points.
	s := "🦄🦓and🦌"
	require.Equal(t, 6, GraphemeLen(s, DefaultTabWidth))
	require.Equal(t, 6, CodePointLen(s))
}

func TestGraphemeLenCombiningMark(t *testing.T) {
	// "e" + combining acute accent is two code points, one grapheme.
	s := "é"
	assert.Equal(t, 2, CodePointLen(s))
	assert.Equal(t, 1, GraphemeLen(s, DefaultTabWidth))
}

func TestGraphemeLenTabWidth(t *testing.T) {
	assert.Equal(t, 4, GraphemeLen("\t", 4))
	assert.Equal(t, 8, GraphemeLen("\t", 8))
	assert.Equal(t, 6, GraphemeLen("\tab", 4))
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc", NormalizeNewlines("a\r\nb\rc"))
	assert.Equal(t, "abc", NormalizeNewlines("abc"))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\r\nb\nc"))
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "    x", ExpandTabs("\tx", 4))
}

func TestTrimBOM(t *testing.T) {
	assert.Equal(t, "abc", TrimBOM("\ufeffabc"))
	assert.Equal(t, "abc", TrimBOM("abc"))
}
