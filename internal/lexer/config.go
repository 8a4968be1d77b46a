package lexer

import "sort"

// RangeKind selects which character-range set a rune is tested against.
type RangeKind int

const (
	RangeIdentifier RangeKind = iota
	RangeOptIdentifier
	RangeInteger
	RangeWS
	RangeOp
)

// RuneRange is an inclusive [From, To] code-point range.
type RuneRange struct {
	From, To rune
}

func (r RuneRange) Contains(c rune) bool { return c >= r.From && c <= r.To }

// LevelDef describes one openable/closable token level: its lexing mode
// (Kind), its opening/closing literal strings, and the token Kind stamped
// on the tokens that open/close it. Block/term/array pairs and
// prelude-declared comment/comment_line/string levels are all LevelDefs.
type LevelDef struct {
	Name               string
	Kind               LevelKind
	Begin, End         string
	BeginKind, EndKind Kind
}

// Config is the full lexer configuration assembled by the prelude loader.
type Config struct {
	StatDividers []string
	Levels       []LevelDef
	// Overlay maps an outer level Name ("" = root) to the inner level
	// Names allowed to open while that level is on top of the stack. An
	// absent or empty entry for a name means "all allowed" only for the
	// root (""); for any other name an absent entry means "nothing
	// allowed".
	Overlay map[string][]string
	// Escapes maps an escape sequence's literal source text (e.g. `\n`)
	// to the code point it encodes; only consulted while lexing inside a
	// LevelString-kind level.
	Escapes map[string]rune
	Ranges  map[RangeKind][]RuneRange
	// Operators and Keywords are literal-matched non-sticky tokens;
	// longest-first order is established by Finalize.
	Operators []string
	Keywords  []string
	TabWidth  int

	maxOpSize int
}

// NewConfig returns an empty configuration with the built-in block/term/
// array level pairs pre-registered; EXPRESSION_RULES can rebind their
// delimiter strings but the three pairs themselves are intrinsic.
func NewConfig() *Config {
	c := &Config{
		Levels: []LevelDef{
			{Name: "block", Kind: LevelNormal, Begin: "{", End: "}", BeginKind: KindBlockBegin, EndKind: KindBlockEnd},
			{Name: "term", Kind: LevelNormal, Begin: "(", End: ")", BeginKind: KindTermBegin, EndKind: KindTermEnd},
			{Name: "array", Kind: LevelNormal, Begin: "[", End: "]", BeginKind: KindArrayBegin, EndKind: KindArrayEnd},
		},
		Overlay: map[string][]string{},
		Escapes: map[string]rune{},
		Ranges:  map[RangeKind][]RuneRange{},
		TabWidth: DefaultTabWidthFallback,
	}
	return c
}

// DefaultTabWidthFallback is used if no preference overrides tab width.
const DefaultTabWidthFallback = 4

// AddLevel registers a level definition and whitelists it under the given
// outer level names ("" denotes root).
func (c *Config) AddLevel(def LevelDef, allowedUnder ...string) {
	c.Levels = append(c.Levels, def)
	for _, outer := range allowedUnder {
		c.Overlay[outer] = append(c.Overlay[outer], def.Name)
	}
}

// AddOverlay whitelists innerName to open while outerName is on top.
func (c *Config) AddOverlay(outerName, innerName string) {
	c.Overlay[outerName] = append(c.Overlay[outerName], innerName)
}

// AllowedUnder reports whether a level named innerName may open while the
// stack top is named outerName.
func (c *Config) AllowedUnder(outerName, innerName string) bool {
	list, ok := c.Overlay[outerName]
	if !ok || len(list) == 0 {
		return outerName == ""
	}
	for _, n := range list {
		if n == innerName {
			return true
		}
	}
	return false
}

// AddRange appends a character range to the named set.
func (c *Config) AddRange(kind RangeKind, from, to rune) {
	c.Ranges[kind] = append(c.Ranges[kind], RuneRange{From: from, To: to})
}

// InRange reports whether c is a member of the named range set.
func (cfg *Config) InRange(kind RangeKind, r rune) bool {
	for _, rr := range cfg.Ranges[kind] {
		if rr.Contains(r) {
			return true
		}
	}
	return false
}

// Finalize recomputes max_op_size across every literal token (operators,
// keywords, level openers/closers, stat dividers, escapes) and sorts
// Operators longest-first so greedy matching picks the longest literal
// match first.
func (c *Config) Finalize() {
	max := 1
	consider := func(s string) {
		if n := len(s); n > max {
			max = n
		}
	}
	for _, s := range c.StatDividers {
		consider(s)
	}
	for _, lv := range c.Levels {
		consider(lv.Begin)
		consider(lv.End)
	}
	for _, op := range c.Operators {
		consider(op)
	}
	for _, kw := range c.Keywords {
		consider(kw)
	}
	for esc := range c.Escapes {
		consider(esc)
	}
	c.maxOpSize = max

	sort.SliceStable(c.Operators, func(i, j int) bool {
		return len(c.Operators[i]) > len(c.Operators[j])
	})
}

// MaxOpSize returns the widest literal token width, clamped to >= 1.
func (c *Config) MaxOpSize() int {
	if c.maxOpSize < 1 {
		return 1
	}
	return c.maxOpSize
}

// IsKeyword reports whether content is a configured keyword.
func (c *Config) IsKeyword(content string) bool {
	for _, kw := range c.Keywords {
		if kw == content {
			return true
		}
	}
	return false
}
