// Package prelude implements the MCI (meta-compiler instruction) loader
// that turns a prelude file into the lexer configuration and syntax
// rule table the rest of the compiler consults.
package prelude

import (
	"pushc/internal/grammar"
	"pushc/internal/lexer"
)

// LiteralDef is one NEW_LITERAL registration.
type LiteralDef struct {
	TypeName string
	Value    int64
}

// Config is the accumulated result of running every define_mci_rule
// call in a prelude file.
type Config struct {
	Lexer *lexer.Config
	Rules *grammar.Table

	ruleList []*grammar.Rule

	Literals       map[string]LiteralDef
	BaseTypes      map[string]string // slot -> bound name
	MemBlobs       map[string]int    // name -> byte size
	IdentifierCase map[string]string // category -> case
	UnusedPrefixes []string
	SpaceBindsIdentifier bool

	// ScopeAccessOp is derived after parsing by scanning the last
	// SCOPE_ACCESS syntax rule's "op" slot; "::" with a recorded
	// warning if none was declared.
	ScopeAccessOp        string
	scopeAccessFellBack  bool
}

// NewConfig returns an empty configuration with an empty lexer.Config
// ready for MCI-driven population.
func NewConfig() *Config {
	return &Config{
		Lexer:          lexer.NewConfig(),
		Literals:       make(map[string]LiteralDef),
		BaseTypes:      make(map[string]string),
		MemBlobs:       make(map[string]int),
		IdentifierCase: make(map[string]string),
		ScopeAccessOp:  "::",
	}
}

// Finalize builds the sorted rule table and derives the scope-access
// operator; called once after every define_mci_rule call has been
// applied.
func (c *Config) Finalize() {
	c.registerRuleTokens()
	c.Lexer.Finalize()
	c.Rules = grammar.NewTable(c.ruleList)

	var lastScopeAccessOp string
	for _, r := range c.ruleList {
		if r.Type != grammar.SyntaxScopeAccess {
			continue
		}
		for _, slot := range r.Pattern {
			if slot.Label == "op" && slot.Kind == grammar.SlotLiteralToken {
				lastScopeAccessOp = slot.Literal
			}
		}
	}
	if lastScopeAccessOp != "" {
		c.ScopeAccessOp = lastScopeAccessOp
	} else {
		c.ScopeAccessOp = "::"
		c.scopeAccessFellBack = true
	}
}

// registerRuleTokens enters every literal token a SYNTAX rule matches
// into the lexer's non-sticky tables, so the lexer can actually emit
// them: identifier-shaped literals become keywords (a sticky identifier
// run reclassifies against the keyword list), anything else becomes an
// operator matched greedily by width. Runs before Lexer.Finalize so the
// new entries are counted into max_op_size and the longest-first sort.
func (c *Config) registerRuleTokens() {
	for _, r := range c.ruleList {
		for _, slot := range r.Pattern {
			if slot.Kind != grammar.SlotLiteralToken || slot.Literal == "" {
				continue
			}
			lit := slot.Literal
			if c.Lexer.IsKeyword(lit) || hasString(c.Lexer.Operators, lit) {
				continue
			}
			if c.identifierShaped(lit) {
				c.Lexer.Keywords = append(c.Lexer.Keywords, lit)
			} else {
				c.Lexer.Operators = append(c.Lexer.Operators, lit)
			}
		}
	}
}

// identifierShaped reports whether lit would lex as a single sticky
// identifier run under the current ranges.
func (c *Config) identifierShaped(lit string) bool {
	for i, r := range lit {
		if i == 0 {
			if !c.Lexer.InRange(lexer.RangeIdentifier, r) {
				return false
			}
			continue
		}
		if !c.Lexer.InRange(lexer.RangeIdentifier, r) && !c.Lexer.InRange(lexer.RangeOptIdentifier, r) {
			return false
		}
	}
	return lit != ""
}

func hasString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// ScopeAccessFellBack reports whether ScopeAccessOp defaulted to "::"
// for want of a declared SCOPE_ACCESS rule.
func (c *Config) ScopeAccessFellBack() bool { return c.scopeAccessFellBack }
