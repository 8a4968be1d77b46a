// Package grammar holds the operator/syntax-rule table the scope
// parser matches against.
package grammar

import (
	"sort"

	"pushc/internal/ast"
)

// Associativity is a rule's associativity.
type Associativity int

const (
	LeftToRight Associativity = iota
	RightToLeft
)

// SyntaxType names the kind of construct a rule builds.
type SyntaxType string

const (
	SyntaxOperator      SyntaxType = "operator"
	SyntaxAssignment    SyntaxType = "assignment"
	SyntaxImplication   SyntaxType = "implication"
	SyntaxScopeAccess   SyntaxType = "scope_access"
	SyntaxLoop          SyntaxType = "loop"
	SyntaxRange         SyntaxType = "range"
	SyntaxFunctionHead  SyntaxType = "func_head"
	SyntaxFunctionDef   SyntaxType = "func_def"
	SyntaxArrayAccess   SyntaxType = "array_access"
	SyntaxCommaList     SyntaxType = "comma_list"
	SyntaxStaticStatement SyntaxType = "static_statement"
	SyntaxTemplatePostfix SyntaxType = "template_postfix"
	SyntaxBinding       SyntaxType = "binding"
	SyntaxIfCond        SyntaxType = "if_cond"
	SyntaxIfElse        SyntaxType = "if_else"
	SyntaxStructure     SyntaxType = "structure"
	SyntaxTrait         SyntaxType = "trait"
	SyntaxImplementation SyntaxType = "implementation"
	SyntaxModule        SyntaxType = "module"
)

// SlotKind distinguishes the three things a pattern slot can require.
type SlotKind int

const (
	SlotNodeKind SlotKind = iota
	SlotProperty
	SlotLiteralToken
)

// Slot is one element of a rule's pattern.
type Slot struct {
	Label   string // e.g. "left", "op", "child", "head"
	Kind    SlotKind
	Node    ast.Kind       // valid when Kind == SlotNodeKind
	Props   ast.Properties // valid when Kind == SlotProperty
	Literal string         // valid when Kind == SlotLiteralToken
}

// PrecedenceClass is the (from,to) pair used for class-aware path
// folding.
type PrecedenceClass struct {
	From, To uint32
}

// MaxClass is the class every path's history starts with.
const MaxClass = ^uint32(0)

// Rule is one syntax rule.
type Rule struct {
	Name          string
	Type          SyntaxType
	Precedence    uint32
	Assoc         Associativity
	Ambiguous     bool
	Class         PrecedenceClass
	PrecBias      uint32 // lower wins when both rules set it; an unset bias sorts as 0
	HasPrecBias   bool
	Pattern       []Slot
	ContinueEval  bool // pre/post-condition loop flag
	RangeKind     ast.RangeKind
	Fn            string // function bound to OPERATOR/ASSIGNMENT/IMPLICATION/FUNCTION_DEFINITION rules

	// Build constructs the resulting node from the slots it matched,
	// keyed by Slot.Label -> the matched candidate node.
	Build func(matched map[string]*ast.Node) *ast.Node
}

// Table is the globally pre-sorted rule list the parser iterates.
type Table struct {
	Rules []*Rule
}

// NewTable sorts rules stably: higher
// prec_bias first, ties broken by higher precedence. A rule with no
// bias set sorts after every biased rule (bias 0 is treated as "lowest"
// here; callers needing bias 0 to win should set HasPrecBias true).
func NewTable(rules []*Rule) *Table {
	sorted := make([]*Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sorted[i].sortBias(), sorted[j].sortBias()
		if bi != bj {
			return bi > bj
		}
		return sorted[i].Precedence > sorted[j].Precedence
	})
	return &Table{Rules: sorted}
}

func (r *Rule) sortBias() uint32 {
	if !r.HasPrecBias {
		return 0
	}
	return r.PrecBias
}
