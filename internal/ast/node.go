// Package ast defines the expression-tree node shape produced by the
// scope parser.
package ast

import "pushc/internal/lexer"

// Kind is the closed set of expression kinds a node can carry.
type Kind int

const (
	KindNone Kind = iota // wildcard used only in match patterns
	KindBlock
	KindDeclScope
	KindTerm
	KindTuple
	KindUnit
	KindSet
	KindArraySpecifier
	KindNumberLiteral
	KindStringLiteral
	KindAtomicSymbol
	KindFunctionHead
	KindFunctionDef
	KindFunctionCall
	KindOperator
	KindBindings
	KindControlFlow
	KindStruct
	KindTrait
	KindImpl
	KindModule
	KindToken // a raw, not-yet-reduced token pushed onto the expression stack
	KindSingleCompleted
	KindStaticStatement
	KindCommaList
	KindArrayAccess
	KindScopeAccess
	KindRange
	KindTemplatePostfix
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBlock:
		return "block"
	case KindDeclScope:
		return "decl_scope"
	case KindTerm:
		return "term"
	case KindTuple:
		return "tuple"
	case KindUnit:
		return "unit"
	case KindSet:
		return "set"
	case KindArraySpecifier:
		return "array_specifier"
	case KindNumberLiteral:
		return "number_literal"
	case KindStringLiteral:
		return "string_literal"
	case KindAtomicSymbol:
		return "atomic_symbol"
	case KindFunctionHead:
		return "function_head"
	case KindFunctionDef:
		return "function_def"
	case KindFunctionCall:
		return "function_call"
	case KindOperator:
		return "operator"
	case KindBindings:
		return "bindings"
	case KindControlFlow:
		return "control_flow"
	case KindStruct:
		return "struct"
	case KindTrait:
		return "trait"
	case KindImpl:
		return "impl"
	case KindModule:
		return "module"
	case KindToken:
		return "token"
	case KindSingleCompleted:
		return "single_completed"
	case KindStaticStatement:
		return "static_statement"
	case KindCommaList:
		return "comma_list"
	case KindArrayAccess:
		return "array_access"
	case KindScopeAccess:
		return "scope_access"
	case KindRange:
		return "range"
	case KindTemplatePostfix:
		return "template_postfix"
	default:
		return "invalid"
	}
}

// Property is one bit of a node's property set (operand/completed/...).
type Property uint32

const (
	PropOperand Property = 1 << iota
	PropCompleted
	PropParenthesis
	PropBraces
	PropBrackets
	PropSymbol
	PropSymbolLike
	PropLiteral
	PropSeparable
	PropAssignment
	PropImplication
)

// Properties is a property set; Has reports membership and IsSubsetOf
// implements the "pattern properties must be a subset of candidate
// properties" matching rule.
type Properties Property

func (p Properties) Has(f Property) bool         { return Property(p)&f != 0 }
func (p Properties) With(f Property) Properties  { return Properties(Property(p) | f) }
func (p Properties) IsSubsetOf(other Properties) bool {
	return Property(p)&Property(other) == Property(p)
}

// ChildKey names a slot in a node's named-children map.
type ChildKey int

const (
	ChildLeft ChildKey = iota
	ChildRight
	ChildCond
	ChildIter
	ChildBase
	ChildIndex
	ChildMember
	ChildParameters
	ChildReturnType
	ChildHead
	ChildSymbol
	ChildSelect
	ChildFrom
	ChildTo
	ChildTrueExpr
	ChildFalseExpr
)

// RangeKind distinguishes inclusive/exclusive range syntax.
type RangeKind int

const (
	RangeInclusive RangeKind = iota
	RangeExclusive
)

// Node is one AST expression. Position/Token/Literal fields are only
// meaningful for the kinds that use them; zero values elsewhere.
type Node struct {
	Kind       Kind
	Properties Properties
	Pos        lexer.Token // carries File/Line/Column for diagnostics

	Children []*Node
	Named    map[ChildKey]*Node

	Token        lexer.Token // set for KindToken/KindOperator nodes
	LiteralText  string      // string literal payload
	LiteralValue int64       // number literal payload
	LiteralType  string      // the BASE_TYPE/NEW_LITERAL name backing this literal

	// Separable nodes (e.g. comma lists) remember their flattened
	// source list so a lower-precedence rule can re-split them.
	OriginalList []*Node

	ContinueEval bool   // pre/post-condition loop: abort-style vs continue-style
	Range        RangeKind
	FnName       string // function bound to the rule that built this node (grammar.Rule.Fn)

	// StaticStatements collects any static_statement nodes the scope
	// parser siphoned out of the matched window while building this
	// node.
	StaticStatements []*Node

	// Precedence is the precedence of the rule that built this node.
	// Consulted by the scope parser's separable re-splitting (a node
	// only yields up its OriginalList to a rule of lower precedence, or
	// of equal precedence when that rule is right-to-left) — set at
	// construction, not just a
	// construction scratch value.
	Precedence uint32
}

// NewToken builds a raw token node with the given property set, used
// for "anything else is pushed as a token node".
func NewToken(tok lexer.Token, props Properties) *Node {
	return &Node{Kind: KindToken, Token: tok, Pos: tok, Properties: props}
}

// Matches implements the pattern test used by rule matching: a KindNone pattern matches any kind; a KindToken pattern also
// requires the token content to match; the pattern's properties must be
// a subset of the candidate's.
func (pattern *Node) Matches(candidate *Node) bool {
	if candidate == nil {
		return false
	}
	if pattern.Kind != KindNone && pattern.Kind != candidate.Kind {
		return false
	}
	if pattern.Kind == KindToken && pattern.Token.Content != candidate.Token.Content {
		return false
	}
	return pattern.Properties.IsSubsetOf(candidate.Properties)
}

// IsSeparable reports whether n can be re-split via OriginalList.
func (n *Node) IsSeparable() bool { return n.Properties.Has(PropSeparable) }
