package parser

import "pushc/internal/ast"
import "pushc/internal/grammar"
import "pushc/internal/diag"

// childKeyByLabel maps a syntax-pair's "-> name" label to the closed
// ast.ChildKey set a constructed node's Named map indexes by. A label with no entry here falls back to a
// plain Children append, so every matched slot ends up somewhere on
// the node even without a dedicated key.
var childKeyByLabel = map[string]ast.ChildKey{
	"left":         ast.ChildLeft,
	"right":        ast.ChildRight,
	"cond":         ast.ChildCond,
	"condition":    ast.ChildCond,
	"iterator":     ast.ChildIter,
	"itr":          ast.ChildIter,
	"base":         ast.ChildBase,
	"index":        ast.ChildIndex,
	"member":       ast.ChildMember,
	"parameters":   ast.ChildParameters,
	"return_type":  ast.ChildReturnType,
	"symbol":       ast.ChildSymbol,
	"symbol_like":  ast.ChildSymbol,
	"selector":     ast.ChildSelect,
	"select":       ast.ChildSelect,
	"from":         ast.ChildFrom,
	"to":           ast.ChildTo,
	"true_expr":    ast.ChildTrueExpr,
	"false_expr":   ast.ChildFalseExpr,
}

// separableTypes names the SyntaxTypes whose constructed node may
// later be re-split by a lower-precedence rule.
var separableTypes = map[grammar.SyntaxType]bool{
	grammar.SyntaxOperator:    true,
	grammar.SyntaxAssignment:  true,
	grammar.SyntaxImplication: true,
	grammar.SyntaxCommaList:   true,
	grammar.SyntaxRange:       true,
	grammar.SyntaxBinding:     true,
}

func syntaxKind(t grammar.SyntaxType) ast.Kind {
	switch t {
	case grammar.SyntaxOperator, grammar.SyntaxAssignment, grammar.SyntaxImplication:
		return ast.KindOperator
	case grammar.SyntaxScopeAccess:
		return ast.KindScopeAccess
	case grammar.SyntaxLoop:
		return ast.KindControlFlow
	case grammar.SyntaxRange:
		return ast.KindRange
	case grammar.SyntaxFunctionHead:
		return ast.KindFunctionHead
	case grammar.SyntaxFunctionDef:
		return ast.KindFunctionDef
	case grammar.SyntaxArrayAccess:
		return ast.KindArrayAccess
	case grammar.SyntaxCommaList:
		return ast.KindCommaList
	case grammar.SyntaxStaticStatement:
		return ast.KindStaticStatement
	case grammar.SyntaxTemplatePostfix:
		return ast.KindTemplatePostfix
	case grammar.SyntaxBinding:
		return ast.KindBindings
	case grammar.SyntaxIfCond, grammar.SyntaxIfElse:
		return ast.KindControlFlow
	case grammar.SyntaxStructure:
		return ast.KindStruct
	case grammar.SyntaxTrait:
		return ast.KindTrait
	case grammar.SyntaxImplementation:
		return ast.KindImpl
	case grammar.SyntaxModule:
		return ast.KindModule
	default:
		return ast.KindOperator
	}
}

// basePropsFor gives each constructed Kind the property bits the rest
// of the matcher relies on: PropOperand so the node can fill an expr/
// symbol-typed pattern slot, PropCompleted for anything that reads as
// a finished expression; the extra bits record the surface shape the
// matcher's property slots select on.
func basePropsFor(k ast.Kind) ast.Properties {
	p := ast.Properties(0).With(ast.PropOperand).With(ast.PropCompleted)
	switch k {
	case ast.KindTerm, ast.KindTuple, ast.KindUnit:
		p = p.With(ast.PropParenthesis)
	case ast.KindBlock, ast.KindSet:
		p = p.With(ast.PropBraces)
	case ast.KindArraySpecifier:
		p = p.With(ast.PropBrackets)
	case ast.KindAtomicSymbol:
		p = p.With(ast.PropSymbol).With(ast.PropSymbolLike)
	case ast.KindTemplatePostfix, ast.KindScopeAccess:
		p = p.With(ast.PropSymbolLike)
	case ast.KindNumberLiteral, ast.KindStringLiteral:
		p = p.With(ast.PropLiteral)
	case ast.KindStaticStatement:
		p = ast.Properties(0)
	}
	return p
}

// buildNode constructs the AST node for one rule application. window
// is the matched slots in forward (left-to-right) order; stst is the
// static_statement nodes the matcher siphoned out of the region.
func buildNode(rule *grammar.Rule, window []*ast.Node, stst []*ast.Node, sink *diag.Sink, pos diag.Position) *ast.Node {
	if rule.Build != nil {
		slots := make(map[string]*ast.Node, len(rule.Pattern))
		for i, slot := range rule.Pattern {
			if slot.Label != "" {
				slots[slot.Label] = window[i]
			}
		}
		node := rule.Build(slots)
		node.StaticStatements = stst
		return node
	}

	kind := syntaxKind(rule.Type)
	node := &ast.Node{
		Kind:         kind,
		Properties:   basePropsFor(kind),
		Precedence:   rule.Precedence,
		FnName:       rule.Fn,
		Range:        rule.RangeKind,
		ContinueEval: rule.ContinueEval,
		StaticStatements: stst,
		Named:        map[ast.ChildKey]*ast.Node{},
	}
	if len(window) > 0 {
		node.Pos = window[0].Pos
	}
	if separableTypes[rule.Type] {
		node.Properties = node.Properties.With(ast.PropSeparable)
		node.OriginalList = append([]*ast.Node(nil), window...)
	}
	if rule.Type == grammar.SyntaxAssignment {
		node.Properties = node.Properties.With(ast.PropAssignment)
	}
	if rule.Type == grammar.SyntaxImplication {
		node.Properties = node.Properties.With(ast.PropImplication)
	}

	for i, slot := range rule.Pattern {
		matched := window[i]

		// comma_list flattening: a comma-list rule that matches an
		// already-built comma_list child merges its children in
		// rather than nesting a comma_list-of-comma_list.
		if rule.Type == grammar.SyntaxCommaList && matched.Kind == ast.KindCommaList {
			node.Children = append(node.Children, matched.Children...)
			continue
		}

		switch slot.Label {
		case "op":
			node.Token = matched.Token
		case "op1":
			node.Token = matched.Token
		case "op2":
			node.Token.Content += matched.Token.Content
		case "child", "head":
			node.Children = append(node.Children, matched)
		case "":
			// unlabeled literal-token slot: contributes nothing beyond
			// having matched.
		default:
			if key, ok := childKeyByLabel[slot.Label]; ok {
				if rule.Type == grammar.SyntaxArrayAccess && slot.Label == "index" {
					if len(matched.Children) != 1 {
						sink.Errorf(diag.ErrArrayAccessArity, pos)
					} else {
						matched = matched.Children[0]
					}
				}
				node.Named[key] = matched
			} else {
				node.Children = append(node.Children, matched)
			}
		}
	}
	return node
}
