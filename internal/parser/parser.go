// Package parser implements the scope parser: the
// path-forking, rule-matching algorithm that turns a token stream
// inside one nesting level into a single AST node.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"pushc/internal/ast"
	"pushc/internal/diag"
	"pushc/internal/grammar"
	"pushc/internal/lexer"
	"pushc/internal/prelude"
)

// Terminator names which closing token ends the current scope.
type Terminator int

const (
	TermEOF Terminator = iota
	TermBlockEnd
	TermTermEnd
	TermArrayEnd
)

func (t Terminator) label() string {
	switch t {
	case TermBlockEnd:
		return "}"
	case TermTermEnd:
		return ")"
	case TermArrayEnd:
		return "]"
	default:
		return "eof"
	}
}

func (t Terminator) matches(k lexer.Kind) bool {
	switch t {
	case TermBlockEnd:
		return k == lexer.KindBlockEnd
	case TermTermEnd:
		return k == lexer.KindTermEnd
	case TermArrayEnd:
		return k == lexer.KindArrayEnd
	default:
		return false
	}
}

// Parse parses one scope and returns the single AST node it reduces
// to. term names the token that closes this scope; at the
// top level that is TermEOF. openerPos is the position of the token
// that opened this scope, used to anchor an "unexpected EOF"
// diagnostic; it is the zero Position at the top level.
func Parse(in lexer.Input, cfg *prelude.Config, sink *diag.Sink, term Terminator, openerPos diag.Position) (*ast.Node, error) {
	paths := []*path{newPath()}

	for {
		skipComments(in)
		tok := in.PreviewToken()

		if tok.IsEOF() {
			if term != TermEOF {
				sink.Errorf(diag.ErrUnexpectedEOF, openerPos, term.label())
			}
			break
		}
		if term.matches(tok.Kind) {
			break
		}

		node, err := nextNode(in, cfg, sink, paths)
		if err != nil {
			return nil, err
		}
		if node != nil {
			for _, p := range paths {
				p.stack = append(p.stack, node)
			}
		}

		paths = runMatchRound(paths, cfg.Rules.Rules, sink)
	}

	closer := in.GetToken()
	best := selectBestPath(paths)
	return buildTerminatorNode(term, best.stack, openerPos, closer.Pos(), sink), nil
}

// nextNode consumes and classifies exactly one token's worth of input,
// recursing into Parse for nested scopes. A nil, nil result means the
// token was a statement divider, which mutates paths in place instead
// of yielding a single shared node.
func nextNode(in lexer.Input, cfg *prelude.Config, sink *diag.Sink, paths []*path) (*ast.Node, error) {
	tok := in.PreviewToken()

	switch tok.Kind {
	case lexer.KindBlockBegin, lexer.KindTermBegin, lexer.KindArrayBegin:
		in.GetToken()
		inner := nestedTerminator(tok.Kind)
		return Parse(in, cfg, sink, inner, tok.Pos())

	case lexer.KindStatDivider:
		in.GetToken()
		applyStatDivider(paths, tok, sink)
		return nil, nil

	case lexer.KindStringBegin:
		node, err := classifyString(in, cfg)
		if err != nil {
			sink.Errorf(diag.ErrUnterminatedString, tok.Pos())
		}
		return node, err

	case lexer.KindNumber:
		in.GetToken()
		return classifyNumber(tok, cfg), nil

	case lexer.KindIdentifier:
		in.GetToken()
		return classifyIdentifier(tok, cfg), nil

	default:
		// Keywords land here with ops and everything else: a grammar
		// keyword is matched by rules as a literal token, not a symbol.
		in.GetToken()
		return ast.NewToken(tok, ast.Properties(0)), nil
	}
}

func nestedTerminator(k lexer.Kind) Terminator {
	switch k {
	case lexer.KindBlockBegin:
		return TermBlockEnd
	case lexer.KindArrayBegin:
		return TermArrayEnd
	default:
		return TermTermEnd
	}
}

// skipComments discards comment tokens. A comment_begin token is
// emitted at the enclosing level (the frame is pushed after it), so it
// is matched by kind; everything up to and including the matching end
// carries the comment level itself.
func skipComments(in lexer.Input) {
	for {
		tok := in.PreviewToken()
		if tok.IsEOF() {
			return
		}
		if tok.Kind != lexer.KindCommentBegin &&
			tok.Level != lexer.LevelComment && tok.Level != lexer.LevelCommentLine {
			return
		}
		in.GetToken()
	}
}

func classifyIdentifier(tok lexer.Token, cfg *prelude.Config) *ast.Node {
	if def, ok := cfg.Literals[tok.Content]; ok {
		return &ast.Node{
			Kind: ast.KindNumberLiteral, Pos: tok,
			Properties:   basePropsFor(ast.KindNumberLiteral),
			LiteralValue: def.Value, LiteralType: def.TypeName,
		}
	}
	return &ast.Node{
		Kind: ast.KindAtomicSymbol, Pos: tok,
		Properties: basePropsFor(ast.KindAtomicSymbol), Token: tok,
	}
}

func classifyNumber(tok lexer.Token, cfg *prelude.Config) *ast.Node {
	v, _ := strconv.ParseInt(tok.Content, 0, 64)
	return &ast.Node{
		Kind: ast.KindNumberLiteral, Pos: tok,
		Properties:   basePropsFor(ast.KindNumberLiteral),
		LiteralValue: v, LiteralType: cfg.BaseTypes["INTEGER"],
	}
}

// classifyString consumes a whole string level (string_begin ...
// string_end), translating escapes via cfg.Lexer.Escapes and joining
// the rest verbatim, mirroring prelude's getStringLiteral for the
// main lexer's string levels.
func classifyString(in lexer.Input, cfg *prelude.Config) (*ast.Node, error) {
	begin := in.GetToken()
	var text strings.Builder
	for {
		tok := in.GetToken()
		if tok.IsEOF() {
			return nil, fmt.Errorf("unterminated string literal at %s", begin.Pos())
		}
		// Whitespace inside the string rides on the next token's
		// leading_ws (including the closing quote's); restore it.
		text.WriteString(tok.LeadingWS)
		if tok.Kind == lexer.KindStringEnd {
			break
		}
		if tok.Kind == lexer.KindEscapedChar {
			if ch, ok := cfg.Lexer.Escapes[tok.Content]; ok {
				text.WriteRune(ch)
				continue
			}
		}
		text.WriteString(tok.Content)
	}
	return &ast.Node{
		Kind: ast.KindStringLiteral, Pos: begin,
		Properties:  basePropsFor(ast.KindStringLiteral),
		LiteralText: text.String(), LiteralType: cfg.BaseTypes["STRING"],
	}, nil
}

// applyStatDivider wraps the top of every path's stack in a
// single_completed node; a path with an empty stack reports the
// "empty statement" diagnostic at most once for this token, across
// every path that hit it.
func applyStatDivider(paths []*path, tok lexer.Token, sink *diag.Sink) {
	key := fmt.Sprintf("empty-stmt:%d:%d", tok.Line, tok.Column)
	for _, p := range paths {
		if len(p.stack) == 0 {
			sink.ReportOnce(key, diag.Diagnostic{
				Code: diag.ErrEmptyStatement, Severity: diag.SeverityError,
				Message: diag.Templates[diag.ErrEmptyStatement].Short, Pos: tok.Pos(),
			})
			continue
		}
		top := p.stack[len(p.stack)-1]
		p.stack[len(p.stack)-1] = &ast.Node{
			Kind: ast.KindSingleCompleted, Pos: tok,
			Properties: basePropsFor(ast.KindSingleCompleted),
			Children:   []*ast.Node{top},
		}
	}
}

// runMatchRound drives each of the oldCount original paths through
// its own greedy reduce loop, appending any ambiguous forks onto the
// end of paths (left dormant for a later round), then folds paths
// that a non-ambiguous precedence-class update paired back up.
func runMatchRound(paths []*path, rules []*grammar.Rule, sink *diag.Sink) []*path {
	oldCount := len(paths)
	foldCounter := 0

	for i := 0; i < oldCount; i++ {
		p := paths[i]
		skip := 0
		for {
			m := findBest(p.stack, rules, skip)
			if m == nil {
				break
			}
			if m.rule.Ambiguous && skip > 0 {
				break
			}

			updatePrecedence := false
			if m.rule.Ambiguous {
				forked := p.clone()
				forked.history = append(forked.history, grammar.PrecedenceClass{From: grammar.MaxClass, To: m.rule.Class.From})
				paths = append(paths, forked)
				p.history = append(p.history, grammar.PrecedenceClass{From: m.rule.Class.From, To: m.rule.Class.From})
			} else if oldCount > 1 {
				top := p.top()
				if top.To == m.rule.Class.To && top.From == grammar.MaxClass {
					top.From = m.rule.Class.From
					updatePrecedence = true
					foldCounter++
				}
			}

			var pos diag.Position
			if len(m.window) > 0 {
				pos = m.window[0].Pos.Pos()
			}
			p.stack = p.stack[:len(p.stack)-m.cutout]
			for i := len(m.rest) - 1; i >= 0; i-- {
				p.stack = append(p.stack, m.rest[i])
			}
			node := buildNode(m.rule, m.window, m.stst, sink, pos)
			if node.IsSeparable() && updatePrecedence {
				node.Precedence = m.rule.Class.From
			}
			p.stack = append(p.stack, node)

			skip = 1
		}
	}

	return foldPaths(paths, foldCounter, sink)
}

// foldPaths implements the path-folding step: once
// foldCounter non-ambiguous applications have each resolved one
// outstanding fork's pending class, the path list should again be
// exactly half its (now doubled) size; pairs are merged by keeping
// whichever sibling has the smaller pending class.
func foldPaths(paths []*path, foldCounter int, sink *diag.Sink) []*path {
	if foldCounter == 0 {
		return paths
	}
	half := len(paths) / 2
	if foldCounter != half {
		sink.Warnf(diag.ErrPathFoldMismatch, diag.Position{})
		return paths
	}
	for i := 0; i < half; i++ {
		if paths[i].top().From > paths[i+half].top().From {
			paths[i] = paths[i+half]
		}
		paths[i].history = paths[i].history[:len(paths[i].history)-1]
	}
	return paths[:half]
}

// selectBestPath returns the path whose history is lexicographically
// smallest, comparing each history entry's From in order; ties keep
// the earlier (lower-index) path.
func selectBestPath(paths []*path) *path {
	best := paths[0]
	for _, p := range paths[1:] {
		if compareHistory(p.history, best.history) < 0 {
			best = p
		}
	}
	return best
}

func compareHistory(a, b []grammar.PrecedenceClass) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].From != b[i].From {
			if a[i].From < b[i].From {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// buildTerminatorNode produces the final node for the scope once its
// terminator has been reached:
// eof -> decl_scope (every remaining element is a direct child, no
// single-node reduction); '}' -> set if the lone remaining element is
// a comma_list, else block; ')' -> too-many-expressions diagnostic and
// an empty tuple if more than one element remains, else unit/tuple/
// term; ']' -> array_specifier unconditionally.
func buildTerminatorNode(term Terminator, stack []*ast.Node, openerPos, closerPos diag.Position, sink *diag.Sink) *ast.Node {
	pos := openerPos
	if pos.IsZero() {
		pos = closerPos
	}
	// Scope nodes have no single originating token; a synthetic one
	// carries the opener's (or closer's) location for diagnostics.
	posTok := lexer.Token{File: pos.File, Line: pos.Line, Column: pos.Column, LengthCP: pos.LengthCP}
	props := func(k ast.Kind) ast.Properties { return basePropsFor(k) }

	switch term {
	case TermEOF:
		return &ast.Node{Kind: ast.KindDeclScope, Pos: posTok, Properties: props(ast.KindDeclScope), Children: stack}

	case TermBlockEnd:
		if len(stack) == 1 && stack[0].Kind == ast.KindCommaList {
			return &ast.Node{Kind: ast.KindSet, Pos: posTok, Properties: props(ast.KindSet), Children: stack[0].Children}
		}
		return &ast.Node{Kind: ast.KindBlock, Pos: posTok, Properties: props(ast.KindBlock), Children: stack}

	case TermArrayEnd:
		return &ast.Node{Kind: ast.KindArraySpecifier, Pos: posTok, Properties: props(ast.KindArraySpecifier), Children: stack}

	default: // TermTermEnd
		if len(stack) > 1 {
			sink.Errorf(diag.ErrTooManyTermExprs, pos)
			return &ast.Node{Kind: ast.KindTuple, Pos: posTok, Properties: props(ast.KindTuple)}
		}
		if len(stack) == 0 {
			return &ast.Node{Kind: ast.KindUnit, Pos: posTok, Properties: props(ast.KindUnit)}
		}
		if stack[0].Kind == ast.KindCommaList {
			return &ast.Node{Kind: ast.KindTuple, Pos: posTok, Properties: props(ast.KindTuple), Children: stack[0].Children}
		}
		return &ast.Node{Kind: ast.KindTerm, Pos: posTok, Properties: props(ast.KindTerm), Children: stack}
	}
}
