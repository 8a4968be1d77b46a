package parser

import (
	"pushc/internal/ast"
	"pushc/internal/diag"
	"pushc/internal/lexer"
	"pushc/internal/logging"
	"pushc/internal/prelude"
	"pushc/internal/queryengine"

	"go.uber.org/zap"
)

// ParseFile tokenizes path under cfg and parses the whole file as one
// top-level scope.
func ParseFile(path string, cfg *prelude.Config, sink *diag.Sink) (*ast.Node, error) {
	in, err := lexer.NewFileInput(path)
	if err != nil {
		return nil, err
	}
	in.Configure(cfg.Lexer)
	return Parse(in, cfg, sink, TermEOF, diag.Position{})
}

// ParseString parses already-read source content under cfg, labelled
// name for diagnostics.
func ParseString(name, content string, cfg *prelude.Config, sink *diag.Sink) (*ast.Node, error) {
	in := lexer.NewStringInput(name, content)
	in.Configure(cfg.Lexer)
	return Parse(in, cfg, sink, TermEOF, diag.Position{})
}

// DoParseAST exposes the parse as a memoised query keyed by the file's
// path and content; content is the already-read source (a sub-query of
// get_ast, so an unchanged file is not re-parsed on a later pass).
func DoParseAST(w *queryengine.Worker, path, content string, cfg *prelude.Config, sink *diag.Sink) (*ast.Node, error) {
	return queryengine.DoQuery(w, "parse_ast", func() (*ast.Node, error) {
		logging.For(logging.CategoryParser).Debug("parsing file", zap.String("path", path))
		return ParseString(path, content, cfg, sink)
	}, path, content)
}
