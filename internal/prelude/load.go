package prelude

import (
	"fmt"
	"path/filepath"

	"pushc/internal/diag"
	"pushc/internal/lexer"
	"pushc/internal/logging"
	"pushc/internal/queryengine"
	"go.uber.org/zap"
)

// BootstrapConfig returns the hard-coded "prelude-prelude" token
// configuration a prelude file is itself tokenized with.
func BootstrapConfig() *lexer.Config {
	c := lexer.NewConfig()
	c.StatDividers = []string{";"}
	c.AddLevel(lexer.LevelDef{Name: "line_comment", Kind: lexer.LevelCommentLine, Begin: "//", End: "\n", BeginKind: lexer.KindCommentBegin, EndKind: lexer.KindCommentEnd}, "")
	c.AddLevel(lexer.LevelDef{Name: "line_comment_cr", Kind: lexer.LevelCommentLine, Begin: "//", End: "\r", BeginKind: lexer.KindCommentBegin, EndKind: lexer.KindCommentEnd}, "")
	c.AddLevel(lexer.LevelDef{Name: "block_comment", Kind: lexer.LevelComment, Begin: "/*", End: "*/", BeginKind: lexer.KindCommentBegin, EndKind: lexer.KindCommentEnd}, "", "block_comment")
	c.AddLevel(lexer.LevelDef{Name: "string", Kind: lexer.LevelString, Begin: `"`, End: `"`, BeginKind: lexer.KindStringBegin, EndKind: lexer.KindStringEnd}, "")
	c.Operators = []string{",", "->", "#"}
	for esc, val := range map[string]rune{
		`\n`: '\n', `\t`: '\t', `\v`: '\v', `\r`: '\r',
		`\\`: '\\', `\'`: '\'', `\"`: '"', `\0`: 0,
	} {
		c.Escapes[esc] = val
	}
	c.AddRange(lexer.RangeIdentifier, 'a', 'z')
	c.AddRange(lexer.RangeIdentifier, 'A', 'Z')
	c.AddRange(lexer.RangeIdentifier, '_', '_')
	c.AddRange(lexer.RangeOptIdentifier, '0', '9')
	c.AddRange(lexer.RangeInteger, '0', '9')
	c.AddRange(lexer.RangeWS, ' ', ' ')
	c.AddRange(lexer.RangeWS, '\t', '\t')
	c.AddRange(lexer.RangeWS, '\n', '\n')
	c.AddRange(lexer.RangeWS, '\r', '\r')
	c.AddRange(lexer.RangeOp, '!', '/')
	c.AddRange(lexer.RangeOp, ':', '@')
	return c
}

// LoadFile runs the MCI parser over path and returns the resulting
// Config.
func LoadFile(path string, sink *diag.Sink) (*Config, error) {
	input, err := lexer.NewFileInput(path)
	if err != nil {
		return nil, fmt.Errorf("prelude: %w", err)
	}
	input.Configure(BootstrapConfig())

	c := NewConfig()
	r := newReader(input)
	for {
		r.skipTrivia()
		if r.atEOF() {
			break
		}
		if r.cur.Kind != lexer.KindIdentifier || r.cur.Content != "define_mci_rule" {
			return nil, fmt.Errorf("%s: token %q not allowed at top level of a prelude file", path, r.cur.Content)
		}
		r.advance()
		if r.cur.Kind != lexer.KindTermBegin {
			return nil, fmt.Errorf("%s: expected '(' after define_mci_rule, got %q", path, r.cur.Content)
		}
		r.advance()

		name, err := r.getIdentifier()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := r.consumeComma(); err != nil {
			return nil, fmt.Errorf("%s: MCI %s: %w", path, name, err)
		}
		if err := applyMCI(c, name, r); err != nil {
			if sink != nil {
				sink.Errorf(diag.ErrMalformedMCI, diag.Position{}, name, err.Error())
			}
			return nil, fmt.Errorf("%s: MCI %s: %w", path, name, err)
		}

		r.skipTrivia()
		if r.cur.Kind != lexer.KindTermEnd {
			return nil, fmt.Errorf("%s: MCI %s: expected ')', got %q", path, name, r.cur.Content)
		}
		r.advance()
		r.skipTrivia()
		if r.cur.Kind != lexer.KindStatDivider {
			return nil, fmt.Errorf("%s: MCI %s: expected ';', got %q", path, name, r.cur.Content)
		}
		r.advance()
	}

	c.Finalize()
	if c.ScopeAccessFellBack() && sink != nil {
		sink.Report(diag.Diagnostic{
			Code:     diag.ErrScopeAccessFallback,
			Severity: diag.SeverityWarning,
			Message:  diag.Templates[diag.ErrScopeAccessFallback].Short,
		})
	}
	return c, nil
}

// Load resolves a named prelude ("prelude", "push", "project") to a
// standard-library file path and loads it, or returns the empty
// prelude-prelude configuration itself for the bootstrap name "prelude".
func Load(name, stdlibDir string, sink *diag.Sink) (*Config, error) {
	switch name {
	case "prelude":
		c := NewConfig()
		c.Lexer = BootstrapConfig()
		c.Finalize()
		return c, nil
	case "push":
		return LoadFile(filepath.Join(stdlibDir, "prelude", "push.push"), sink)
	case "project":
		return LoadFile(filepath.Join(stdlibDir, "prelude", "project.push"), sink)
	default:
		return nil, fmt.Errorf("unknown prelude %q", name)
	}
}

// DoLoadFile exposes LoadFile as a memoised query.
func DoLoadFile(w *queryengine.Worker, path string, sink *diag.Sink) (*Config, error) {
	return queryengine.DoQuery(w, "load_prelude_file", func() (*Config, error) {
		logging.For(logging.CategoryPrelude).Debug("loading prelude file", zap.String("path", path))
		return LoadFile(path, sink)
	}, path)
}

// DoLoad exposes Load as a memoised query.
func DoLoad(w *queryengine.Worker, name, stdlibDir string, sink *diag.Sink) (*Config, error) {
	return queryengine.DoQuery(w, "load_prelude", func() (*Config, error) {
		logging.For(logging.CategoryPrelude).Debug("loading prelude", zap.String("name", name))
		return Load(name, stdlibDir, sink)
	}, name, stdlibDir)
}
