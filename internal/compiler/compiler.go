// Package compiler ties the engine, prelude loader, lexer, and parser
// together into the top-level query family: a "compile file F" request
// becomes a get_ast query whose sub-queries (read_file, load_prelude)
// are memoised independently, so an incremental pass only re-runs the
// pieces whose inputs changed.
package compiler

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pushc/internal/ast"
	"pushc/internal/diag"
	"pushc/internal/logging"
	"pushc/internal/parser"
	"pushc/internal/prelude"
	"pushc/internal/queryengine"
)

// Crate is the shared per-unit context a get_ast query returns: the
// parsed AST plus the prelude configuration it was parsed under.
type Crate struct {
	Root    *ast.Node
	Prelude *prelude.Config
	Unit    *queryengine.UnitContext
}

// NewUnit creates a unit context for rootFile with a freshly minted
// stable id. The id is part of every query signature issued under the
// unit, so callers that want memoisation across incremental passes must
// keep the unit alive and re-install it with Worker.SetUnitCtx rather
// than minting a new one per pass.
func NewUnit(gc *queryengine.GlobalContext, rootFile string) *queryengine.UnitContext {
	u := &queryengine.UnitContext{
		ID:       uuid.NewString(),
		RootFile: rootFile,
		Global:   gc,
	}
	u.AddKnownFile(rootFile)
	return u
}

// ReadFile is the memoised "read file content" query sitting below
// get_ast. A missing file records the fatal diagnostic and propagates
// the error so the enclosing job unwinds. Volatile: the file can change
// on disk between passes, so it is re-read on every incremental pass.
func ReadFile(w *queryengine.Worker, path string, sink *diag.Sink) (string, error) {
	return queryengine.DoQuery(w, "read_file", func() (string, error) {
		w.SetCurrJobVolatile()
		data, err := os.ReadFile(path)
		if err != nil {
			if sink != nil {
				sink.Report(diag.Diagnostic{
					Code:     diag.FatalFileNotFound,
					Severity: diag.SeverityFatal,
					Message:  diag.Formatf(diag.FatalFileNotFound, path),
				})
			}
			return "", err
		}
		if u := w.UnitCtx(); u != nil {
			u.AddKnownFile(path)
		}
		return string(data), nil
	}, path)
}

// KnownFiles is the memoised "list known files" query over the current
// unit. Volatile by construction: files can be registered at any point
// during a pass, so the cached list must never survive into the next
// incremental pass.
func KnownFiles(w *queryengine.Worker) ([]string, error) {
	return queryengine.DoQuery(w, "known_files", func() ([]string, error) {
		w.SetCurrJobVolatile()
		u := w.UnitCtx()
		if u == nil {
			return nil, nil
		}
		return u.KnownFiles(), nil
	})
}

// Options configures one GetAST invocation.
type Options struct {
	// PreludeFile, when non-empty, overrides the named prelude with an
	// explicit file (the CLI's --prelude flag).
	PreludeFile string
	// PreludeName is a named prelude resolved against StdlibDir;
	// defaults to "push".
	PreludeName string
	StdlibDir   string
	// TabWidth overrides the lexer's column accounting for tabs when
	// positive (the tab_width preference).
	TabWidth int
}

// GetAST is the top-level query: obtain source input for path, load the
// prelude via a sub-query, and run the scope parser over the configured
// token stream. The returned Crate's artefacts
// are owned by the query result and treated as immutable once the cache
// entry goes green.
func GetAST(w *queryengine.Worker, path string, opts Options, sink *diag.Sink) (*Crate, error) {
	return queryengine.DoQuery(w, "get_ast", func() (*Crate, error) {
		log := logging.For(logging.CategoryParser)
		log.Debug("get_ast", zap.String("path", path))

		content, err := ReadFile(w, path, sink)
		if err != nil {
			return nil, err
		}

		cfg, err := loadConfiguredPrelude(w, opts, sink)
		if err != nil {
			if sink != nil {
				name := opts.PreludeFile
				if name == "" {
					name = opts.PreludeName
				}
				sink.Report(diag.Diagnostic{
					Code:     diag.FatalPreludeLoadFailed,
					Severity: diag.SeverityFatal,
					Message:  diag.Formatf(diag.FatalPreludeLoadFailed, name, err.Error()),
				})
			}
			return nil, err
		}

		if opts.TabWidth > 0 {
			cfg.Lexer.TabWidth = opts.TabWidth
		}

		unit := w.UnitCtx()
		if unit == nil {
			unit = NewUnit(w.Global(), path)
			w.SetUnitCtx(unit)
		}
		unit.Prelude = cfg

		root, err := parser.DoParseAST(w, path, content, cfg, sink)
		if err != nil {
			return nil, err
		}
		return &Crate{Root: root, Prelude: cfg, Unit: unit}, nil
	}, path, opts.PreludeFile, opts.PreludeName, opts.StdlibDir, opts.TabWidth)
}

func loadConfiguredPrelude(w *queryengine.Worker, opts Options, sink *diag.Sink) (*prelude.Config, error) {
	if opts.PreludeFile != "" {
		return prelude.DoLoadFile(w, opts.PreludeFile, sink)
	}
	name := opts.PreludeName
	if name == "" {
		name = "push"
	}
	return prelude.DoLoad(w, name, opts.StdlibDir, sink)
}
