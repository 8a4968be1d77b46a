package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pushc/internal/ast"
	"pushc/internal/diag"
	"pushc/internal/queryengine"
)

func newEngine(t *testing.T) (*queryengine.GlobalContext, *queryengine.Worker, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink(diag.DefaultCaps())
	gc, main, err := queryengine.Setup(1, 8, sink)
	require.NoError(t, err)
	t.Cleanup(gc.WaitFinished)
	return gc, main, sink
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.push")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetASTCompilesFileEndToEnd(t *testing.T) {
	gc, w, sink := newEngine(t)
	path := writeSource(t, "let val = 5 * 3 + 2;\n")
	w.SetUnitCtx(NewUnit(gc, path))

	crate, err := GetAST(w, path, Options{StdlibDir: "../../stdlib"}, sink)
	require.NoError(t, err)
	require.False(t, sink.HasErrors())
	require.NotNil(t, crate.Root)
	require.Equal(t, ast.KindDeclScope, crate.Root.Kind)
	require.Len(t, crate.Root.Children, 1)
	require.NotNil(t, crate.Prelude)
	require.Equal(t, "Integer", crate.Prelude.BaseTypes["INTEGER"])
}

func TestGetASTIsMemoisedWithinOnePass(t *testing.T) {
	gc, w, sink := newEngine(t)
	path := writeSource(t, "a + b;\n")
	w.SetUnitCtx(NewUnit(gc, path))

	first, err := GetAST(w, path, Options{StdlibDir: "../../stdlib"}, sink)
	require.NoError(t, err)
	second, err := GetAST(w, path, Options{StdlibDir: "../../stdlib"}, sink)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestGetASTMissingFileRecordsFatal(t *testing.T) {
	gc, w, sink := newEngine(t)
	w.SetUnitCtx(NewUnit(gc, "does/not/exist.push"))

	_, err := GetAST(w, "does/not/exist.push", Options{StdlibDir: "../../stdlib"}, sink)
	require.Error(t, err)
	require.True(t, sink.HasErrors())

	found := false
	for _, d := range sink.All() {
		if d.Code == diag.FatalFileNotFound {
			found = true
		}
	}
	require.True(t, found)
}

func TestReadFileRegistersKnownFile(t *testing.T) {
	gc, w, sink := newEngine(t)
	path := writeSource(t, "a;\n")
	unit := NewUnit(gc, path)
	w.SetUnitCtx(unit)

	other := filepath.Join(filepath.Dir(path), "other.push")
	require.NoError(t, os.WriteFile(other, []byte("b;"), 0o644))

	_, err := ReadFile(w, other, sink)
	require.NoError(t, err)
	require.Equal(t, []string{path, other}, unit.KnownFiles())

	files, err := KnownFiles(w)
	require.NoError(t, err)
	require.Contains(t, files, other)
}

func TestNewUnitAssignsDistinctIDs(t *testing.T) {
	gc, w, _ := newEngine(t)
	u1 := NewUnit(gc, "a.push")
	u2 := NewUnit(gc, "b.push")
	require.NotEqual(t, u1.ID, u2.ID)
	w.SetUnitCtx(u2)
	require.Same(t, u2, w.UnitCtx())
}
