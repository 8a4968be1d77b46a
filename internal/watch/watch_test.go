package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWriteToTrackedFile(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "main.push")
	other := filepath.Join(dir, "other.push")
	require.NoError(t, os.WriteFile(tracked, []byte("a;"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("b;"), 0o644))

	w, err := New([]string{tracked})
	require.NoError(t, err)
	defer w.Close()

	changed := make(chan string, 1)
	go w.Run(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})

	// An untracked sibling must not fire.
	require.NoError(t, os.WriteFile(other, []byte("b; c;"), 0o644))
	// The tracked file must.
	require.NoError(t, os.WriteFile(tracked, []byte("a; b;"), 0o644))

	select {
	case path := <-changed:
		abs, _ := filepath.Abs(tracked)
		require.Equal(t, abs, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event for tracked file")
	}
}
