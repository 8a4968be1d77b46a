// Package watch drives the incremental-recompute path interactively:
// file-system events on the compiled sources trigger an engine Reset
// followed by a fresh top-level query, exercising the red/green cache
// without any on-disk persistence.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"pushc/internal/logging"
)

// Watcher wraps an fsnotify watcher over a fixed file set with a short
// debounce, since editors typically emit a burst of events per save.
type Watcher struct {
	fw       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	done     chan struct{}
}

// New registers the parent directories of every given file (fsnotify
// watches directories more reliably than files across editors that
// replace-on-save) and filters events back down to the file set.
func New(files []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		files:    make(map[string]bool, len(files)),
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run blocks, invoking onChange with the changed path after each
// debounced burst of relevant events, until Close is called.
func (w *Watcher) Run(onChange func(path string)) {
	log := logging.For(logging.CategoryCLI)
	var timer *time.Timer
	var pending string
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-w.done:
			return
		case <-fire:
			log.Debug("source changed", zap.String("path", pending))
			onChange(pending)
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			pending = abs
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops Run and releases the underlying watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
