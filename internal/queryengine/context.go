package queryengine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"pushc/internal/config"
	"pushc/internal/diag"
	"pushc/internal/logging"
)

// GlobalContext owns the worker pool, the open-job stack, the query
// cache, preferences, and the error/warning/notice counters. It is the one object every worker and unit context
// holds a reference to.
type GlobalContext struct {
	workers []*Worker

	jobsMu    sync.Mutex
	jobsCond  *sync.Cond
	openStack []*BasicJob

	cache *QueryCache
	Sink  *diag.Sink
	Prefs *config.Preferences

	abort atomic.Bool
}

// Setup constructs threadCount workers (the first is the caller's main
// worker, with no owned goroutine), reserves the cache, and returns the
// context plus that main worker. Fails if threadCount is zero.
func Setup(threadCount, cacheReserve int, sink *diag.Sink) (*GlobalContext, *Worker, error) {
	if threadCount == 0 {
		d := diag.Diagnostic{Code: diag.FatalThreadCountZero, Severity: diag.SeverityFatal, Message: diag.Templates[diag.FatalThreadCountZero].Short}
		if sink != nil {
			sink.Report(d)
		}
		return nil, nil, fmt.Errorf("%s", d.String())
	}

	gc := &GlobalContext{
		cache: newQueryCache(cacheReserve),
		Sink:  sink,
		Prefs: config.NewPreferences(),
	}
	gc.jobsCond = sync.NewCond(&gc.jobsMu)

	main := newWorker(0, gc, false)
	gc.workers = append(gc.workers, main)
	for i := 1; i < threadCount; i++ {
		w := newWorker(i, gc, true)
		gc.workers = append(gc.workers, w)
		go w.loop()
	}

	logging.For(logging.CategoryScheduler).Info("engine set up", zap.Int("threads", threadCount))
	return gc, main, nil
}

// Workers returns the engine's worker pool; the first entry is the
// main worker.
func (gc *GlobalContext) Workers() []*Worker { return gc.workers }

// pushJob pushes a job onto the open-job stack and wakes every waiter.
func (gc *GlobalContext) pushJob(j *BasicJob) {
	gc.jobsMu.Lock()
	gc.openStack = append(gc.openStack, j)
	gc.jobsMu.Unlock()
	gc.jobsCond.Broadcast()
}

// GetFreeJob pops from the top of the open-job stack until a job with
// status FREE is found, atomically claiming it (FREE->EXE) before
// returning. Jobs found already EXE or FIN are stale stack residue left
// by a racing steal and are skipped. Returns nil once the stack empties.
func (gc *GlobalContext) GetFreeJob() *BasicJob {
	gc.jobsMu.Lock()
	defer gc.jobsMu.Unlock()
	for len(gc.openStack) > 0 {
		n := len(gc.openStack) - 1
		j := gc.openStack[n]
		gc.openStack = gc.openStack[:n]
		if j.tryClaim() {
			gc.jobsCond.Broadcast()
			return j
		}
		logging.For(logging.CategoryScheduler).Warn("skipping stale job on open stack",
			zap.Uint64("job_id", j.ID))
	}
	return nil
}

// waitForWork blocks until either the open stack is non-empty or abort
// is set, returning ErrAbortCompilation in the latter case.
func (gc *GlobalContext) waitForWork() error {
	gc.jobsMu.Lock()
	defer gc.jobsMu.Unlock()
	for len(gc.openStack) == 0 && !gc.abort.Load() {
		gc.jobsCond.Wait()
	}
	if gc.abort.Load() {
		return ErrAbortCompilation
	}
	return nil
}

// waitUntil blocks, releasing no mutex of the caller's, until pred
// returns true or abort is set.
func (gc *GlobalContext) waitUntil(pred func() bool) error {
	gc.jobsMu.Lock()
	defer gc.jobsMu.Unlock()
	for !pred() && !gc.abort.Load() {
		gc.jobsCond.Wait()
	}
	if gc.abort.Load() && !pred() {
		return ErrAbortCompilation
	}
	return nil
}

// notifyProgress wakes every waiter on the jobs condition variable;
// called whenever a job transitions to FIN so collections blocked in
// waitUntil re-check their predicate.
func (gc *GlobalContext) notifyProgress() {
	gc.jobsMu.Lock()
	gc.jobsCond.Broadcast()
	gc.jobsMu.Unlock()
}

// AbortCompilation drops one pending job (symmetry with a caller that
// is itself holding a job it will never finish) and sets the abort
// flag, waking every worker and waiter.
func (gc *GlobalContext) AbortCompilation() {
	gc.jobsMu.Lock()
	if n := len(gc.openStack); n > 0 {
		gc.openStack = gc.openStack[:n-1]
	}
	gc.abort.Store(true)
	gc.jobsCond.Broadcast()
	gc.jobsMu.Unlock()
	logging.For(logging.CategoryScheduler).Warn("compilation aborted")
}

// Aborted reports whether the abort flag is set.
func (gc *GlobalContext) Aborted() bool { return gc.abort.Load() }

// FinishJob sets the GREEN bit for sig's cache entry.
func (gc *GlobalContext) FinishJob(sig Signature, artifacts any) {
	gc.cache.finishJob(sig, artifacts)
}

// SetVolatileJob sets the VOLATILE bit for sig's cache entry.
func (gc *GlobalContext) SetVolatileJob(sig Signature) {
	gc.cache.setVolatile(sig)
}

// Reset prepares a new incremental pass: GREEN->UNDECIDED, volatile
// entries -> VOLATILE_RED, abort flag cleared.
func (gc *GlobalContext) Reset() {
	gc.cache.reset()
	gc.abort.Store(false)
	logging.For(logging.CategoryScheduler).Info("engine reset for new incremental pass")
}

// WaitFinished stops every worker goroutine and joins them.
func (gc *GlobalContext) WaitFinished() {
	gc.jobsMu.Lock()
	gc.abort.Store(true)
	gc.jobsCond.Broadcast()
	gc.jobsMu.Unlock()
	for _, w := range gc.workers {
		if w.hasThread {
			<-w.stopped
		}
	}
}
