package queryengine

import (
	"sync/atomic"

	"go.uber.org/zap"

	"pushc/internal/logging"
)

// Worker owns an id, its unit context, and (for every worker but the
// main one) a background goroutine pulling free jobs from the engine.
// The main worker has no owned goroutine: it only runs jobs
// synchronously via JobCollection.Execute on the calling thread, so
// worker 0 always stays reserved for the caller.
type Worker struct {
	ID        int
	gc        *GlobalContext
	unitCtx   *UnitContext
	hasThread bool
	stopped   chan struct{}

	curJob atomic.Pointer[BasicJob]
}

func newWorker(id int, gc *GlobalContext, hasThread bool) *Worker {
	return &Worker{ID: id, gc: gc, hasThread: hasThread, stopped: make(chan struct{})}
}

// Global returns the engine context this worker belongs to.
func (w *Worker) Global() *GlobalContext { return w.gc }

// UnitCtx returns the worker's current unit context.
func (w *Worker) UnitCtx() *UnitContext { return w.unitCtx }

// SetUnitCtx switches the worker's unit context; sub-queries spawned
// afterwards inherit it.
func (w *Worker) SetUnitCtx(u *UnitContext) { w.unitCtx = u }

// SetCurrJobVolatile marks the cache entry for the job this worker is
// currently running as volatile.
func (w *Worker) SetCurrJobVolatile() {
	if j := w.curJob.Load(); j != nil {
		w.gc.SetVolatileJob(j.Sig)
	}
}

// loop is a background worker's run loop: pull a free job, run it,
// repeat; when the stack is empty, block on the jobs condition variable
// until either a new job arrives or the engine is tearing down.
func (w *Worker) loop() {
	defer close(w.stopped)
	log := logging.For(logging.CategoryScheduler)
	log.Debug("worker started", zap.Int("worker_id", w.ID))

	for {
		job := w.gc.GetFreeJob()
		if job == nil {
			if err := w.gc.waitForWork(); err != nil {
				log.Debug("worker stopping", zap.Int("worker_id", w.ID))
				return
			}
			continue
		}
		w.runClaimedJob(job)
	}
}

// runClaimedJob executes a job this worker has already won the FREE->EXE
// race for, recording it as the worker's current job for
// SetCurrJobVolatile and sub-DAG linking. The previous job is restored
// afterwards: a job that blocks on a sub-query runs the sub-query's job
// nested on the same worker.
func (w *Worker) runClaimedJob(job *BasicJob) {
	prev := w.curJob.Load()
	w.curJob.Store(job)
	defer w.curJob.Store(prev)

	if err := job.run(); err != nil && err != ErrAbortCompilation {
		logging.For(logging.CategoryScheduler).Warn("job failed",
			zap.Uint64("job_id", job.ID), zap.Error(err))
	}
	w.gc.notifyProgress()
}

// Query looks up (or builds) the JobCollection for fn under sig,
// reusing a fresh cached result when one exists.
func Query[T any](w *Worker, name string, fn func() (T, error), args ...any) *JobCollection[T] {
	unit := w.unitCtx
	unitID := ""
	if unit != nil {
		unitID = unit.ID
	}
	sig := NewSignature(name, unitID, args...)

	// If this query is being issued from inside another query's job,
	// link it into the caller's sub-DAG so freshness checking can walk
	// parent -> sub after a Reset.
	var parent *Signature
	if j := w.curJob.Load(); j != nil {
		p := j.Sig
		parent = &p
	}

	if head := w.gc.cache.lookup(sig); head != nil && w.gc.cache.fresh(sig) {
		w.gc.cache.linkSub(parent, sig)
		return finishedCollection[T](w.gc, sig, head.Artifacts)
	}

	w.gc.cache.insertRed(sig, parent)
	// The query's single job is the "first job", reserved for the
	// caller: nothing is pushed onto the open stack for a single-job
	// query; JobCollection.Execute runs it directly.
	return newJobCollection(w.gc, sig, unit, fn)
}

// DoQuery queries, executes (blocking until the result is ready, and
// preventing the calling worker from idling while it waits), and
// returns the query's result in one call.
func DoQuery[T any](w *Worker, name string, fn func() (T, error), args ...any) (T, error) {
	jc := Query(w, name, fn, args...)
	if err := jc.Execute(w, true); err != nil {
		var zero T
		return zero, err
	}
	return jc.Wait()
}
