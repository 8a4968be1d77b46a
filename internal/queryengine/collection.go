package queryengine

// JobCollection is the ordered list of jobs belonging to one query.
// Every concrete query in this compiler (read_file, load_prelude,
// parse_ast, get_ast) is computed by a single job, so the general
// N-job, work-stealing machinery specializes here to a length-1 list;
// GetFreeJob and the
// open-job stack remain fully implemented in GlobalContext for the
// cross-worker stealing path, they are simply never populated by this
// compiler's own queries (see DESIGN.md).
type JobCollection[T any] struct {
	sig    Signature
	gc     *GlobalContext
	job    *BasicJob
	future *Future[T]
}

func newJobCollection[T any](gc *GlobalContext, sig Signature, unit *UnitContext, fn func() (T, error)) *JobCollection[T] {
	future := NewFuture[T]()
	job := newBasicJob(sig, unit, func() error {
		val, err := fn()
		future.Set(val, err)
		if err == nil {
			gc.FinishJob(sig, val)
		}
		return err
	})
	return &JobCollection[T]{sig: sig, gc: gc, job: job, future: future}
}

// finishedCollection wraps an already-cached artefact as a collection
// that reports finished immediately, for the fast path where the query
// cache already holds a fresh value.
func finishedCollection[T any](gc *GlobalContext, sig Signature, artifacts any) *JobCollection[T] {
	future := NewFuture[T]()
	val, _ := artifacts.(T)
	future.Set(val, nil)
	job := newBasicJob(sig, nil, func() error { return nil })
	job.status = int32(StatusFin)
	return &JobCollection[T]{sig: sig, gc: gc, job: job, future: future}
}

// Finished reports whether the collection's job has run.
func (jc *JobCollection[T]) Finished() bool {
	return jc.job.Status() == StatusFin
}

// Execute runs the collection's reserved job on the calling worker. If
// preventIdle is true and the job is somehow not yet finished after that
// (impossible for this compiler's single-job collections, but part of
// the general contract), the calling worker steals
// from the global open-job stack rather than sit idle.
func (jc *JobCollection[T]) Execute(w *Worker, preventIdle bool) error {
	if jc.gc.Aborted() {
		return ErrAbortCompilation
	}
	if jc.job.tryClaim() {
		w.runClaimedJob(jc.job)
	}

	if !preventIdle {
		return nil
	}
	for !jc.Finished() {
		if jc.gc.Aborted() {
			return ErrAbortCompilation
		}
		free := jc.gc.GetFreeJob()
		if free == nil {
			break
		}
		w.runClaimedJob(free)
	}
	return nil
}

// Wait blocks until the collection's job has finished (running it
// first via Execute if this worker is the one that must drive it is
// the caller's responsibility — Wait alone only blocks), honouring
// abort.
func (jc *JobCollection[T]) Wait() (T, error) {
	if err := jc.gc.waitUntil(jc.Finished); err != nil {
		var zero T
		return zero, err
	}
	return jc.future.Wait()
}
