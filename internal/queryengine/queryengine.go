// Package queryengine implements the work-stealing job scheduler and
// memoised, colour-tracked query cache that drives incremental
// compilation. A fixed pool of workers pulls jobs from a shared
// LIFO stack; each job's result is memoised against a QueryCacheHead
// keyed by query name, unit, and argument hash, so a second call to the
// same query in the same incremental pass reuses the first call's
// artefacts instead of recomputing them.
package queryengine

import "errors"

// ErrAbortCompilation is returned (never panicked — there is no
// exception-unwinding idiom in Go) up a worker's call stack once the
// global abort flag has been observed. Every worker loop and every
// JobCollection.Wait/Execute call checks for it after any blocking step.
var ErrAbortCompilation = errors.New("queryengine: compilation aborted")

// JobStatus is the atomic lifecycle state of a BasicJob.
type JobStatus int32

const (
	StatusFree JobStatus = iota
	StatusExe
	StatusFin
)

func (s JobStatus) String() string {
	switch s {
	case StatusFree:
		return "free"
	case StatusExe:
		return "exe"
	case StatusFin:
		return "fin"
	default:
		return "invalid"
	}
}
