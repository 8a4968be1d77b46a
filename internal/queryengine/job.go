package queryengine

import "sync/atomic"

// jobSeq hands out unique BasicJob ids.
var jobSeq uint64

// BasicJob is one unit of schedulable work: a signature (so its
// completion can update the right cache entry), the unit it runs
// under, and a one-shot task. status is atomic so the FREE->EXE
// compare-and-swap that every worker performs before running a job
// guarantees at most one worker ever executes it.
type BasicJob struct {
	ID     uint64
	Sig    Signature
	Unit   *UnitContext
	status int32 // JobStatus, accessed via atomic

	task func() error // closes over the Future it must Set
}

func newBasicJob(sig Signature, unit *UnitContext, task func() error) *BasicJob {
	return &BasicJob{
		ID:     atomic.AddUint64(&jobSeq, 1),
		Sig:    sig,
		Unit:   unit,
		status: int32(StatusFree),
		task:   task,
	}
}

// Status loads the job's current status.
func (j *BasicJob) Status() JobStatus {
	return JobStatus(atomic.LoadInt32(&j.status))
}

// tryClaim attempts the FREE->EXE transition, returning true iff this
// call won it.
func (j *BasicJob) tryClaim() bool {
	return atomic.CompareAndSwapInt32(&j.status, int32(StatusFree), int32(StatusExe))
}

// run executes the job's task and marks it FIN regardless of outcome —
// a job that errors is still "finished" from the scheduler's point of
// view; the error is surfaced through the query's Future.
func (j *BasicJob) run() error {
	err := j.task()
	atomic.StoreInt32(&j.status, int32(StatusFin))
	return err
}
