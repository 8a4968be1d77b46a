package queryengine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pushc/internal/diag"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestEngine(t *testing.T, threads int) (*GlobalContext, *Worker) {
	t.Helper()
	gc, main, err := Setup(threads, 8, diag.NewSink(diag.DefaultCaps()))
	require.NoError(t, err)
	t.Cleanup(gc.WaitFinished)
	return gc, main
}

func TestSetupRejectsZeroThreads(t *testing.T) {
	_, _, err := Setup(0, 8, diag.NewSink(diag.DefaultCaps()))
	require.Error(t, err)
}

func TestDoQueryRunsFunctionOnce(t *testing.T) {
	_, main := newTestEngine(t, 1)
	var calls int32

	compute := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}

	v1, err := DoQuery(main, "double", compute, "x")
	require.NoError(t, err)
	require.Equal(t, 42, v1)

	v2, err := DoQuery(main, "double", compute, "x")
	require.NoError(t, err)
	require.Equal(t, 42, v2)

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoQueryDistinctArgsDoNotShareCache(t *testing.T) {
	_, main := newTestEngine(t, 1)
	var calls int32
	compute := func(n int) func() (int, error) {
		return func() (int, error) {
			atomic.AddInt32(&calls, 1)
			return n * n, nil
		}
	}

	v1, err := DoQuery(main, "square", compute(3), 3)
	require.NoError(t, err)
	require.Equal(t, 9, v1)

	v2, err := DoQuery(main, "square", compute(4), 4)
	require.NoError(t, err)
	require.Equal(t, 16, v2)

	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResetKeepsCleanQueryMemoised(t *testing.T) {
	gc, main := newTestEngine(t, 1)
	var calls int32
	compute := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return int(atomic.LoadInt32(&calls)), nil
	}

	v1, err := DoQuery(main, "counter", compute)
	require.NoError(t, err)
	require.Equal(t, 1, v1)

	// Without a reset, the cache entry is still GREEN: re-running the
	// same query returns the memoised value, not a fresh computation.
	v2, err := DoQuery(main, "counter", compute)
	require.NoError(t, err)
	require.Equal(t, 1, v2)

	gc.Reset()

	// After a reset the entry is UNDECIDED; with no RED or volatile
	// sub-entry below it, the freshness walk re-validates it and the
	// memoised value survives the pass.
	v3, err := DoQuery(main, "counter", compute)
	require.NoError(t, err)
	require.Equal(t, 1, v3)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResetReRunsParentOfVolatileSubQuery(t *testing.T) {
	gc, main := newTestEngine(t, 1)
	var parentCalls, childCalls int32

	parent := func() (int, error) {
		atomic.AddInt32(&parentCalls, 1)
		v, err := DoQuery(main, "child", func() (int, error) {
			main.SetCurrJobVolatile()
			atomic.AddInt32(&childCalls, 1)
			return 7, nil
		})
		return v, err
	}

	v, err := DoQuery(main, "parent", parent)
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, int32(1), atomic.LoadInt32(&parentCalls))

	gc.Reset()

	// The child is volatile, so after the reset it is VOLATILE_RED; the
	// parent's UNDECIDED entry sees a stale sub-entry and re-runs too.
	v, err = DoQuery(main, "parent", parent)
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, int32(2), atomic.LoadInt32(&parentCalls))
	require.Equal(t, int32(2), atomic.LoadInt32(&childCalls))
}

func TestAbortCompilationPropagates(t *testing.T) {
	gc, main := newTestEngine(t, 1)
	gc.AbortCompilation()

	_, err := DoQuery(main, "never-runs", func() (int, error) { return 1, nil })
	require.ErrorIs(t, err, ErrAbortCompilation)
}

func TestVolatileJobSurvivesResetAsRed(t *testing.T) {
	gc, main := newTestEngine(t, 1)
	var calls int32
	compute := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	}

	_, err := DoQuery(main, "vol", compute)
	require.NoError(t, err)

	sig := NewSignature("vol", "")
	gc.SetVolatileJob(sig)
	gc.Reset()

	require.False(t, gc.cache.fresh(sig))

	_, err = DoQuery(main, "vol", compute)
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMultiWorkerConcurrentDistinctQueries(t *testing.T) {
	_, main := newTestEngine(t, 4)
	results := make(chan int, 8)

	for i := 0; i < 8; i++ {
		i := i
		go func() {
			v, err := DoQuery(main, "slow", func() (int, error) {
				time.Sleep(time.Millisecond)
				return i, nil
			}, i)
			require.NoError(t, err)
			results <- v
		}()
	}

	seen := make(map[int]bool)
	for i := 0; i < 8; i++ {
		seen[<-results] = true
	}
	require.Len(t, seen, 8)
}

func TestGetFreeJobSkipsStaleStackResidue(t *testing.T) {
	gc, _ := newTestEngine(t, 1)

	stale := newBasicJob(NewSignature("stale", ""), nil, func() error { return nil })
	stale.status = int32(StatusFin) // already finished: stale stack residue

	fresh := newBasicJob(NewSignature("fresh", ""), nil, func() error { return nil })

	gc.pushJob(stale)
	gc.pushJob(fresh)

	got := gc.GetFreeJob()
	require.Same(t, fresh, got)
	require.Equal(t, StatusExe, got.Status())

	// the stale job was popped and discarded, not returned
	require.Nil(t, gc.GetFreeJob())
}

func TestAbortCompilationDropsOnePendingJob(t *testing.T) {
	gc, _ := newTestEngine(t, 1)

	j1 := newBasicJob(NewSignature("j1", ""), nil, func() error { return nil })
	j2 := newBasicJob(NewSignature("j2", ""), nil, func() error { return nil })
	gc.pushJob(j1)
	gc.pushJob(j2)

	gc.AbortCompilation()
	require.True(t, gc.Aborted())
	require.Len(t, gc.openStack, 1)
}

func TestFutureSetIsOneShot(t *testing.T) {
	f := NewFuture[int]()
	f.Set(1, nil)
	f.Set(2, nil)
	v, err := f.Wait()
	require.NoError(t, err)
	require.Equal(t, 1, v)
}
