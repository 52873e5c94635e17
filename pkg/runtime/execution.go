// Package runtime materializes a canonical plan into a set of
// cooperating worker goroutines, starts them in lock-step, and
// coordinates their shutdown.
package runtime

import (
	"context"
	"sync"
	"sync/atomic"

	intErrors "github.com/drvkize0/pipegraph/internal/errors"
	"github.com/drvkize0/pipegraph/pkg/filter"
	"github.com/drvkize0/pipegraph/pkg/plan"
	"github.com/drvkize0/pipegraph/pkg/retry"
	"github.com/drvkize0/pipegraph/pkg/syncutil"
	"github.com/drvkize0/pipegraph/pkg/types"
	"github.com/drvkize0/pipegraph/pkg/worker"
)

// Execution is the runtime handle for a running pipeline: the thread
// pool and primitives it was started with, the queues its plan
// allocated through Parallel, and the first fatal cause observed by
// any worker, if any.
type Execution struct {
	pool types.WorkerPool

	start     *syncutil.Latch
	end       *syncutil.Latch
	threadEnd *syncutil.Barrier

	workerCount int32
	done        int32
	state       int32

	clock        types.Clock
	errorHandler types.ErrorHandler
	errorChain   *intErrors.HandlerRegistry

	causeMu sync.Mutex
	cause   error

	owned      []plan.QueueCloser
	cancelOnce sync.Once
}

// Start clones p, registers one worker per segment with pool, and
// releases every worker to begin once registration is complete.
// Registration finishes for every segment before the start latch
// counts down, so no worker can observe a partially-registered plan.
func Start(ctx context.Context, p plan.CanonicalPlan, pool types.WorkerPool, opts ...Option) (*Execution, error) {
	cfg := defaultExecConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cloned := clonePlan(p)
	segments := append(cloneSegmentChain(cloned.Chain), cloned.Trailing)

	ex := &Execution{
		pool:         pool,
		start:        syncutil.NewLatch(1),
		end:          syncutil.NewLatch(1),
		clock:        cfg.clock,
		errorHandler: cfg.errorHandler,
		errorChain:   cfg.errorChain,
		owned:        cloned.Owned,
		state:        int32(types.StateCreated),
	}

	ex.threadEnd = syncutil.NewBarrier(len(segments), ex.onAllWorkersFinished)

	for _, seg := range segments {
		if err := ex.registerWorker(ctx, seg, cfg.retryPolicy); err != nil {
			return nil, err
		}
	}

	atomic.StoreInt32(&ex.state, int32(types.StateRunning))
	ex.start.CountDown()

	return ex, nil
}

// State reports the execution's current lifecycle state: Created
// while workers are still being registered, Running once every
// worker has been released, and Closed once the last worker has
// reached the thread-end barrier. Reuses the shared PipelineState
// enum, narrowed to the three transitions an Execution actually goes
// through (it never returns to Created and has no separate Stopped
// state — Cancel is a request to wind down, not a state of its own).
func (ex *Execution) State() types.PipelineState {
	return types.PipelineState(atomic.LoadInt32(&ex.state))
}

func clonePlan(p plan.CanonicalPlan) plan.CanonicalPlan {
	return plan.CanonicalPlan{
		Leading:  p.Leading.Clone(),
		Chain:    cloneSegmentChain(p.Chain),
		Trailing: p.Trailing.Clone(),
		Owned:    p.Owned,
	}
}

func cloneSegmentChain(chain []filter.Filter[filter.Unit, filter.Unit]) []filter.Filter[filter.Unit, filter.Unit] {
	if chain == nil {
		return nil
	}
	out := make([]filter.Filter[filter.Unit, filter.Unit], len(chain))
	for i, f := range chain {
		out[i] = f.Clone()
	}
	return out
}

// registerWorker increments the worker count and submits the segment
// to the pool, retrying with the configured backoff policy when the
// pool reports it is transiently full. This is the one place the
// runtime retries anything; a failure inside the segment itself is
// never retried.
func (ex *Execution) registerWorker(ctx context.Context, seg filter.Filter[filter.Unit, filter.Unit], policy retry.RetryPolicy) error {
	atomic.AddInt32(&ex.workerCount, 1)

	task := ex.newSegmentTask(seg)
	priority := 0
	hasPriority := false
	if p, ok := any(seg).(plan.Prioritized); ok {
		priority = p.SegmentPriority()
		hasPriority = true
	}

	attempt := 0
	for {
		var err error
		if pp, ok := ex.pool.(types.PriorityWorkerPool); ok && hasPriority {
			err = pp.SubmitWithPriority(task, priority)
		} else {
			err = ex.pool.Submit(task)
		}
		if err == nil {
			return nil
		}
		if err != types.ErrWorkerPoolFull {
			return err
		}

		attempt++
		if !policy.ShouldRetry(err, attempt) {
			return err
		}

		select {
		case <-ex.clock.After(policy.NextDelay(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (ex *Execution) newSegmentTask(seg filter.Filter[filter.Unit, filter.Unit]) types.Task {
	return worker.NewBasicTask(func(context.Context) error {
		ex.runSegment(seg)
		return nil
	})
}

func (ex *Execution) onAllWorkersFinished() {
	atomic.StoreInt32(&ex.done, 1)
	atomic.StoreInt32(&ex.state, int32(types.StateClosed))
	ex.end.CountDown()
}

func (ex *Execution) recordFailure(err error) {
	if err == nil {
		return
	}

	errCtx := intErrors.NewErrorContext(err, "runtime.runSegment", nil)
	final := errCtx.Error

	if ex.errorChain != nil {
		handler := ex.errorChain.GetHandlerForError(err)
		handled := handler.HandleError(context.Background(), errCtx)
		errCtx.AddToChain(handled, handler.Name(), 0)
		// A handler may translate the cause but can never erase it: a
		// fatal worker failure always reaches Wait as an error, so a
		// nil chain result (e.g. ContinueOnErrorHandler) is discarded
		// rather than adopted.
		if chained := errCtx.GetLastError(); chained != nil {
			final = chained
		}
	}

	if final != nil && ex.errorHandler != nil {
		if handled := ex.errorHandler(final); handled != nil {
			final = handled
		}
	}

	ex.causeMu.Lock()
	defer ex.causeMu.Unlock()
	if ex.cause == nil {
		ex.cause = final
	}
}

// Wait blocks until every worker has closed and reached the
// thread-end barrier, then returns the first fatal cause recorded by
// any of them, or nil on clean shutdown.
func (ex *Execution) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		ex.end.Wait()
		close(done)
	}()

	select {
	case <-done:
		ex.causeMu.Lock()
		defer ex.causeMu.Unlock()
		return ex.cause
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsDone is a non-blocking check of the execution's done flag.
func (ex *Execution) IsDone() bool {
	return atomic.LoadInt32(&ex.done) == 1
}

// Cancel closes every queue this execution itself allocated via
// Parallel. This is drain-then-exit, not drop-and-exit: it does not
// discard items already buffered in those queues, it only stops
// accepting new ones, and the existing termination wave (worker i
// closes queue i+1, worker i+1 observes closed-and-drained, and so
// on) winds the pipeline down as an ordinary upstream close would.
// A segment that still pushes into a queue after Cancel closed it
// fails with queue.ErrClosed, which is recorded as the execution's
// fatal cause. Cancel is idempotent and does not block; call Wait to
// observe completion.
func (ex *Execution) Cancel() {
	ex.cancelOnce.Do(func() {
		for _, q := range ex.owned {
			q.Close()
		}
	})
}

// WorkerCount returns the number of workers registered with this
// execution.
func (ex *Execution) WorkerCount() int {
	return int(atomic.LoadInt32(&ex.workerCount))
}
