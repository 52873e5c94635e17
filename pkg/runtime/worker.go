package runtime

import (
	"fmt"
	"runtime"

	"github.com/drvkize0/pipegraph/pkg/filter"
	"github.com/drvkize0/pipegraph/pkg/types"
)

// runSegment is the body every worker goroutine runs: wait for every
// sibling worker to finish registering, drive the segment to
// exhaustion one item at a time, close it, and rendezvous with the
// other workers before returning. It never retries a mid-stream
// failure — a transform panicking is a fatal condition, recorded as
// this execution's cause and surfaced to Wait's caller, matching
// Worker.executeTask's panic-to-error translation.
func (ex *Execution) runSegment(seg filter.Filter[filter.Unit, filter.Unit]) {
	ex.start.Wait()

	ex.drive(seg)
	ex.closeSegment(seg)

	ex.threadEnd.CountDownAndWait()
}

func (ex *Execution) drive(seg filter.Filter[filter.Unit, filter.Unit]) {
	for {
		more, failed := ex.runOnce(seg)
		if failed {
			return
		}
		if !more {
			return
		}
	}
}

func (ex *Execution) runOnce(seg filter.Filter[filter.Unit, filter.Unit]) (more bool, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			ex.recordFailure(segmentPanicError(r))
			failed = true
		}
	}()

	more = filter.RunVoid(seg)
	return more, false
}

func (ex *Execution) closeSegment(seg filter.Filter[filter.Unit, filter.Unit]) {
	defer func() {
		if r := recover(); r != nil {
			ex.recordFailure(segmentPanicError(r))
		}
	}()

	seg.Close()
}

// segmentPanicError mirrors Worker.executeTask: an error panic value
// is passed through unwrapped, anything else becomes a PipelineError
// carrying a stack trace, so a fatal cause is always a real error,
// never a bare interface{}.
func segmentPanicError(r interface{}) error {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)

	var err error
	switch v := r.(type) {
	case error:
		err = v
	case string:
		err = types.NewPipelineError("runtime.runSegment", nil, fmt.Errorf("panic: %s", v))
	default:
		err = types.NewPipelineError("runtime.runSegment", nil, fmt.Errorf("panic: %v", v))
	}

	if pe, ok := err.(*types.PipelineError); ok {
		pe.WithContext("stack_trace", string(buf[:n]))
	}

	return err
}
