// Package plan implements the composition algebra that glues filters
// into runnable pipelines: SimplePlan for transform-only compositions
// with no thread boundary, and FullPlan for compositions that contain
// at least one. There is no operator overloading and a generic
// receiver cannot gain new type parameters in a method, so pipe
// composition is realized as four distinctly named top-level
// functions: Chain, ChainAfter, ChainBefore, and ChainFull. See
// DESIGN.md for the mapping from each composition rule to its Go
// function.
package plan

import (
	"context"

	"github.com/drvkize0/pipegraph/pkg/filter"
	"github.com/drvkize0/pipegraph/pkg/queue"
)

// backgroundCtx is used for the queue operations a sink/source filter
// performs internally. Filter.Run/Apply have no context parameter of
// their own, so cancellation of a blocked Push/WaitPop is achieved by
// closing the queue, not by cancelling a context — see pkg/runtime's
// Cancel.
var backgroundCtx = context.Background()

// SimplePlan is a plan whose entire execution is a single filter with
// no thread boundary. It composes with other simple plans by function
// composition and with full plans by prepending or appending to their
// open ends.
type SimplePlan[I, O any] struct {
	F filter.Filter[I, O]
}

// FullPlan is a plan that contains at least one thread boundary,
// represented as the triple (leading, chain, trailing):
//
//   - Leading consumes values fed into the plan from outside and
//     pushes them at the first thread boundary. For a self-sourced
//     plan (one built from Source, with no external input) Leading is
//     the identity filter on Unit rather than absent — Go generics
//     cannot express "this field's type parameter is Unit only when
//     nil", so a harmless identity hop stands in for "absent" and is
//     never reached by the runtime, which never executes Leading for
//     a canonical plan.
//   - Chain is the ordered list of fully-typed (Unit->Unit) pipeline
//     segments between the first and last thread boundary, one worker
//     thread each.
//   - Trailing is the final segment, whose output type O remains
//     exposed for further composition.
type FullPlan[I, O any] struct {
	Leading  filter.Filter[I, filter.Unit]
	Chain    []filter.Filter[filter.Unit, filter.Unit]
	Trailing filter.Filter[filter.Unit, O]

	// Owned lists the producer ends of queues this plan allocated
	// itself (via Parallel), as opposed to queues the caller supplied
	// to Source/Sink directly. pkg/runtime.Cancel closes exactly this
	// set — the queues the execution is responsible for — rather than
	// reaching into the filter tree to find them.
	Owned []QueueCloser
}

// QueueCloser is the producer-side Close() contract Cancel needs;
// *queue.Producer[T] satisfies it for every T.
type QueueCloser interface {
	Close()
}

// CanonicalPlan is the only plan shape the runtime can execute: self-
// sourced and self-consumed. Composition functions return ordinary
// FullPlan[I, O] values; a plan only becomes a CanonicalPlan once I
// and O have both been driven to filter.Unit by the caller's choice of
// Source/Sink endpoints, which pkg/runtime.Start's signature enforces
// at the type level.
type CanonicalPlan = FullPlan[filter.Unit, filter.Unit]

func identity[T any]() filter.Filter[T, T] {
	return filter.NewFunction(func(v T) T { return v })
}

// Filter builds a transform plan from a pure function with no close
// behavior.
func Filter[I, O any](f func(I) O) SimplePlan[I, O] {
	return SimplePlan[I, O]{F: filter.NewFunction(f)}
}

// Consume builds a plan that feeds every input to f and discards f's
// absence of a return value by emitting Unit, with no close callback.
func Consume[I any](f func(I)) SimplePlan[I, filter.Unit] {
	return SimplePlan[I, filter.Unit]{
		F: filter.NewFunction(func(i I) filter.Unit {
			f(i)
			return filter.Unit{}
		}),
	}
}

// ConsumeAndClose builds a Consume plan with a close callback invoked
// once after the plan's last input is processed.
func ConsumeAndClose[I any](f func(I), close func()) SimplePlan[I, filter.Unit] {
	return SimplePlan[I, filter.Unit]{
		F: filter.NewFunctionWithClose(func(i I) filter.Unit {
			f(i)
			return filter.Unit{}
		}, close),
	}
}

// Sink builds a plan that pushes each input into p's producer end,
// blocking when p's queue is full. A push error (queue closed) is
// treated the same as a user transform error: it propagates as a
// panic recovered at the worker boundary, since a sink's downstream
// queue closing mid-run is a construction misuse, not an expected
// runtime condition.
func Sink[I any](p *queue.Producer[I]) SimplePlan[I, filter.Unit] {
	return SimplePlan[I, filter.Unit]{F: sinkFilter[I](p, nil)}
}

// SinkAndClose builds a Sink plan whose close callback closes p's
// producer end, so the downstream consumer observes closed-and-empty
// once this segment's last push has been processed.
func SinkAndClose[I any](p *queue.Producer[I]) SimplePlan[I, filter.Unit] {
	return SimplePlan[I, filter.Unit]{F: sinkFilter[I](p, func() { p.Close() })}
}

func sinkFilter[I any](p *queue.Producer[I], close func()) filter.Filter[I, filter.Unit] {
	push := func(i I) filter.Unit {
		if err := p.Push(backgroundCtx, i); err != nil {
			panic(err)
		}
		return filter.Unit{}
	}
	if close == nil {
		return filter.NewFunction(push)
	}
	return filter.NewFunctionWithClose(push, close)
}

// Source builds a self-sourced full plan whose trailing segment pops
// values of type O from c until it is closed and drained.
func Source[O any](c *queue.Consumer[O]) FullPlan[filter.Unit, O] {
	return FullPlan[filter.Unit, O]{
		Leading:  identity[filter.Unit](),
		Chain:    nil,
		Trailing: filter.NewSource[O](c),
	}
}
