// Package filter provides the typed unit of work at the core of a
// dataflow plan: a transform from an input type to an output type, or,
// at a thread boundary, a source that pulls from a queue.
//
// Filter is realized as a tagged variant rather than a classic
// interface hierarchy: there are exactly three concrete shapes
// (function, chain, thread-point source), and the hot Run loop never
// needs virtual dispatch beyond the one interface call. See DESIGN.md
// for the inheritance-vs-tagged-variant tradeoff.
package filter

import (
	"context"
	"errors"
	"fmt"
)

// Unit is the distinguished "no input"/"no output" type. Every driver
// step produces a Unit; every source filter consumes one.
type Unit struct{}

// ErrNotRunnable is returned (wrapped in a panic recovered by the
// runtime) when Run or RunVoid is called on a filter variant that
// does not support driver-mode execution, or when Apply is called on
// a filter whose input side is a queue rather than a value.
var ErrNotRunnable = errors.New("filter: operation not supported by this variant")

// Filter transforms values of type I into values of type O.
//
// Apply is defined on transform filters; calling it on a source
// filter panics with ErrNotRunnable. Run/RunVoid are defined on
// filters whose input side is a queue (directly, or transitively
// through a Chain whose first leg is a source); calling them on a
// pure function filter panics with ErrNotRunnable.
type Filter[I, O any] interface {
	// Apply applies the filter to a single input, synchronously.
	Apply(in I) O

	// Run pulls one item from upstream and pushes it to push. It
	// returns true if more input may follow, false once upstream is
	// closed and drained.
	Run(push func(O)) bool

	// Close is invoked exactly once, after Run has returned false for
	// the last time (or never, if the filter was only ever driven via
	// Apply).
	Close()

	// Clone returns a structurally identical filter that shares only
	// immutable captured state (the user's function, a queue
	// endpoint). Queues are never cloned.
	Clone() Filter[I, O]
}

func notRunnable(op string) {
	panic(fmt.Errorf("%w: %s", ErrNotRunnable, op))
}

// noop is the default close callback used when the caller does not
// supply one.
func noop() {}

// functionFilter wraps a pure function and an optional close callback.
type functionFilter[I, O any] struct {
	f     func(I) O
	close func()
}

// NewFunction builds a transform filter from a pure function with no
// close behavior.
func NewFunction[I, O any](f func(I) O) Filter[I, O] {
	return &functionFilter[I, O]{f: f, close: noop}
}

// NewFunctionWithClose builds a transform filter with a close
// callback invoked once after the filter's last input is processed.
func NewFunctionWithClose[I, O any](f func(I) O, closeFn func()) Filter[I, O] {
	if closeFn == nil {
		closeFn = noop
	}
	return &functionFilter[I, O]{f: f, close: closeFn}
}

func (ff *functionFilter[I, O]) Apply(in I) O {
	return ff.f(in)
}

func (ff *functionFilter[I, O]) Run(func(O)) bool {
	notRunnable("Run on a function filter")
	panic("unreachable")
}

func (ff *functionFilter[I, O]) Close() {
	ff.close()
}

func (ff *functionFilter[I, O]) Clone() Filter[I, O] {
	return &functionFilter[I, O]{f: ff.f, close: ff.close}
}

// chainFilter composes two filters F1: I->M and F2: M->O.
type chainFilter[I, M, O any] struct {
	first  Filter[I, M]
	second Filter[M, O]
}

// NewChain composes two filters by function composition: Apply is
// second.Apply(first.Apply(i)); Run drives first with a continuation
// that applies second before forwarding; Close closes both, in order.
func NewChain[I, M, O any](first Filter[I, M], second Filter[M, O]) Filter[I, O] {
	return &chainFilter[I, M, O]{first: first, second: second}
}

func (cf *chainFilter[I, M, O]) Apply(in I) O {
	return cf.second.Apply(cf.first.Apply(in))
}

func (cf *chainFilter[I, M, O]) Run(push func(O)) bool {
	return cf.first.Run(func(m M) {
		push(cf.second.Apply(m))
	})
}

func (cf *chainFilter[I, M, O]) Close() {
	cf.first.Close()
	cf.second.Close()
}

func (cf *chainFilter[I, M, O]) Clone() Filter[I, O] {
	return &chainFilter[I, M, O]{first: cf.first.Clone(), second: cf.second.Clone()}
}

// RunVoid drives a chain whose output type is Unit, discarding the
// final value instead of threading it to a continuation.
func RunVoid[I any](f Filter[I, Unit]) bool {
	return f.Run(func(Unit) {})
}

// queueConsumer is the minimal surface a thread-point source filter
// needs from pkg/queue; declared here (rather than importing
// pkg/queue) so pkg/filter has no dependency on the queue's
// concurrency implementation — only on the contract. The ctx argument
// is threaded through for parity with the rest of the ambient stack;
// the Run loop itself has no cancellation parameter of its own, so a
// source filter's ctx is fixed at construction and unblocking on
// shutdown is done by closing the queue, not by cancelling ctx.
type queueConsumer[O any] interface {
	WaitPop(ctx context.Context) (O, bool)
}

// sourceFilter is attached to the consumer side of a bounded queue; it
// has no meaningful input type and produces O by popping from the
// queue until it is closed and drained.
type sourceFilter[O any] struct {
	ctx context.Context
	q   queueConsumer[O]
}

// NewSource builds a thread-point source filter reading from c.
func NewSource[O any](c queueConsumer[O]) Filter[Unit, O] {
	return &sourceFilter[O]{ctx: context.Background(), q: c}
}

// NewSourceContext builds a thread-point source filter reading from c,
// using ctx for the underlying WaitPop calls.
func NewSourceContext[O any](ctx context.Context, c queueConsumer[O]) Filter[Unit, O] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &sourceFilter[O]{ctx: ctx, q: c}
}

func (sf *sourceFilter[O]) Apply(Unit) O {
	notRunnable("Apply on a source filter")
	panic("unreachable")
}

func (sf *sourceFilter[O]) Run(push func(O)) bool {
	out, ok := sf.q.WaitPop(sf.ctx)
	if !ok {
		return false
	}
	push(out)
	return true
}

func (sf *sourceFilter[O]) Close() {
	// The queue itself is closed by the upstream producer; the source
	// filter has nothing of its own to release.
}

func (sf *sourceFilter[O]) Clone() Filter[Unit, O] {
	return &sourceFilter[O]{ctx: sf.ctx, q: sf.q}
}
