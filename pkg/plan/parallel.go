package plan

import (
	"github.com/drvkize0/pipegraph/pkg/filter"
	"github.com/drvkize0/pipegraph/pkg/queue"
)

// DefaultQueueCapacity is the bounded-queue capacity Parallel uses
// when no WithCapacity option is given.
const DefaultQueueCapacity = 16

// ParallelOption configures a single Parallel call.
type ParallelOption func(*parallelConfig)

type parallelConfig struct {
	capacity int
	priority int
	hasPrio  bool
}

// WithCapacity overrides the bounded queue's capacity for this
// Parallel boundary. Non-positive values are ignored.
func WithCapacity(n int) ParallelOption {
	return func(c *parallelConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithPriority tags the segment Parallel introduces with a scheduling
// priority, consumed by pkg/runtime when the execution's worker pool
// is a types.PriorityWorkerPool. Ignored by pools that don't support
// priority.
func WithPriority(p int) ParallelOption {
	return func(c *parallelConfig) {
		c.priority = p
		c.hasPrio = true
	}
}

// Prioritized is the optional interface a segment filter implements
// when it was produced by Parallel with WithPriority. pkg/runtime
// type-asserts for this when submitting to a priority-aware pool.
type Prioritized interface {
	SegmentPriority() int
}

// prioritizedFilter wraps a segment filter purely to carry a priority
// tag alongside it; every Filter method delegates to the embedded
// filter.
type prioritizedFilter[O any] struct {
	filter.Filter[filter.Unit, O]
	priority int
}

func (p *prioritizedFilter[O]) SegmentPriority() int {
	return p.priority
}

func (p *prioritizedFilter[O]) Clone() filter.Filter[filter.Unit, O] {
	return &prioritizedFilter[O]{Filter: p.Filter.Clone(), priority: p.priority}
}

// Parallel is the only construct that introduces a thread boundary.
// It allocates a fresh bounded queue, wires p's input and output
// through it, and returns the composition
// SinkAndClose(q.Front()) | Source(q.Back()) | p as a single Full
// plan. When WithPriority is given, the segment this call introduces
// (the plan's Trailing filter, at this point in the composition) is
// wrapped so pkg/runtime can recover the priority at submission time;
// further composition that extends Trailing further is free to use a
// plain filter again, so the tag does not survive past this call.
func Parallel[I, O any](p SimplePlan[I, O], opts ...ParallelOption) FullPlan[I, O] {
	cfg := parallelConfig{capacity: DefaultQueueCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	q := queue.NewQueue[I](cfg.capacity)

	sink := SinkAndClose[I](q.Front())
	source := Source[I](q.Back())

	fed := ChainBefore[I, filter.Unit, I](sink, source)
	full := ChainAfter[I, I, O](fed, p)
	full.Owned = append(full.Owned, q.Front())

	if cfg.hasPrio {
		full.Trailing = wrapPriority(full.Trailing, cfg.priority)
	}

	return full
}

func wrapPriority[O any](f filter.Filter[filter.Unit, O], priority int) filter.Filter[filter.Unit, O] {
	return &prioritizedFilter[O]{Filter: f, priority: priority}
}
