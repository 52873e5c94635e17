package runtime

import (
	"context"
	"time"

	"github.com/drvkize0/pipegraph/pkg/queue"
	"github.com/drvkize0/pipegraph/pkg/types"
)

// Collect drains c on its own goroutine until it is closed and
// drained, delivering each value as a pooled types.Result on the
// returned channel and closing the channel once c is exhausted. A
// Collect channel is the usual way to observe a FullPlan's trailing
// output from outside the execution that drives it, since a plan's
// own sink normally consumes its output via a closure instead.
func Collect[O any](ctx context.Context, c *queue.Consumer[O]) <-chan types.Result[O] {
	out := make(chan types.Result[O])
	pool := types.NewResultPool[O]()

	go func() {
		defer close(out)

		for {
			start := time.Now()
			v, ok := c.WaitPop(ctx)
			if !ok {
				return
			}

			r := pool.Get()
			r.Value = v
			r.Error = nil
			r.Duration = time.Since(start)

			select {
			case out <- *r:
			case <-ctx.Done():
				pool.Put(r)
				return
			}
			pool.Put(r)
		}
	}()

	return out
}

// CollectAll blocks until c is closed and drained (or ctx is
// cancelled), returning every value it produced in order.
func CollectAll[O any](ctx context.Context, c *queue.Consumer[O]) ([]O, error) {
	var out []O
	for {
		v, ok := c.WaitPop(ctx)
		if !ok {
			return out, nil
		}
		out = append(out, v)
		if err := ctx.Err(); err != nil {
			return out, err
		}
	}
}
