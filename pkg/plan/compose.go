package plan

import "github.com/drvkize0/pipegraph/pkg/filter"

// Chain implements composition rule 1: Simple<I,M> | Simple<M,O> ->
// Simple<I,O>. Both operands are cloned; the originals remain
// independently usable.
func Chain[I, M, O any](p1 SimplePlan[I, M], p2 SimplePlan[M, O]) SimplePlan[I, O] {
	return SimplePlan[I, O]{F: filter.NewChain(p1.F.Clone(), p2.F.Clone())}
}

// ChainAfter implements composition rule 2: Full<I,M> | Simple<M,O>
// -> Full<I,O>. The trailing segment is extended by chaining its
// filter with the new transform; Leading and Chain are cloned
// unchanged.
func ChainAfter[I, M, O any](p1 FullPlan[I, M], p2 SimplePlan[M, O]) FullPlan[I, O] {
	return FullPlan[I, O]{
		Leading:  p1.Leading.Clone(),
		Chain:    cloneChain(p1.Chain),
		Trailing: filter.NewChain(p1.Trailing.Clone(), p2.F.Clone()),
		Owned:    p1.Owned,
	}
}

// ChainBefore implements composition rule 3: Simple<I,M> | Full<M,O>
// -> Full<I,O>. The simple filter is prepended to the full plan's
// leading filter (which, for a self-sourced plan, is the identity
// hop standing in for "absent" — prepending to it is behaviorally the
// same as the simple filter becoming the new leading). Chain and
// Trailing are cloned unchanged.
func ChainBefore[I, M, O any](p1 SimplePlan[I, M], p2 FullPlan[M, O]) FullPlan[I, O] {
	return FullPlan[I, O]{
		Leading:  filter.NewChain(p1.F.Clone(), p2.Leading.Clone()),
		Chain:    cloneChain(p2.Chain),
		Trailing: p2.Trailing.Clone(),
		Owned:    p2.Owned,
	}
}

// ChainFull implements composition rule 4: Full<I,M> | Full<M,O> ->
// Full<I,O>. The join point is a thread boundary: p1's trailing
// segment is chained with p2's leading filter to form a new complete
// Unit->Unit segment, which is appended after p1's chain and before
// p2's chain. The new plan's Leading is p1's, and its Trailing is
// p2's.
func ChainFull[I, M, O any](p1 FullPlan[I, M], p2 FullPlan[M, O]) FullPlan[I, O] {
	joint := filter.NewChain(p1.Trailing.Clone(), p2.Leading.Clone())

	chain := make([]filter.Filter[filter.Unit, filter.Unit], 0, len(p1.Chain)+1+len(p2.Chain))
	chain = append(chain, cloneChain(p1.Chain)...)
	chain = append(chain, joint)
	chain = append(chain, cloneChain(p2.Chain)...)

	owned := make([]QueueCloser, 0, len(p1.Owned)+len(p2.Owned))
	owned = append(owned, p1.Owned...)
	owned = append(owned, p2.Owned...)

	return FullPlan[I, O]{
		Leading:  p1.Leading.Clone(),
		Chain:    chain,
		Trailing: p2.Trailing.Clone(),
		Owned:    owned,
	}
}

func cloneChain(chain []filter.Filter[filter.Unit, filter.Unit]) []filter.Filter[filter.Unit, filter.Unit] {
	if chain == nil {
		return nil
	}
	out := make([]filter.Filter[filter.Unit, filter.Unit], len(chain))
	for i, f := range chain {
		out[i] = f.Clone()
	}
	return out
}
