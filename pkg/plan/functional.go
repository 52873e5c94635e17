package plan

import "github.com/drvkize0/pipegraph/pkg/filter"

// This file holds small combinators over the pure, non-erroring,
// non-fan-out shape of a plan filter: func(I) O, one output per
// input, no context. A plan filter cannot drop or duplicate an item,
// and a mid-stream error is always fatal (see DESIGN.md), so there is
// no retry or error-branching combinator here.

// Tap builds a plan that runs p and then calls observe on every
// output before passing it through unchanged, for side-effecting
// inspection (metrics, logging) without altering the data flow.
func Tap[T any](p SimplePlan[T, T], observe func(T)) SimplePlan[T, T] {
	return SimplePlan[T, T]{
		F: filter.NewFunction(func(in T) T {
			out := p.F.Apply(in)
			observe(out)
			return out
		}),
	}
}

// Conditional builds a plan that applies trueBranch or falseBranch
// depending on predicate, evaluated once per input.
func Conditional[I, O any](predicate func(I) bool, trueBranch, falseBranch SimplePlan[I, O]) SimplePlan[I, O] {
	return SimplePlan[I, O]{
		F: filter.NewFunction(func(in I) O {
			if predicate(in) {
				return trueBranch.F.Apply(in)
			}
			return falseBranch.F.Apply(in)
		}),
	}
}
