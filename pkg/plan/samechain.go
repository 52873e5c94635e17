package plan

// SameTypeChain is sugar for building up a same-type T->T SimplePlan
// by repeated application of Chain: an immutable, append-only
// sequence of steps that only works when every step shares one type,
// exactly the constraint Chain itself has when I, M, and O all unify
// to T.
type SameTypeChain[T any] struct {
	plan SimplePlan[T, T]
}

// NewSameTypeChain starts a chain with a single step.
func NewSameTypeChain[T any](f func(T) T) SameTypeChain[T] {
	return SameTypeChain[T]{plan: Filter(f)}
}

// Then returns a new chain with f appended after every existing step.
// The receiver remains valid and independently usable, since Chain
// deep-clones its operands.
func (c SameTypeChain[T]) Then(f func(T) T) SameTypeChain[T] {
	return SameTypeChain[T]{plan: Chain[T, T, T](c.plan, Filter(f))}
}

// ToPlan returns the chain's accumulated SimplePlan.
func (c SameTypeChain[T]) ToPlan() SimplePlan[T, T] {
	return c.plan
}
