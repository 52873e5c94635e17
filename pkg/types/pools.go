// Package types provides object pools for performance optimization
package types

import (
	"sync"
)

// ResultPool manages Result[T] object pooling to reduce GC pressure
type ResultPool[T any] struct {
	pool sync.Pool
}

// NewResultPool creates a new result pool for type T
func NewResultPool[T any]() *ResultPool[T] {
	return &ResultPool[T]{
		pool: sync.Pool{
			New: func() interface{} {
				return &Result[T]{}
			},
		},
	}
}

// Get retrieves a Result[T] from the pool or creates a new one
func (rp *ResultPool[T]) Get() *Result[T] {
	return rp.pool.Get().(*Result[T])
}

// Put returns a Result[T] to the pool after resetting it
func (rp *ResultPool[T]) Put(result *Result[T]) {
	if result != nil {
		// Reset the result to prevent memory leaks
		var zero T
		result.Value = zero
		result.Error = nil
		result.Duration = 0
		rp.pool.Put(result)
	}
}
