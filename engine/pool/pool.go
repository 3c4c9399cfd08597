package pool

import "sync"

// pool implements the Pool interface as a mutex-guarded free list.
type pool[T comparable] struct {
	mu *sync.Mutex

	free   []T
	pooled map[T]struct{}

	newFn   func() T
	resetFn func(T)

	borrowed int
}

// Pool is a typed free list for reusable records such as animation instances and event records.
// Borrow always hands out an item whose transient fields have been reset.
type Pool[T comparable] interface {
	// Borrow returns a reset item, reusing a returned one when available.
	//
	// Returns:
	//   - T: the item
	Borrow() T

	// Return hands an item back for reuse. Returning an item that is already pooled is a no-op.
	//
	// Parameters:
	//   - item: the item to return
	Return(item T)

	// Len returns the number of items waiting for reuse.
	//
	// Returns:
	//   - int: the free list length
	Len() int

	// Borrowed returns the number of items handed out and not yet returned.
	//
	// Returns:
	//   - int: the outstanding item count
	Borrowed() int
}

var _ Pool[*struct{}] = &pool[*struct{}]{}

// NewPool creates a new Pool.
//
// Parameters:
//   - newFn: allocates a fresh item
//   - options: functional options such as WithReset or WithCapacity
//
// Returns:
//   - Pool[T]: the newly created pool
func NewPool[T comparable](newFn func() T, options ...PoolBuilderOption[T]) Pool[T] {
	if newFn == nil {
		panic("pool: NewPool requires a non-nil constructor")
	}
	p := &pool[T]{
		mu:     &sync.Mutex{},
		pooled: make(map[T]struct{}),
		newFn:  newFn,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pool[T]) Borrow() T {
	p.mu.Lock()
	var item T
	if n := len(p.free); n > 0 {
		item = p.free[n-1]
		p.free = p.free[:n-1]
		delete(p.pooled, item)
	} else {
		item = p.newFn()
	}
	p.borrowed++
	p.mu.Unlock()

	if p.resetFn != nil {
		p.resetFn(item)
	}
	return item
}

func (p *pool[T]) Return(item T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pooled[item]; ok {
		return
	}
	p.pooled[item] = struct{}{}
	p.free = append(p.free, item)
	if p.borrowed > 0 {
		p.borrowed--
	}
}

func (p *pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

func (p *pool[T]) Borrowed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.borrowed
}
