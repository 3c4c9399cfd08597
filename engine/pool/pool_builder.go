package pool

// PoolBuilderOption is a functional option for configuring a Pool.
type PoolBuilderOption[T comparable] func(*pool[T])

// WithReset sets the function that clears an item's transient fields on Borrow.
//
// Parameters:
//   - resetFn: the reset function
//
// Returns:
//   - PoolBuilderOption[T]: option function to apply
func WithReset[T comparable](resetFn func(T)) PoolBuilderOption[T] {
	return func(p *pool[T]) {
		p.resetFn = resetFn
	}
}

// WithCapacity preallocates n items on the free list.
//
// Parameters:
//   - n: the number of items to preallocate
//
// Returns:
//   - PoolBuilderOption[T]: option function to apply
func WithCapacity[T comparable](n int) PoolBuilderOption[T] {
	return func(p *pool[T]) {
		for i := 0; i < n; i++ {
			item := p.newFn()
			p.pooled[item] = struct{}{}
			p.free = append(p.free, item)
		}
	}
}
