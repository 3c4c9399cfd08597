package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Ternary returns a when cond is true, otherwise b.
//
// Parameters:
//   - cond: the selector
//   - a: the value returned when cond is true
//   - b: the value returned when cond is false
//
// Returns:
//   - T: a or b
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
