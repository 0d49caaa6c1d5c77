package domain

// FirstSet returns the first non-zero value from vals.
func FirstSet[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

// ValueOr dereferences the first non-nil pointer, or returns fallback.
func ValueOr[T any](fallback T, ptrs ...*T) T {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return fallback
}

// Positive returns v when it is greater than zero, otherwise fallback.
func Positive[T ~int | ~int64 | ~float64](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}
