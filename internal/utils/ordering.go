package utils

// ClampIndex limits index to the valid positions of a list of length n.
// An empty list clamps to 0.
func ClampIndex(index, n int) int {
	if index < 0 || n <= 0 {
		return 0
	}
	if index > n-1 {
		return n - 1
	}
	return index
}

// MoveItem returns a copy of items with the element at from moved to to.
// Both positions are clamped to the list bounds.
func MoveItem[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if len(out) < 2 {
		return out
	}
	from = ClampIndex(from, len(out))
	to = ClampIndex(to, len(out))
	if from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}

// IndexOf returns the position of the first element matching pred, or -1.
func IndexOf[T any](items []T, pred func(T) bool) int {
	for i, item := range items {
		if pred(item) {
			return i
		}
	}
	return -1
}
