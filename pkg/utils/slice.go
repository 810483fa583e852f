package utils

// FilterSlice maps every element through f, keeping the results f accepts.
func FilterSlice[S any, T any](in []S, f func(S) (T, bool)) []T {
	out := make([]T, 0, len(in))
	for _, item := range in {
		if v, ok := f(item); ok {
			out = append(out, v)
		}
	}
	return out
}

// Or returns the first non-zero value.
func Or[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

func Ptr[T any](v T) *T {
	return &v
}

func DerefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Uniq drops repeated elements, keeping first occurrences in order.
func Uniq[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
