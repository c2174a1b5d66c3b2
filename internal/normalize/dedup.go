package normalize

// DedupFirst keeps the first item seen for each key and preserves input order.
// Later duplicates are dropped; callers rely on first-wins.
func DedupFirst[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
