package model

// Union appends the records of page that are not already in dst, keyed by
// id. First occurrence wins, positions of existing records are untouched,
// and duplicates inside page itself are dropped as well. Returns the merged
// slice and how many records were added.
func Union[T Identified](dst, page []T) ([]T, int) {
	seen := make(map[int]struct{}, len(dst)+len(page))
	for _, r := range dst {
		seen[r.Key()] = struct{}{}
	}

	added := 0
	for _, r := range page {
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		dst = append(dst, r)
		added++
	}
	return dst, added
}
