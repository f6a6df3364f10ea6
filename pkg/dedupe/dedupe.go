// Package dedupe removes exact duplicates from identifier sequences.
//
// Paginated endpoints served by eventually-consistent backends may repeat
// an item across adjacent pages; merging their identifiers through Unique
// yields one entry per identifier.
package dedupe

// Unique returns ids with exact duplicates removed, preserving first-seen
// order. It never returns nil for non-nil input.
func Unique[T comparable](ids []T) []T {
	if ids == nil {
		return nil
	}
	seen := make(map[T]struct{}, len(ids))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
