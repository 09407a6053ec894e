package store

// ExtendHeader appends any member of required not already present in existing,
// preserving the relative order of both inputs: existing columns first in
// their original order, new columns in the order they were requested. Columns
// are never inserted, reordered, or dropped, so historical snapshots remain
// structural prefixes of later schemas. Idempotent.
func ExtendHeader(existing, required []string) []string {
	header := append([]string(nil), existing...)
	seen := make(map[string]struct{}, len(header))
	for _, col := range header {
		seen[col] = struct{}{}
	}
	for _, col := range required {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		header = append(header, col)
	}
	return header
}
