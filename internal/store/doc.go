// Package store implements the per-trip record store: an ordered CSV table of
// photo records keyed by relative path, with append-only schema evolution and
// merge-by-identity update semantics.
//
// Row policy on load: rows whose field count does not match the header are
// retained, padded or truncated to the header width, and reported as row
// issues; completely blank rows are dropped. This keeps row counts stable for
// day grouping and query results while never silently inventing data.
package store
