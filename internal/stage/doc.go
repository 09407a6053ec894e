// Package stage defines the enrichment stage contract and the shared
// execution bracket that loads the store, applies a stage's output, and
// persists the result behind a snapshot.
package stage
