// Package pipeline wires the enrichment stages for a trip and runs them in
// order under a per-trip file lock, aborting at the first stage failure.
package pipeline
