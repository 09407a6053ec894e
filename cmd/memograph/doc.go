// Command memograph manages a per-trip tabular photo record store: scanning
// trip folders, enriching records through the pipeline stages, and querying
// or exporting the results.
package main
