package stage

import (
	"context"

	"memograph/internal/store"
)

// Outcome is what a stage hands back to the execution helper. Updates is
// keyed by record identity and overwrites only the named columns; Added
// carries brand-new records (the scan stage is the only producer). Skipped
// counts records the stage deliberately left alone.
type Outcome struct {
	Updates map[string]map[string]string
	Added   []*store.Record
	Skipped int
}

// Handler describes the contract the pipeline needs from each stage.
type Handler interface {
	// Name is the stable stage identifier used in logs and CLI selection.
	Name() string
	// Columns lists the columns the stage writes. The helper extends the
	// store schema with them before Execute runs.
	Columns() []string
	// Execute computes the stage's output against a loaded table. It must
	// not mutate the table; all writes flow through the returned Outcome.
	Execute(ctx context.Context, table *store.Table) (Outcome, error)
}
