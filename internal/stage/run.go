package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"memograph/internal/backup"
	"memograph/internal/logging"
	"memograph/internal/services"
	"memograph/internal/store"
)

// Options controls one stage execution against one trip store.
type Options struct {
	Logger  *slog.Logger
	Store   *store.Store
	Backups *backup.Manager
	Handler Handler
}

// Result summarizes what a stage execution did to the store.
type Result struct {
	Updated    int
	Added      int
	Skipped    int
	BackupPath string
}

// Run executes a stage with the persistence bracket every stage shares:
// load, extend schema, execute, merge, snapshot, save. The snapshot is taken
// before the save overwrites the store, so a bad write never costs the
// previous state. A store that comes out unchanged is left untouched on disk
// and produces no snapshot, which keeps repeated runs from piling up backups.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Handler == nil {
		return Result{}, fmt.Errorf("stage handler is required")
	}
	if opts.Store == nil {
		return Result{}, fmt.Errorf("record store is required")
	}

	name := opts.Handler.Name()
	stageCtx := services.WithStage(ctx, name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	logger := logging.WithContext(stageCtx, opts.Logger)

	started := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"))

	table, err := opts.Store.Load()
	if err != nil {
		return Result{}, failStage(logger, name, "load store", err)
	}
	for _, issue := range table.Issues {
		logger.Warn("store row issue", logging.String("detail", issue))
	}
	table.EnsureColumns(opts.Handler.Columns())

	outcome, err := opts.Handler.Execute(stageCtx, table)
	if err != nil {
		return Result{}, failStage(logger, name, "execute", err)
	}

	for _, rec := range outcome.Added {
		if err := table.Append(rec); err != nil {
			return Result{}, failStage(logger, name, "append record",
				services.Wrap(services.ErrSchemaViolation, name, "append record", rec.Identity(), err))
		}
	}
	changed, err := table.MergeStageOutput(outcome.Updates)
	if err != nil {
		return Result{}, failStage(logger, name, "merge output",
			services.Wrap(services.ErrSchemaViolation, name, "merge output", "", err))
	}

	result := Result{Updated: changed, Added: len(outcome.Added), Skipped: outcome.Skipped}
	if result.Updated+result.Added > 0 {
		if opts.Backups != nil {
			path, err := opts.Backups.Snapshot(opts.Store.Path())
			if err != nil {
				return Result{}, failStage(logger, name, "snapshot store", err)
			}
			result.BackupPath = path
		}
		if err := opts.Store.Save(table); err != nil {
			return Result{}, failStage(logger, name, "save store", err)
		}
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("updated", result.Updated),
		logging.Int("added", result.Added),
		logging.Int("skipped", result.Skipped),
		logging.Duration("elapsed", time.Since(started)))
	return result, nil
}

func failStage(logger *slog.Logger, name, operation string, err error) error {
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("operation", operation),
		logging.Error(err))
	if services.Classified(err) {
		return err
	}
	return services.Wrap(services.ErrCollaborator, name, operation, "stage failed", err)
}
