package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"memograph/internal/backup"
	"memograph/internal/logging"
	"memograph/internal/services"
	"memograph/internal/stage"
	"memograph/internal/store"
	"memograph/internal/trip"
)

// lockFileName guards one trip against concurrent runs. The lock lives in
// the working directory, so two processes on different trips never contend.
const lockFileName = "memograph.lock"

// Orchestrator runs the enrichment stages for one trip in order, stopping at
// the first failure so later stages never build on bad data.
type Orchestrator struct {
	layout   *trip.Layout
	store    *store.Store
	backups  *backup.Manager
	handlers []stage.Handler
	logger   *slog.Logger
	lock     *flock.Flock
}

// New constructs an orchestrator over the given handlers in run order.
func New(layout *trip.Layout, st *store.Store, backups *backup.Manager, handlers []stage.Handler, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		layout:   layout,
		store:    st,
		backups:  backups,
		handlers: handlers,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		lock:     flock.New(filepath.Join(layout.WorkDir, lockFileName)),
	}
}

// StageNames lists the configured stages in run order.
func (o *Orchestrator) StageNames() []string {
	names := make([]string, len(o.handlers))
	for i, handler := range o.handlers {
		names[i] = handler.Name()
	}
	return names
}

// Run executes every stage in order under the trip lock. The first stage
// failure aborts the run; the remaining stages are reported, not executed.
func (o *Orchestrator) Run(ctx context.Context) error {
	return o.locked(ctx, func(ctx context.Context) error {
		for i, handler := range o.handlers {
			if _, err := stage.Run(ctx, o.stageOptions(handler)); err != nil {
				remaining := o.remainingNames(i + 1)
				o.logger.Error("pipeline aborted",
					logging.String(logging.FieldEventType, "pipeline_failure"),
					logging.String(logging.FieldStage, handler.Name()),
					logging.String("stages_not_run", strings.Join(remaining, ",")),
					logging.Error(err))
				return fmt.Errorf("stage %s: %w", handler.Name(), err)
			}
		}
		o.logger.Info("pipeline completed",
			logging.String(logging.FieldEventType, "pipeline_complete"),
			logging.Int("stages", len(o.handlers)))
		return nil
	})
}

// RunStage executes a single stage by name under the trip lock.
func (o *Orchestrator) RunStage(ctx context.Context, name string) (stage.Result, error) {
	handler, ok := o.handler(name)
	if !ok {
		return stage.Result{}, services.Wrap(services.ErrConfiguration, name, "select stage",
			fmt.Sprintf("unknown stage, available: %s", strings.Join(o.StageNames(), ", ")), nil)
	}

	var result stage.Result
	err := o.locked(ctx, func(ctx context.Context) error {
		var runErr error
		result, runErr = stage.Run(ctx, o.stageOptions(handler))
		return runErr
	})
	return result, err
}

func (o *Orchestrator) locked(ctx context.Context, fn func(context.Context) error) error {
	ok, err := o.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire trip lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another run is already working on %s", o.layout.Root)
	}
	defer func() {
		if err := o.lock.Unlock(); err != nil {
			o.logger.Warn("failed to release trip lock", logging.Error(err))
		}
	}()

	return fn(services.WithTrip(ctx, o.layout.Root))
}

func (o *Orchestrator) stageOptions(handler stage.Handler) stage.Options {
	return stage.Options{
		Logger:  o.logger,
		Store:   o.store,
		Backups: o.backups,
		Handler: handler,
	}
}

func (o *Orchestrator) handler(name string) (stage.Handler, bool) {
	for _, handler := range o.handlers {
		if handler.Name() == name {
			return handler, true
		}
	}
	return nil, false
}

func (o *Orchestrator) remainingNames(from int) []string {
	if from >= len(o.handlers) {
		return nil
	}
	names := make([]string, 0, len(o.handlers)-from)
	for _, handler := range o.handlers[from:] {
		names = append(names, handler.Name())
	}
	return names
}
