package stages

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"memograph/internal/logging"
	"memograph/internal/stage"
	"memograph/internal/store"
	"memograph/internal/trip"
)

// Annotator is the vision model surface the enrichment stages consume.
type Annotator interface {
	Labels(ctx context.Context, imagePath string) ([]string, error)
	Species(ctx context.Context, imagePath string) ([]string, error)
	DetectFaces(ctx context.Context, imagePath string) (int, error)
	Caption(ctx context.Context, imagePath string) (string, error)
	CreativeCaption(ctx context.Context, imagePath string) (string, error)
}

// listSeparator joins multi-valued annotations into one cell.
const listSeparator = "; "

// visionStage is the shared shape of every model-backed enrichment stage:
// one column, skip-if-present, per-record failures logged and tolerated.
type visionStage struct {
	name     string
	column   string
	layout   *trip.Layout
	annotate func(ctx context.Context, imagePath string) (string, error)
	logger   *slog.Logger
}

func (v *visionStage) Name() string { return v.name }

func (v *visionStage) Columns() []string { return []string{v.column} }

// Execute annotates every record whose target column is still empty. A photo
// that has disappeared from disk, or a model call that fails, skips that
// record; the next run retries it.
func (v *visionStage) Execute(ctx context.Context, table *store.Table) (stage.Outcome, error) {
	outcome := stage.Outcome{Updates: make(map[string]map[string]string)}
	for _, rec := range table.Records {
		if err := ctx.Err(); err != nil {
			return stage.Outcome{}, err
		}
		identity := rec.Identity()
		if rec.Get(v.column) != "" {
			outcome.Skipped++
			continue
		}

		imagePath := filepath.Join(v.layout.Root, filepath.FromSlash(identity))
		if _, err := os.Stat(imagePath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				v.logger.Warn("photo missing from disk",
					logging.String(logging.FieldRecord, identity),
					logging.String(logging.FieldErrorHint, "re-run scan to reconcile the store"))
			} else {
				v.logger.Warn("photo not accessible",
					logging.String(logging.FieldRecord, identity),
					logging.Error(err))
			}
			outcome.Skipped++
			continue
		}

		value, err := v.annotate(ctx, imagePath)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stage.Outcome{}, err
			}
			v.logger.Warn("annotation failed",
				logging.String(logging.FieldRecord, identity),
				logging.Error(err))
			outcome.Skipped++
			continue
		}
		outcome.Updates[identity] = map[string]string{v.column: value}
	}
	return outcome, nil
}

// NewFaces builds the face counting stage. The count lands in the store as a
// plain integer, so zero reads as "checked, none found" rather than "not yet
// checked".
func NewFaces(layout *trip.Layout, annotator Annotator, logger *slog.Logger) stage.Handler {
	return &visionStage{
		name:   "faces",
		column: "faces_detected",
		layout: layout,
		annotate: func(ctx context.Context, imagePath string) (string, error) {
			count, err := annotator.DetectFaces(ctx, imagePath)
			if err != nil {
				return "", err
			}
			return strconv.Itoa(count), nil
		},
		logger: logging.NewComponentLogger(logger, "faces"),
	}
}

// NewLabels builds the object labeling stage.
func NewLabels(layout *trip.Layout, annotator Annotator, logger *slog.Logger) stage.Handler {
	return &visionStage{
		name:   "labels",
		column: "detected_objects",
		layout: layout,
		annotate: func(ctx context.Context, imagePath string) (string, error) {
			labels, err := annotator.Labels(ctx, imagePath)
			if err != nil {
				return "", err
			}
			return strings.Join(labels, listSeparator), nil
		},
		logger: logging.NewComponentLogger(logger, "labels"),
	}
}

// NewSpecies builds the wildlife species tagging stage.
func NewSpecies(layout *trip.Layout, annotator Annotator, logger *slog.Logger) stage.Handler {
	return &visionStage{
		name:   "species",
		column: "species_tags",
		layout: layout,
		annotate: func(ctx context.Context, imagePath string) (string, error) {
			species, err := annotator.Species(ctx, imagePath)
			if err != nil {
				return "", err
			}
			return strings.Join(species, listSeparator), nil
		},
		logger: logging.NewComponentLogger(logger, "species"),
	}
}

// NewCaption builds the accessibility caption stage.
func NewCaption(layout *trip.Layout, annotator Annotator, logger *slog.Logger) stage.Handler {
	return &visionStage{
		name:   "caption",
		column: "caption",
		layout: layout,
		annotate: func(ctx context.Context, imagePath string) (string, error) {
			return annotator.Caption(ctx, imagePath)
		},
		logger: logging.NewComponentLogger(logger, "caption"),
	}
}

// NewCaptionAI builds the journal-style caption stage.
func NewCaptionAI(layout *trip.Layout, annotator Annotator, logger *slog.Logger) stage.Handler {
	return &visionStage{
		name:   "caption-ai",
		column: "caption_ai",
		layout: layout,
		annotate: func(ctx context.Context, imagePath string) (string, error) {
			return annotator.CreativeCaption(ctx, imagePath)
		},
		logger: logging.NewComponentLogger(logger, "caption-ai"),
	}
}
