package stages

import (
	"context"
	"errors"
	"log/slog"

	"memograph/internal/dayassign"
	"memograph/internal/logging"
	"memograph/internal/services"
	"memograph/internal/stage"
	"memograph/internal/store"
)

// Days derives the relative trip-day number for every record from its
// capture timestamp.
type Days struct {
	logger *slog.Logger
}

// NewDays builds the day assignment stage.
func NewDays(logger *slog.Logger) *Days {
	return &Days{logger: logging.NewComponentLogger(logger, "days")}
}

func (d *Days) Name() string { return "days" }

func (d *Days) Columns() []string { return []string{"day_number"} }

// Execute recomputes day numbers for the whole table. Records without a
// parseable timestamp come out explicitly unknown; a table with no parseable
// timestamp at all fails the stage, since nothing anchors day one.
func (d *Days) Execute(_ context.Context, table *store.Table) (stage.Outcome, error) {
	if table.Len() == 0 {
		return stage.Outcome{}, nil
	}

	timestamps := make(map[string]string, table.Len())
	for _, rec := range table.Records {
		timestamps[rec.Identity()] = rec.Get("datetime_original")
	}

	days, err := dayassign.Assign(timestamps)
	if err != nil {
		if errors.Is(err, dayassign.ErrNoValidTimestamps) {
			return stage.Outcome{}, services.Wrap(services.ErrResourceMissing, d.Name(), "assign days",
				"no record carries a parseable capture timestamp", err)
		}
		return stage.Outcome{}, err
	}

	outcome := stage.Outcome{Updates: make(map[string]map[string]string, len(days))}
	for identity, day := range days {
		if day == "" {
			d.logger.Warn("record without usable timestamp",
				logging.String(logging.FieldRecord, identity))
		}
		outcome.Updates[identity] = map[string]string{"day_number": day}
	}
	return outcome, nil
}
