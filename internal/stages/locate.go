package stages

import (
	"context"
	"log/slog"
	"strconv"

	"memograph/internal/logging"
	"memograph/internal/stage"
	"memograph/internal/store"
)

// PlaceResolver turns coordinates into a place name.
type PlaceResolver interface {
	Resolve(ctx context.Context, lat, lon float64) (string, error)
}

// Locate fills location_inferred from GPS coordinates through a resolver,
// falling back to a trip-level hint for photos without a usable fix or whose
// lookup fails. Records
// that already carry a location are left alone, so a hand-corrected value
// survives re-runs.
type Locate struct {
	resolver PlaceResolver // nil when geocoding is disabled
	fallback string
	logger   *slog.Logger
}

// NewLocate builds the location stage. A nil resolver sends every record to
// the fallback hint.
func NewLocate(resolver PlaceResolver, fallback string, logger *slog.Logger) *Locate {
	return &Locate{
		resolver: resolver,
		fallback: fallback,
		logger:   logging.NewComponentLogger(logger, "locate"),
	}
}

func (l *Locate) Name() string { return "locate" }

func (l *Locate) Columns() []string { return []string{"location_inferred"} }

// Execute resolves each record missing a location. A resolver failure falls
// back to the trip hint, the same as a record without coordinates; only when
// no hint is configured is the record skipped for the next run.
func (l *Locate) Execute(ctx context.Context, table *store.Table) (stage.Outcome, error) {
	outcome := stage.Outcome{Updates: make(map[string]map[string]string)}
	for _, rec := range table.Records {
		if err := ctx.Err(); err != nil {
			return stage.Outcome{}, err
		}
		identity := rec.Identity()
		if rec.Get("location_inferred") != "" {
			outcome.Skipped++
			continue
		}

		lat, lon, ok := recordCoordinates(rec)
		if !ok || l.resolver == nil {
			l.applyFallback(identity, &outcome)
			continue
		}

		place, err := l.resolver.Resolve(ctx, lat, lon)
		if err != nil {
			l.logger.Warn("location lookup failed",
				logging.String(logging.FieldRecord, identity),
				logging.Error(err))
			l.applyFallback(identity, &outcome)
			continue
		}
		outcome.Updates[identity] = map[string]string{"location_inferred": place}
	}
	return outcome, nil
}

func (l *Locate) applyFallback(identity string, outcome *stage.Outcome) {
	if l.fallback == "" {
		outcome.Skipped++
		return
	}
	outcome.Updates[identity] = map[string]string{"location_inferred": l.fallback}
}

func recordCoordinates(rec *store.Record) (float64, float64, bool) {
	lat, latErr := strconv.ParseFloat(rec.Get("gps_lat"), 64)
	lon, lonErr := strconv.ParseFloat(rec.Get("gps_lon"), 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
