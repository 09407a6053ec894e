package pipeline

import (
	"log/slog"
	"time"

	"memograph/internal/config"
	"memograph/internal/geocode"
	"memograph/internal/logging"
	"memograph/internal/stage"
	"memograph/internal/stages"
	"memograph/internal/trip"
	"memograph/internal/vision"
)

// BuildHandlers wires the full stage list for a trip from configuration.
// Disabled collaborators narrow the list: without a vision endpoint the
// model-backed stages are left out entirely, and without a geocoder the
// locate stage falls back to the trip name hint. The returned cleanup
// releases the geocode cache and is safe to call always.
func BuildHandlers(cfg *config.Config, layout *trip.Layout, logger *slog.Logger) ([]stage.Handler, func() error, error) {
	cleanup := func() error { return nil }

	var resolver stages.PlaceResolver
	if cfg.Geocoder.Enabled {
		cache, err := geocode.OpenCache(cfg.Geocoder.CachePath)
		if err != nil {
			logger.Warn("geocode cache unavailable, lookups will not be cached",
				logging.Error(err))
		} else if cache != nil {
			cleanup = cache.Close
		}
		client := geocode.NewClient(
			cfg.Geocoder.BaseURL,
			cfg.Geocoder.UserAgent,
			cfg.RateLimitDelay(),
			httpTimeout(cfg.Geocoder.TimeoutSeconds),
			logger,
		)
		resolver = geocode.NewResolver(cache, client, logger)
	}

	handlers := []stage.Handler{
		stages.NewScan(layout, cfg.Scanner.Extensions, logger),
		stages.NewDays(logger),
		stages.NewLocate(resolver, layout.Hint(), logger),
	}

	if cfg.Vision.Enabled {
		annotator := vision.NewClient(vision.Config{
			APIKey:         cfg.Vision.APIKey,
			BaseURL:        cfg.Vision.BaseURL,
			Model:          cfg.Vision.Model,
			TimeoutSeconds: cfg.Vision.TimeoutSeconds,
		})
		handlers = append(handlers,
			stages.NewFaces(layout, annotator, logger),
			stages.NewLabels(layout, annotator, logger),
			stages.NewSpecies(layout, annotator, logger),
			stages.NewCaption(layout, annotator, logger),
			stages.NewCaptionAI(layout, annotator, logger),
		)
	}

	return handlers, cleanup, nil
}

func httpTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
