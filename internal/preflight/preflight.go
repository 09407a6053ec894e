package preflight

import (
	"context"

	"memograph/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config and
// trip folder. Collaborator checks only run when the feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config, tripRoot string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if tripRoot != "" {
		results = append(results, CheckDirectoryAccess("Trip folder", tripRoot))
	}

	if cfg.Geocoder.Enabled {
		results = append(results, CheckGeocoder(ctx, cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent))
	}

	if cfg.Vision.Enabled {
		results = append(results, CheckVision(ctx, *cfg))
	}

	return results
}
