package testsupport

import (
	"path/filepath"
	"testing"

	"memograph/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config with collaborators disabled and the geocode
// cache pointed at a unique temp directory per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Geocoder.Enabled = false
	cfg.Vision.Enabled = false
	cfg.Geocoder.CachePath = filepath.Join(t.TempDir(), "geocode.db")
	cfg.Logging.ToFile = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithGeocoder enables the geocoder against the given endpoint with rate
// limiting turned off.
func WithGeocoder(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Geocoder.Enabled = true
		cfg.Geocoder.BaseURL = baseURL
		cfg.Geocoder.UserAgent = "memograph-test"
		cfg.Geocoder.RateLimitSeconds = 0
	}
}

// WithVision enables the vision stages against the given endpoint.
func WithVision(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Vision.Enabled = true
		cfg.Vision.BaseURL = baseURL
		cfg.Vision.APIKey = "test-key"
		cfg.Vision.Model = "test-model"
	}
}
