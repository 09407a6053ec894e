package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Store contains configuration for the per-trip record store.
type Store struct {
	FileName         string   `toml:"file_name"`
	RequiredColumns  []string `toml:"required_columns"`
	ExportFullSchema bool     `toml:"export_full_schema"`
}

// Backups contains snapshot rotation settings.
type Backups struct {
	RetentionCount int `toml:"retention_count"`
}

// Scanner contains configuration for the image scanning stage.
type Scanner struct {
	Extensions []string `toml:"extensions"`
}

// Geocoder contains configuration for reverse geocoding lookups.
type Geocoder struct {
	Enabled          bool    `toml:"enabled"`
	BaseURL          string  `toml:"base_url"`
	UserAgent        string  `toml:"user_agent"`
	RateLimitSeconds float64 `toml:"rate_limit_seconds"`
	TimeoutSeconds   int     `toml:"timeout_seconds"`
	CachePath        string  `toml:"cache_path"`
}

// Vision contains connection settings for the vision model endpoint used by
// the captioning, labeling, and face detection stages.
type Vision struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	ToFile bool   `toml:"to_file"`
}

// Config encapsulates all configuration values for memograph.
//
// Configuration sections by subsystem:
//   - Store: record store file name, schema baseline, export width
//   - Backups: snapshot rotation depth
//   - Scanner: image extensions picked up by the scan stage
//   - Geocoder: reverse geocoding endpoint, rate limit, and cache
//   - Vision: vision model endpoint for caption/label/face stages
//   - Logging: log format, level, and per-trip log files
type Config struct {
	Store    Store    `toml:"store"`
	Backups  Backups  `toml:"backups"`
	Scanner  Scanner  `toml:"scanner"`
	Geocoder Geocoder `toml:"geocoder"`
	Vision   Vision   `toml:"vision"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/memograph/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path, and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("memograph.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RateLimitDelay returns the blocking delay between successive remote
// geocoding calls.
func (c *Config) RateLimitDelay() time.Duration {
	if c.Geocoder.RateLimitSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Geocoder.RateLimitSeconds * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
