package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values that would break a run.
func (c *Config) Validate() error {
	var problems []string

	if c.Backups.RetentionCount < 1 {
		problems = append(problems, "backups.retention_count must be at least 1")
	}
	if !containsColumn(c.Store.RequiredColumns, "local_path") {
		problems = append(problems, "store.required_columns must include local_path")
	}
	if !containsColumn(c.Store.RequiredColumns, "datetime_original") {
		problems = append(problems, "store.required_columns must include datetime_original")
	}
	if !containsColumn(c.Store.RequiredColumns, "day_number") {
		problems = append(problems, "store.required_columns must include day_number")
	}
	if seen := duplicateColumn(c.Store.RequiredColumns); seen != "" {
		problems = append(problems, fmt.Sprintf("store.required_columns lists %q twice", seen))
	}

	if c.Geocoder.Enabled {
		if c.Geocoder.BaseURL == "" {
			problems = append(problems, "geocoder.base_url is required when the geocoder is enabled")
		}
		if c.Geocoder.UserAgent == "" {
			problems = append(problems, "geocoder.user_agent is required when the geocoder is enabled")
		}
		if c.Geocoder.RateLimitSeconds < 0 {
			problems = append(problems, "geocoder.rate_limit_seconds must not be negative")
		}
		if c.Geocoder.TimeoutSeconds < 1 {
			problems = append(problems, "geocoder.timeout_seconds must be at least 1")
		}
	}

	if c.Vision.Enabled {
		if c.Vision.BaseURL == "" {
			problems = append(problems, "vision.base_url is required when vision stages are enabled")
		}
		if c.Vision.Model == "" {
			problems = append(problems, "vision.model is required when vision stages are enabled")
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}

func containsColumn(columns []string, name string) bool {
	for _, col := range columns {
		if col == name {
			return true
		}
	}
	return false
}

func duplicateColumn(columns []string) string {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if _, ok := seen[col]; ok {
			return col
		}
		seen[col] = struct{}{}
	}
	return ""
}
