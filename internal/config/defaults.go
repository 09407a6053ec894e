package config

import (
	"os"
	"path/filepath"
	"strings"
)

// RequiredColumns is the schema baseline every store receives on first write.
// Column order here is the canonical order; the schema registry appends any
// missing members without reordering existing columns.
var RequiredColumns = []string{
	"image_name", "local_path", "md5sum", "datetime_original", "device_model",
	"gps_lat", "gps_lon", "location_inferred", "day_number",
	"detected_objects", "species_tags", "faces_detected", "people_tags",
	"caption", "caption_ai", "notes",
}

// Default returns the built-in configuration values.
func Default() Config {
	return Config{
		Store: Store{
			FileName:         "labels.csv",
			RequiredColumns:  append([]string(nil), RequiredColumns...),
			ExportFullSchema: true,
		},
		Backups: Backups{
			RetentionCount: 3,
		},
		Scanner: Scanner{
			Extensions: []string{".jpg", ".jpeg", ".tiff", ".png", ".jfif"},
		},
		Geocoder: Geocoder{
			Enabled:          true,
			BaseURL:          "https://nominatim.openstreetmap.org",
			UserAgent:        "memograph",
			RateLimitSeconds: 1.0,
			TimeoutSeconds:   10,
		},
		Vision: Vision{
			Enabled:        false,
			TimeoutSeconds: 30,
		},
		Logging: Logging{
			Format: "",
			Level:  "info",
			ToFile: true,
		},
	}
}

func defaultGeocodeCachePath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "memograph", "geocode.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "memograph", "geocode.db")
}

func (c *Config) normalize() error {
	c.Store.FileName = strings.TrimSpace(c.Store.FileName)
	if c.Store.FileName == "" {
		c.Store.FileName = "labels.csv"
	}
	if len(c.Store.RequiredColumns) == 0 {
		c.Store.RequiredColumns = append([]string(nil), RequiredColumns...)
	}

	exts := make([]string, 0, len(c.Scanner.Extensions))
	for _, ext := range c.Scanner.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = Default().Scanner.Extensions
	}
	c.Scanner.Extensions = exts

	c.Geocoder.BaseURL = strings.TrimSpace(c.Geocoder.BaseURL)
	c.Geocoder.UserAgent = strings.TrimSpace(c.Geocoder.UserAgent)
	if strings.TrimSpace(c.Geocoder.CachePath) == "" {
		c.Geocoder.CachePath = defaultGeocodeCachePath()
	} else {
		expanded, err := expandPath(c.Geocoder.CachePath)
		if err != nil {
			return err
		}
		c.Geocoder.CachePath = expanded
	}

	c.Vision.BaseURL = strings.TrimSpace(c.Vision.BaseURL)
	c.Vision.APIKey = strings.TrimSpace(c.Vision.APIKey)
	c.Vision.Model = strings.TrimSpace(c.Vision.Model)

	return nil
}
