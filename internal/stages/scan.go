package stages

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"memograph/internal/exifmeta"
	"memograph/internal/fileutil"
	"memograph/internal/logging"
	"memograph/internal/services"
	"memograph/internal/stage"
	"memograph/internal/store"
	"memograph/internal/trip"
)

// ScanColumns are the columns the scan stage owns.
var ScanColumns = []string{
	"image_name", "local_path", "md5sum",
	"datetime_original", "device_model", "gps_lat", "gps_lon",
}

// Scan walks the trip folder and records every image it finds. New photos
// become new records; photos already known get their scan columns refreshed,
// which leaves every enrichment column intact across re-scans.
type Scan struct {
	layout     *trip.Layout
	extensions map[string]struct{}
	readMeta   func(string) (exifmeta.Metadata, error)
	logger     *slog.Logger
}

// NewScan builds the scan stage. Extensions are matched case-insensitively
// against file suffixes.
func NewScan(layout *trip.Layout, extensions []string, logger *slog.Logger) *Scan {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return &Scan{
		layout:     layout,
		extensions: set,
		readMeta:   exifmeta.Extract,
		logger:     logging.NewComponentLogger(logger, "scan"),
	}
}

func (s *Scan) Name() string { return "scan" }

func (s *Scan) Columns() []string { return ScanColumns }

// Execute walks the trip folder, skipping the working directory, and emits
// one record per image. A photo that cannot be read is logged and skipped
// rather than failing the whole walk.
func (s *Scan) Execute(ctx context.Context, table *store.Table) (stage.Outcome, error) {
	outcome := stage.Outcome{Updates: make(map[string]map[string]string)}

	err := filepath.WalkDir(s.layout.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == trip.WorkDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := s.extensions[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(s.layout.Root, path)
		if err != nil {
			return err
		}
		identity := filepath.ToSlash(rel)

		fields, err := s.describe(path, d.Name())
		if err != nil {
			s.logger.Warn("unreadable photo skipped",
				logging.String(logging.FieldRecord, identity),
				logging.Error(err))
			outcome.Skipped++
			return nil
		}

		if _, known := table.Lookup(identity); known {
			outcome.Updates[identity] = fields
			return nil
		}
		rec := store.NewRecord(identity)
		for col, value := range fields {
			rec.Set(col, value)
		}
		outcome.Added = append(outcome.Added, rec)
		return nil
	})
	if err != nil {
		return stage.Outcome{}, services.Wrap(services.ErrResourceMissing, s.Name(), "walk trip folder", "", err)
	}
	return outcome, nil
}

func (s *Scan) describe(path, name string) (map[string]string, error) {
	sum, err := fileutil.MD5Sum(path)
	if err != nil {
		return nil, err
	}
	meta, err := s.readMeta(path)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"image_name":        name,
		"md5sum":            sum,
		"datetime_original": meta.DateTimeOriginal,
		"device_model":      meta.DeviceModel,
		"gps_lat":           meta.Lat,
		"gps_lon":           meta.Lon,
	}, nil
}
