// Package backup creates and rotates timestamped snapshots of a record store.
// A snapshot is taken before any stage writes to the store, so a failed stage
// is always recoverable from the most recent snapshot.
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"memograph/internal/fileutil"
	"memograph/internal/logging"
)

// Manager snapshots one store into a backups directory with a bounded
// retention count.
type Manager struct {
	dir       string
	retention int
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager builds a manager writing snapshots under dir, keeping at most
// retention snapshots per store.
func NewManager(dir string, retention int, logger *slog.Logger) *Manager {
	if retention < 1 {
		retention = 1
	}
	return &Manager{
		dir:       dir,
		retention: retention,
		logger:    logging.NewComponentLogger(logger, "backup"),
		now:       time.Now,
	}
}

// timestampLayout embeds a nanosecond-precision sortable timestamp in the
// snapshot name, so "newest N" never depends on filesystem clock resolution.
const timestampLayout = "20060102_150405.000000000"

// Snapshot copies the store into the backups directory and rotates old
// snapshots. Returns the snapshot path, or "" (no error) when the store does
// not exist yet.
func (m *Manager) Snapshot(storePath string) (string, error) {
	if _, err := os.Stat(storePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("no store to snapshot", logging.String("store", storePath))
			return "", nil
		}
		return "", fmt.Errorf("stat store: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backups directory: %w", err)
	}

	base := filepath.Base(storePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := fmt.Sprintf("%s_%s%s", stem, m.now().UTC().Format(timestampLayout), ext)
	target := filepath.Join(m.dir, name)

	if err := fileutil.CopyFile(storePath, target); err != nil {
		return "", fmt.Errorf("copy snapshot: %w", err)
	}
	m.logger.Info("snapshot created", logging.String("snapshot", target))

	m.rotate(stem, ext)
	return target, nil
}

// List returns the snapshot paths for the given store, newest first.
func (m *Manager) List(storePath string) ([]string, error) {
	base := filepath.Base(storePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return m.snapshots(stem, ext)
}

// rotate deletes every snapshot beyond the retention count, newest first.
// Deletion failures are logged, never fatal: a half-finished rotation must
// not abort the stage that triggered it.
func (m *Manager) rotate(stem, ext string) {
	snapshots, err := m.snapshots(stem, ext)
	if err != nil {
		m.logger.Warn("list snapshots for rotation", logging.Error(err))
		return
	}
	for _, extra := range snapshots[min(m.retention, len(snapshots)):] {
		if err := os.Remove(extra); err != nil {
			m.logger.Warn("delete old snapshot",
				logging.String("snapshot", extra),
				logging.Error(err))
			continue
		}
		m.logger.Debug("snapshot rotated out", logging.String("snapshot", extra))
	}
}

// snapshots lists matching snapshots sorted newest first. Names embed the
// creation timestamp, so a descending name sort is a descending time sort;
// modification time only breaks ties.
func (m *Manager) snapshots(stem, ext string) ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backups directory: %w", err)
	}

	type candidate struct {
		path  string
		name  string
		mtime time.Time
	}
	prefix := stem + "_"
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{
			path:  filepath.Join(m.dir, name),
			name:  name,
			mtime: info.ModTime(),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].name != found[j].name {
			return found[i].name > found[j].name
		}
		return found[i].mtime.After(found[j].mtime)
	})

	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths, nil
}
