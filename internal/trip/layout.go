// Package trip resolves the on-disk layout of one trip folder: the MemoGraph
// working directory with the record store, snapshots, logs, and exports.
package trip

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// WorkDirName is the dedicated working folder inside each trip.
	WorkDirName = "MemoGraph"

	logsDirName    = "logs"
	backupsDirName = "backups"
	outputsDirName = "outputs"
)

// Layout describes the working paths for one trip.
type Layout struct {
	Root      string // trip folder holding the photos
	WorkDir   string // <trip>/MemoGraph
	StorePath string // <trip>/MemoGraph/<file_name>
}

// Resolve builds the layout for the given trip folder. The trip folder must
// exist; the working directories are created on demand by Ensure.
func Resolve(root, storeFileName string) (*Layout, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("trip folder is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve trip folder: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("trip folder %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("trip folder %s is not a directory", abs)
	}

	if strings.TrimSpace(storeFileName) == "" {
		storeFileName = "labels.csv"
	}
	workDir := filepath.Join(abs, WorkDirName)
	return &Layout{
		Root:      abs,
		WorkDir:   workDir,
		StorePath: filepath.Join(workDir, storeFileName),
	}, nil
}

// Ensure creates the working directories for the trip.
func (l *Layout) Ensure() error {
	for _, dir := range []string{l.WorkDir, l.LogsDir(), l.BackupsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogsDir returns the per-trip log directory.
func (l *Layout) LogsDir() string {
	return filepath.Join(l.WorkDir, logsDirName)
}

// LogPath returns the log file for the named command or stage.
func (l *Layout) LogPath(name string) string {
	return filepath.Join(l.LogsDir(), name+".log")
}

// BackupsDir returns the snapshot directory for the store.
func (l *Layout) BackupsDir() string {
	return filepath.Join(l.WorkDir, backupsDirName)
}

// OutputsDir returns the directory query exports are written to.
func (l *Layout) OutputsDir() string {
	return filepath.Join(l.WorkDir, outputsDirName)
}

// Hint derives a human-readable trip name from the folder basename, used as
// the fallback location when geocoding is unavailable.
func (l *Layout) Hint() string {
	name := strings.ReplaceAll(filepath.Base(l.Root), "_", " ")
	return cases.Title(language.English, cases.NoLower).String(name)
}
