package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"memograph/internal/backup"
	"memograph/internal/config"
	"memograph/internal/logging"
	"memograph/internal/store"
	"memograph/internal/trip"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// openTrip resolves the trip layout and creates the working directories.
func (c *commandContext) openTrip(root string) (*trip.Layout, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	layout, err := trip.Resolve(root, cfg.Store.FileName)
	if err != nil {
		return nil, err
	}
	if err := layout.Ensure(); err != nil {
		return nil, err
	}
	return layout, nil
}

// runLogger builds the logger for one command invocation, appending to the
// per-trip log file when configured.
func (c *commandContext) runLogger(layout *trip.Layout, name string) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logPath := ""
	if cfg.Logging.ToFile {
		logPath = layout.LogPath(name)
	}
	return logging.NewForRun(cfg.Logging.Level, cfg.Logging.Format, logPath)
}

// openStore binds the record store and snapshot manager for a trip.
func (c *commandContext) openStore(layout *trip.Layout, logger *slog.Logger) (*store.Store, *backup.Manager) {
	cfg := c.configValue()
	st := store.New(layout.StorePath, cfg.Store.RequiredColumns, logger)
	backups := backup.NewManager(layout.BackupsDir(), cfg.Backups.RetentionCount, logger)
	return st, backups
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
