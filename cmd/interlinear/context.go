package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/interlinear/internal/config"
	"github.com/Mr-Dark-debug/interlinear/internal/database"
	"github.com/Mr-Dark-debug/interlinear/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
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
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// withStore opens the alignment journal for the duration of fn.
func (c *commandContext) withStore(fn func(*database.DBService) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := database.NewDBService(cfg.Paths.JournalDB)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", cfg.Paths.JournalDB, err)
	}
	defer store.Close()
	return fn(store)
}

// fileLogger returns the logger for commands that own the terminal. Logs
// are discarded when no log file is configured.
func (c *commandContext) fileLogger() (*slog.Logger, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Paths.LogFile == "" {
		return slog.New(slog.DiscardHandler), io.NopCloser(nil), nil
	}
	return logging.NewFile(cfg.Paths.LogFile, cfg.Logging.Format, cfg.Logging.Level)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
