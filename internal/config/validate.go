package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.AudioTokens == "" {
		return errors.New("paths.audio_tokens must be set")
	}
	if c.Paths.SourceTokens == "" {
		return errors.New("paths.source_tokens must be set")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	switch c.Alignment.StartMode {
	case "select", "jump":
		return nil
	default:
		return fmt.Errorf("alignment.start_mode must be select or jump, got %q", c.Alignment.StartMode)
	}
}

func (c *Config) validatePlayer() error {
	switch c.Player.Backend {
	case "clock":
	case "mpv":
		if c.Player.MPVSocket == "" {
			return errors.New("player.mpv_socket is required for the mpv backend")
		}
	default:
		return fmt.Errorf("player.backend must be clock or mpv, got %q", c.Player.Backend)
	}
	if c.Player.TickIntervalMs < 10 || c.Player.TickIntervalMs > 1000 {
		return errors.New("player.tick_interval_ms must be between 10 and 1000")
	}
	if c.Player.SkipSeconds <= 0 {
		return errors.New("player.skip_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
