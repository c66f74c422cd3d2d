// Package config loads the interlinear TOML configuration.
//
// Lookup order when no path is given: ~/.config/interlinear/config.toml,
// then ./interlinear.toml. A missing file is not an error; defaults apply.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates token files, the audio file and on-disk state.
type Paths struct {
	AudioTokens  string `toml:"audio_tokens"`
	SourceTokens string `toml:"source_tokens"`
	AudioFile    string `toml:"audio_file"`
	JournalDB    string `toml:"journal_db"`
	LogFile      string `toml:"log_file"`
}

// Alignment controls commit policy and the initial click mode.
type Alignment struct {
	// RequireSource rejects alignments without source members.
	RequireSource bool   `toml:"require_source"`
	StartMode     string `toml:"start_mode"`
}

// Player selects and tunes the media collaborator.
type Player struct {
	Backend        string `toml:"backend"`
	MPVSocket      string `toml:"mpv_socket"`
	TickIntervalMs int    `toml:"tick_interval_ms"`
	SkipSeconds    int    `toml:"skip_seconds"`
}

// Logging configures the slog logger.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full configuration.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Alignment Alignment `toml:"alignment"`
	Player    Player    `toml:"player"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the per-user configuration path.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Path fields of
// the returned config are expanded and absolute.
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("interlinear.toml")
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

func (c *Config) normalize() error {
	var err error
	fields := []struct {
		name string
		ptr  *string
	}{
		{"paths.audio_tokens", &c.Paths.AudioTokens},
		{"paths.source_tokens", &c.Paths.SourceTokens},
		{"paths.audio_file", &c.Paths.AudioFile},
		{"paths.journal_db", &c.Paths.JournalDB},
		{"paths.log_file", &c.Paths.LogFile},
		{"player.mpv_socket", &c.Player.MPVSocket},
	}
	for _, f := range fields {
		if *f.ptr, err = expandPath(strings.TrimSpace(*f.ptr)); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}

	c.Alignment.StartMode = strings.ToLower(strings.TrimSpace(c.Alignment.StartMode))
	c.Player.Backend = strings.ToLower(strings.TrimSpace(c.Player.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}

// EnsureDirectories creates the parent directories of on-disk state.
func (c *Config) EnsureDirectories() error {
	for _, p := range []string{c.Paths.JournalDB, c.Paths.LogFile} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", p, err)
		}
	}
	return nil
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

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to path.
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
