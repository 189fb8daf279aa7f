// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/notecal/internal/scheduler"
	"github.com/javiermolinar/notecal/internal/source"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Calendar CalendarConfig `toml:"calendar"`
	Source   SourceConfig   `toml:"source"`
	UI       UIConfig       `toml:"ui"`
}

// ScheduleConfig holds the slot template and deadline handling.
type ScheduleConfig struct {
	Slots          []string `toml:"slots"`           // e.g., ["09:00-11:00", "11:00-13:00"]
	StrictDeadline bool     `toml:"strict_deadline"` // only use slots ending by the deadline
	Timezone       string   `toml:"timezone"`        // IANA name, empty for local time
}

// CalendarConfig holds calendar rendering settings.
type CalendarConfig struct {
	Colors []string `toml:"colors"` // "#RRGGBB", cycled across groups
}

// SourceConfig holds where item records are read from.
type SourceConfig struct {
	Kind  string `toml:"kind"` // "file", "sqlite", or empty to infer from path
	Path  string `toml:"path"`
	Table string `toml:"table"` // sqlite only
}

// UIConfig holds terminal output settings.
type UIConfig struct {
	Color string `toml:"color"` // "auto", "always", "never"
}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			Slots: scheduler.DefaultTemplate().Strings(),
		},
		Calendar: CalendarConfig{
			Colors: append([]string(nil), scheduler.DefaultColors...),
		},
		Source: SourceConfig{
			Path:  defaultSourcePath(),
			Table: source.DefaultTable,
		},
		UI: UIConfig{
			Color: ColorAuto,
		},
	}
}

// defaultSourcePath returns the default items file path.
func defaultSourcePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "items.toml"
	}
	return filepath.Join(home, ".local", "share", "notecal", "items.toml")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "notecal", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Source.Path = expandPath(cfg.Source.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NOTECAL_SLOTS"); v != "" {
		cfg.Schedule.Slots = splitList(v)
	}
	if v := os.Getenv("NOTECAL_STRICT_DEADLINE"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing NOTECAL_STRICT_DEADLINE: %w", err)
		}
		cfg.Schedule.StrictDeadline = strict
	}
	if v := os.Getenv("NOTECAL_TIMEZONE"); v != "" {
		cfg.Schedule.Timezone = v
	}
	if v := os.Getenv("NOTECAL_COLORS"); v != "" {
		cfg.Calendar.Colors = splitList(v)
	}

	if v := os.Getenv("NOTECAL_SOURCE_KIND"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("NOTECAL_SOURCE_PATH"); v != "" {
		cfg.Source.Path = v
	}
	if v := os.Getenv("NOTECAL_SOURCE_TABLE"); v != "" {
		cfg.Source.Table = v
	}

	if v := os.Getenv("NOTECAL_UI_COLOR"); v != "" {
		cfg.UI.Color = v
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Template(); err != nil {
		return fmt.Errorf("slots: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if len(c.Calendar.Colors) == 0 {
		return errors.New("at least one calendar color must be configured")
	}
	for _, col := range c.Calendar.Colors {
		if !hexColor.MatchString(col) {
			return fmt.Errorf("invalid color %q, want #RRGGBB", col)
		}
	}

	switch strings.ToLower(c.Source.Kind) {
	case "", source.KindFile, source.KindSQLite:
	default:
		return fmt.Errorf("invalid source kind: %s", c.Source.Kind)
	}
	if c.Source.Path == "" {
		return errors.New("source path must be set")
	}

	switch c.UI.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("ui color must be auto, always or never, got %q", c.UI.Color)
	}
	return nil
}

// Template parses the configured slots.
func (c *Config) Template() (scheduler.Template, error) {
	return scheduler.ParseTemplate(c.Schedule.Slots)
}

// Location returns the configured time zone, or time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// SchedulerOptions returns the scheduler options described by the config.
func (c *Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		StrictDeadline: c.Schedule.StrictDeadline,
		Colors:         append([]string(nil), c.Calendar.Colors...),
	}
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
