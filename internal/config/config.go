package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoggingCfg struct {
	Level        string `yaml:"level" json:"level"`                 // trace, debug, info, warn, error
	Format       string `yaml:"format" json:"format"`               // console or json
	File         string `yaml:"file" json:"file"`                   // Empty disables the log file
	Console      bool   `yaml:"console" json:"console"`             // Mirror diagnostics to stderr
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type HistoryCfg struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	DatabasePath string `yaml:"database_path" json:"database_path"` // Path to SQLite database for deletion history
}

type MetricsCfg struct {
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"` // node_exporter textfile collector target, empty disables
}

type SafetyCfg struct {
	ProtectedPaths []string `yaml:"protected_paths" json:"protected_paths"` // Added to the built-in protected set
	AllowedRoots   []string `yaml:"allowed_roots" json:"allowed_roots"`     // Empty means no restriction
}

type Config struct {
	Color   string     `yaml:"color" json:"color"` // auto, always, never
	Logging LoggingCfg `yaml:"logging" json:"logging"`
	History HistoryCfg `yaml:"history" json:"history"`
	Metrics MetricsCfg `yaml:"metrics" json:"metrics"`
	Safety  SafetyCfg  `yaml:"safety" json:"safety"`
}

// Overrides carries values from global flags and COCO_* environment
// variables. Empty fields leave the file value untouched.
type Overrides struct {
	Color    string
	LogLevel string
}

// ErrInvalid is matched by every error Load and Apply return.
var ErrInvalid = errors.New("invalid configuration")

var (
	errInvalidPath     = errors.New("path must be absolute")
	errInvalidColor    = errors.New("color must be one of auto, always, never")
	errInvalidLevel    = errors.New("logging.level must be one of trace, debug, info, warn, error")
	errInvalidFormat   = errors.New("logging.format must be console or json")
	errNegativeDays    = errors.New("logging.rotation_days cannot be negative")
	errInvalidTextfile = errors.New("metrics.textfile_path must end in .prom")
)

var (
	colorModes = []string{"auto", "always", "never"}
	logLevels  = []string{"trace", "debug", "info", "warn", "error"}
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Color: "auto",
		Logging: LoggingCfg{
			Level:        "info",
			Format:       "console",
			RotationDays: 30,
		},
		History: HistoryCfg{Enabled: true},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open config: %w", ErrInvalid, err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when set. Without a path it reads the default
// location and falls back to DefaultConfig when that file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	defaultPath, err := DefaultPath()
	if err == nil {
		cfg, err := Load(defaultPath)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	cfg := DefaultConfig()
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalid, err)
	}
	return cfg, nil
}

// Apply layers overrides on top of the loaded file.
func (c *Config) Apply(o Overrides) error {
	if o.Color != "" {
		c.Color = o.Color
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	return c.validateAndDefault()
}

func (c *Config) validateAndDefault() error {
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	if c.Color == "" {
		c.Color = "auto"
	}
	if !slices.Contains(colorModes, c.Color) {
		return fmt.Errorf("%w: %w: %q", ErrInvalid, errInvalidColor, c.Color)
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		return fmt.Errorf("%w: %w: %q", ErrInvalid, errInvalidLevel, c.Logging.Level)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: %w: %q", ErrInvalid, errInvalidFormat, c.Logging.Format)
	}

	if c.Logging.RotationDays < 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errNegativeDays)
	}
	if c.Logging.RotationDays == 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	// Unresolvable XDG dirs (no HOME) leave the file log and history off
	dirs, dirsErr := GetXDGDirs()
	if c.Logging.File == "" && dirsErr == nil {
		c.Logging.File = filepath.Join(dirs.StateHome, "coco.log")
	}
	if c.History.DatabasePath == "" && dirsErr == nil {
		c.History.DatabasePath = filepath.Join(dirs.DataHome, "history.db")
	}

	var err error
	if c.Logging.File != "" {
		if c.Logging.File, err = cleanAbsolute(c.Logging.File); err != nil {
			return err
		}
	}
	if c.History.DatabasePath != "" {
		if c.History.DatabasePath, err = cleanAbsolute(c.History.DatabasePath); err != nil {
			return err
		}
	}
	if c.Metrics.TextfilePath != "" {
		if c.Metrics.TextfilePath, err = cleanAbsolute(c.Metrics.TextfilePath); err != nil {
			return err
		}
		if filepath.Ext(c.Metrics.TextfilePath) != ".prom" {
			return fmt.Errorf("%w: %w: %s", ErrInvalid, errInvalidTextfile, c.Metrics.TextfilePath)
		}
	}

	if c.Safety.ProtectedPaths, err = cleanAll(c.Safety.ProtectedPaths); err != nil {
		return err
	}
	if c.Safety.AllowedRoots, err = cleanAll(c.Safety.AllowedRoots); err != nil {
		return err
	}

	return nil
}

func cleanAll(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, cp)
	}
	return cleaned, nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalid, errInvalidPath)
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %w: %s", ErrInvalid, errInvalidPath, p)
	}
	return cp, nil
}
