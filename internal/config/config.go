// Package config provides configuration loading for ecosim.
//
// Values are layered: embedded defaults, then the YAML file, then ECOSIM_*
// environment variables (optionally seeded from a .env file), then
// command-line overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/talgya/ecosim/internal/climate"
	"github.com/talgya/ecosim/internal/persistence"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Storage backends.
const (
	BackendText   = "text"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Environment variables that override file values.
const (
	EnvDataDir    = "ECOSIM_DATA_DIR"
	EnvBackend    = "ECOSIM_BACKEND"
	EnvSQLitePath = "ECOSIM_SQLITE_PATH"
	EnvLogLevel   = "ECOSIM_LOG_LEVEL"
)

// ErrDataDirNotSet is returned when no data directory is configured.
var ErrDataDirNotSet = errors.New("data directory not set")

// Config holds all ecosim configuration.
type Config struct {
	DataDir    string `yaml:"data_dir"`
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
	LogLevel   string `yaml:"log_level"`

	Files   FilesConfig   `yaml:"files"`
	Climate ClimateConfig `yaml:"climate"`
}

// FilesConfig names the per-ecosystem files of the text backend.
type FilesConfig struct {
	Plants       string `yaml:"plants"`
	Animals      string `yaml:"animals"`
	Interactions string `yaml:"interactions"`
	Resources    string `yaml:"resources"`
}

// ClimateConfig holds noise parameters for generated conditions.
type ClimateConfig struct {
	Octaves     int         `yaml:"octaves"`
	Frequency   float64     `yaml:"frequency"`
	Persistence float64     `yaml:"persistence"`
	Temperature RangeConfig `yaml:"temperature"`
	Humidity    RangeConfig `yaml:"humidity"`
	Water       RangeConfig `yaml:"water"`
}

// RangeConfig is a closed numeric interval.
type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("parsing embedded defaults: %v", err))
	}
	return cfg
}

// Overrides are command-line values. Empty fields leave the loaded value alone.
type Overrides struct {
	DataDir  string
	Backend  string
	LogLevel string
}

// Load reads configuration from a YAML file merged over the embedded
// defaults, then applies environment variables and o, and validates the
// result. If path is empty, only defaults, environment and o are used.
func Load(path string, o Overrides) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Debug("environment file loaded", "path", path)
	return nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvBackend); ok && v != "" {
		c.Backend = v
	}
	if v, ok := os.LookupEnv(EnvSQLitePath); ok && v != "" {
		c.SQLitePath = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}

func (c *Config) apply(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Backend != "" {
		c.Backend = o.Backend
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return ErrDataDirNotSet
	}
	switch c.Backend {
	case BackendText, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want text, sqlite or memory)", c.Backend)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	f := c.Files
	if f.Plants == "" || f.Animals == "" || f.Interactions == "" || f.Resources == "" {
		return errors.New("all files.* names must be set")
	}
	return nil
}

// DatabasePath returns the SQLite file path, defaulting to a file inside
// the data directory.
func (c *Config) DatabasePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "ecosim.db")
}

// FileNames maps the files section onto the text store's layout.
func (c *Config) FileNames() persistence.FileNames {
	return persistence.FileNames{
		Plants:       c.Files.Plants,
		Animals:      c.Files.Animals,
		Interactions: c.Files.Interactions,
		Resources:    c.Files.Resources,
	}
}

// GenConfig returns climate generation parameters for seed.
func (c *Config) GenConfig(seed int64) climate.GenConfig {
	cc := c.Climate
	return climate.GenConfig{
		Seed:        seed,
		Octaves:     cc.Octaves,
		Frequency:   cc.Frequency,
		Persistence: cc.Persistence,
		Temperature: climate.Range{Min: cc.Temperature.Min, Max: cc.Temperature.Max},
		Humidity:    climate.Range{Min: cc.Humidity.Min, Max: cc.Humidity.Max},
		Water:       climate.Range{Min: cc.Water.Min, Max: cc.Water.Max},
	}
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}
