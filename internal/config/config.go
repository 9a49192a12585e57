package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata" // display zones resolve without a system zoneinfo

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its configuration file.
const DefaultPath = "adminfin.yaml"

// Config represents the top-level adminfin.yaml configuration.
type Config struct {
	API       APIConfig     `yaml:"api"`
	Display   DisplayConfig `yaml:"display"`
	Log       LogConfig     `yaml:"log"`
	LaunchLog string        `yaml:"launch_log"`
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`       // 0 = no timeout
	IndexTimeout time.Duration `yaml:"index_timeout"` // applies to POST /api/rag/index only
}

// DisplayConfig controls how timestamps are rendered.
type DisplayConfig struct {
	Timezone string `yaml:"timezone"`
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns a Config pointing at a local backend.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:5000",
			Timeout:      30 * time.Second,
			IndexTimeout: 10 * time.Minute,
		},
		Display: DisplayConfig{
			Timezone: "America/Sao_Paulo",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		LaunchLog: "logs/launches.csv",
	}
}

// Load reads an adminfin.yaml file from disk. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Environment variables that override the file.
const (
	EnvAPIURL     = "ADMINFIN_API_URL"
	EnvAPITimeout = "ADMINFIN_API_TIMEOUT"
	EnvTimezone   = "ADMINFIN_TIMEZONE"
	EnvLogLevel   = "ADMINFIN_LOG_LEVEL"
)

// ApplyEnv loads ./.env when present (real environment variables win) and
// overlays the ADMINFIN_* variables onto cfg.
func (cfg *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.API.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvAPITimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvAPITimeout, err)
		}
		cfg.API.Timeout = d
	}
	if v, ok := os.LookupEnv(EnvTimezone); ok && v != "" {
		cfg.Display.Timezone = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	return cfg.Validate()
}

// Validate rejects settings that would otherwise be ignored at use time.
func (cfg *Config) Validate() error {
	if tz := cfg.Display.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("display timezone %q: %w", tz, err)
		}
	}
	return nil
}

// Location resolves the display timezone. An empty zone means the local one.
func (cfg *Config) Location() *time.Location {
	if cfg.Display.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
