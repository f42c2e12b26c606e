// Package config loads marquee settings from defaults, a YAML file, a
// .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Common errors.
var (
	ErrMissingClientID = errors.New("SEATGEEK_CLIENT_ID is not set")
	ErrUnknownDriver   = errors.New("unknown storage driver")
)

// Config holds application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Paging  PagingConfig  `yaml:"paging"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig configures the SeatGeek client.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Timeout      time.Duration `yaml:"timeout"`
	RateLimit    float64       `yaml:"rate_limit"`
	RateBurst    int           `yaml:"rate_burst"`
}

// StorageConfig selects the favourites backend.
type StorageConfig struct {
	Driver  string `yaml:"driver"`
	DataDir string `yaml:"data_dir"`
}

// Path returns the database file for the configured driver. It is empty
// for the memory driver.
func (s StorageConfig) Path() string {
	switch s.Driver {
	case DriverBolt:
		return filepath.Join(s.DataDir, "marquee.db")
	case DriverSQLite:
		return filepath.Join(s.DataDir, "marquee.sqlite")
	}
	return ""
}

// PagingConfig tunes the infinite listings.
type PagingConfig struct {
	EventsPerPage int           `yaml:"events_per_page"`
	VenuesPerPage int           `yaml:"venues_per_page"`
	Debounce      time.Duration `yaml:"debounce"`
	Margin        int           `yaml:"margin"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "https://api.seatgeek.com/2",
			Timeout:   30 * time.Second,
			RateLimit: 5,
			RateBurst: 5,
		},
		Storage: StorageConfig{
			Driver:  DriverBolt,
			DataDir: "~/.marquee",
		},
		Paging: PagingConfig{
			EventsPerPage: 12,
			VenuesPerPage: 24,
			Debounce:      100 * time.Millisecond,
			Margin:        5,
		},
		Log: LogConfig{
			Level: "info",
			File:  "marquee.log",
		},
	}
}

// DefaultPath returns the config file location under the user config
// directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "marquee", "config.yaml")
}

// Load builds a Config. An explicit path must exist; the default path and
// env files are optional. With no env files, ".env" in the working
// directory is tried.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.Storage.DataDir = expandHome(cfg.Storage.DataDir)
	if cfg.Log.File != "" && !filepath.IsAbs(cfg.Log.File) {
		cfg.Log.File = filepath.Join(cfg.Storage.DataDir, cfg.Log.File)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.API.BaseURL = getenv("SEATGEEK_API_URL", c.API.BaseURL)
	c.API.ClientID = getenv("SEATGEEK_CLIENT_ID", c.API.ClientID)
	c.API.ClientSecret = getenv("SEATGEEK_CLIENT_SECRET", c.API.ClientSecret)
	c.Storage.Driver = getenv("MARQUEE_STORAGE", c.Storage.Driver)
	c.Storage.DataDir = getenv("MARQUEE_DATA_DIR", c.Storage.DataDir)
	c.Log.Level = getenv("MARQUEE_LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("MARQUEE_RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid MARQUEE_RATE_LIMIT %q: %w", v, err)
		}
		c.API.RateLimit = rps
	}
	return nil
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.ClientID) == "" {
		errs = append(errs, ErrMissingClientID)
	}
	switch c.Storage.Driver {
	case DriverBolt, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownDriver, c.Storage.Driver))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
