package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/youruser/deckbuilder/internal/cards"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port    string `toml:"port" env:"PORT"`
	BaseURL string `toml:"base_url" env:"DECKBUILDER_BASE_URL"` // Page that share links point to
	QRSize  int    `toml:"qr_size" env:"DECKBUILDER_QR_SIZE"`
}

// CatalogConfig contains catalog ingestion settings.
type CatalogConfig struct {
	DataDir      string         `toml:"data_dir" env:"DECKBUILDER_DATA_DIR"` // Used when Sources is empty
	Sources      []cards.Source `toml:"sources"`
	FetchTimeout string         `toml:"fetch_timeout" env:"DECKBUILDER_FETCH_TIMEOUT"` // e.g. "12s"
	FetchEvery   string         `toml:"fetch_every" env:"DECKBUILDER_FETCH_EVERY"`     // Min gap between remote fetches
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level       string `toml:"level" env:"LOG_LEVEL"`
	Development bool   `toml:"development" env:"LOG_DEVELOPMENT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8080",
			BaseURL: "http://localhost:8080/",
			QRSize:  400,
		},
		Catalog: CatalogConfig{
			DataDir:      "data",
			FetchTimeout: "12s",
			FetchEvery:   "100ms",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path on top of the defaults and then applies
// environment overrides. An empty path or a missing file leaves the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.QRSize < 64 || c.Server.QRSize > 2048 {
		return fmt.Errorf("qr size %d out of range [64, 2048]", c.Server.QRSize)
	}
	if _, err := time.ParseDuration(c.Catalog.FetchTimeout); err != nil {
		return fmt.Errorf("invalid fetch timeout %q: %w", c.Catalog.FetchTimeout, err)
	}
	if _, err := time.ParseDuration(c.Catalog.FetchEvery); err != nil {
		return fmt.Errorf("invalid fetch interval %q: %w", c.Catalog.FetchEvery, err)
	}
	for i, s := range c.Catalog.Sources {
		if _, err := cards.ParseFaction(string(s.Faction)); err != nil {
			return fmt.Errorf("catalog source %d: %w", i, err)
		}
		if s.Location == "" {
			return fmt.Errorf("catalog source %d: location is required", i)
		}
	}
	return nil
}

// CatalogSources returns the configured sources, or the per-faction files of
// the data directory when none are listed.
func (c *Config) CatalogSources() []cards.Source {
	if len(c.Catalog.Sources) > 0 {
		return c.Catalog.Sources
	}
	return cards.SourcesFromDataDir(c.Catalog.DataDir)
}

// FetchTimeout returns the per-source fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Catalog.FetchTimeout)
	return d
}

// FetchEvery returns the minimum gap between remote fetches.
func (c *Config) FetchEvery() time.Duration {
	d, _ := time.ParseDuration(c.Catalog.FetchEvery)
	return d
}
