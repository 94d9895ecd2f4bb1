// Package config provides configuration loading for zk-spaced.
package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/matze/zk-spaced/internal/cards"
	"github.com/matze/zk-spaced/internal/store"
)

// Config holds all settings read from the config file and the environment.
type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Input   InputConfig   `koanf:"input"`
	Log     LogConfig     `koanf:"log"`
}

// StorageConfig selects where review state is kept.
type StorageConfig struct {
	Path    string `koanf:"path"`    // empty means the XDG data default
	Backend string `koanf:"backend"` // auto, json or sqlite
}

// InputConfig describes where cards come from when no flag overrides it.
type InputConfig struct {
	Format  string `koanf:"format"`  // json or yaml, for card lists
	Notes   string `koanf:"notes"`   // notes directory; empty reads a card list
	Pattern string `koanf:"pattern"` // glob below Notes
}

// LogConfig configures the file logger.
type LogConfig struct {
	File  string `koanf:"file"` // empty disables logging
	Level string `koanf:"level"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = store.KindAuto
	}
	if cfg.Input.Format == "" {
		cfg.Input.Format = string(cards.FormatJSON)
	}
	if cfg.Input.Pattern == "" {
		cfg.Input.Pattern = cards.DefaultPattern
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case store.KindAuto, store.KindJSON, store.KindSQLite:
	default:
		return fmt.Errorf("invalid storage backend: %q (must be auto, json or sqlite)", c.Storage.Backend)
	}

	if _, err := cards.ParseFormat(c.Input.Format); err != nil {
		return err
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}
