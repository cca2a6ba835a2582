// Package config loads the immutable libris configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultListenAddr   = "localhost:5055"
	DefaultMaxBooks     = 15
	DefaultRentDays     = 14
	DefaultDisplayLimit = 4
	DefaultDBPath       = "libris.db"
	DefaultMaxConns     = 4
)

// DBConfig holds catalog/loan store settings.
type DBConfig struct {
	// Path to the SQLite database file.
	Path string `yaml:"path"`
	// MaxConns is the maximum number of open connections.
	MaxConns int `yaml:"max_conns"`
}

// ResolverConfig holds candidate-resolver behavior switches.
type ResolverConfig struct {
	// TitlePrecedence keeps the original behavior where a uniquely matching
	// title wins even when the record does not contain a requested author.
	TitlePrecedence bool `yaml:"title_precedence"`
}

// Config is the top-level configuration, loaded once at startup and passed
// into each component at construction.
type Config struct {
	ListenAddr   string         `yaml:"listen_addr"`
	MaxBooks     int            `yaml:"max_books"`
	RentDays     int            `yaml:"rent_days"`
	DisplayLimit int            `yaml:"display_limit"`
	DB           DBConfig       `yaml:"db"`
	Resolver     ResolverConfig `yaml:"resolver"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		MaxBooks:     DefaultMaxBooks,
		RentDays:     DefaultRentDays,
		DisplayLimit: DefaultDisplayLimit,
		DB: DBConfig{
			Path:     DefaultDBPath,
			MaxConns: DefaultMaxConns,
		},
		Resolver: ResolverConfig{
			TitlePrecedence: true,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxBooks <= 0 {
		return fmt.Errorf("max_books must be positive, got %d", c.MaxBooks)
	}
	if c.RentDays <= 0 {
		return fmt.Errorf("rent_days must be positive, got %d", c.RentDays)
	}
	if c.DisplayLimit <= 0 {
		return fmt.Errorf("display_limit must be positive, got %d", c.DisplayLimit)
	}
	return nil
}
