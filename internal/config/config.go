// Package config reads CLI defaults from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-provided defaults for CLI flags. Flags given
// on the command line always win.
type Config struct {
	DB           string `env:"BATTLE_DB"`
	FPS          int    `env:"BATTLE_FPS"           envDefault:"30"`
	MaxFrames    int64  `env:"BATTLE_MAX_FRAMES"    envDefault:"0"`
	HistoryLimit int    `env:"BATTLE_HISTORY_LIMIT" envDefault:"0"`
	Format       string `env:"BATTLE_FORMAT"        envDefault:"text"`
}

// Default is the configuration with no environment set.
func Default() Config {
	return Config{FPS: 30, Format: "text"}
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.FPS < 0 {
		return Config{}, fmt.Errorf("BATTLE_FPS must not be negative, got %d", cfg.FPS)
	}
	if cfg.MaxFrames < 0 {
		return Config{}, fmt.Errorf("BATTLE_MAX_FRAMES must not be negative, got %d", cfg.MaxFrames)
	}
	if cfg.HistoryLimit < 0 {
		return Config{}, fmt.Errorf("BATTLE_HISTORY_LIMIT must not be negative, got %d", cfg.HistoryLimit)
	}
	return cfg, nil
}
