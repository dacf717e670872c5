// Package config reads runtime settings from COLLOQUY_* environment variables.
// Command-line flags override whatever is loaded here.
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Snapshot backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds every environment-tunable setting.
type Config struct {
	LogLevel string `env:"COLLOQUY_LOG_LEVEL" envDefault:"info"`

	SnapshotBackend string        `env:"COLLOQUY_SNAPSHOT_BACKEND" envDefault:"none"`
	SnapshotDir     string        `env:"COLLOQUY_SNAPSHOT_DIR" envDefault:".colloquy/snapshots"`
	SnapshotKey     string        `env:"COLLOQUY_SNAPSHOT_KEY" envDefault:"default"`
	SnapshotSecret  string        `env:"COLLOQUY_SNAPSHOT_SECRET"`
	RedisAddr       string        `env:"COLLOQUY_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"COLLOQUY_REDIS_PASSWORD"`
	RedisDB         int           `env:"COLLOQUY_REDIS_DB" envDefault:"0"`
	RedisTTL        time.Duration `env:"COLLOQUY_REDIS_TTL" envDefault:"0s"`

	HTTPAddr   string `env:"COLLOQUY_HTTP_ADDR" envDefault:":8080"`
	StepBudget int    `env:"COLLOQUY_STEP_BUDGET" envDefault:"1000"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config and checks the values that have a closed set.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown snapshot backends, negative budgets and malformed secrets.
func (c Config) Validate() error {
	switch c.SnapshotBackend {
	case BackendNone, BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.SnapshotBackend)
	}
	if c.StepBudget < 0 {
		return fmt.Errorf("step budget cannot be negative: %d", c.StepBudget)
	}
	if _, err := c.SecretKey(); err != nil {
		return err
	}
	return nil
}

// SecretKey decodes SnapshotSecret, a hex-encoded AES-256 key.
// An empty secret yields nil: snapshots are stored in the clear.
func (c Config) SecretKey() ([]byte, error) {
	if c.SnapshotSecret == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.SnapshotSecret)
	if err != nil {
		return nil, fmt.Errorf("snapshot secret is not hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("snapshot secret must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
