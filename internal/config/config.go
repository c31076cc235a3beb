// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/SeamusWaldron/cubetac/internal/storage"
)

// Config holds every CUBETAC_ setting.
type Config struct {
	DBPath           string        `env:"CUBETAC_DB_PATH"`
	Record           bool          `env:"CUBETAC_RECORD" envDefault:"true"`
	RotationDuration time.Duration `env:"CUBETAC_ROTATION_DURATION" envDefault:"400ms"`
	FrameInterval    time.Duration `env:"CUBETAC_FRAME_INTERVAL" envDefault:"16ms"`
	ListenAddr       string        `env:"CUBETAC_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	AllowedOrigin    string        `env:"CUBETAC_ALLOWED_ORIGIN"`
	LogLevel         string        `env:"CUBETAC_LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"CUBETAC_LOG_FORMAT" envDefault:"console"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the given dotenv files (default ".env"), then the environment.
// Missing dotenv files are ignored; variables already set win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that the parser cannot.
func (c *Config) Validate() error {
	if c.RotationDuration < 0 {
		return fmt.Errorf("CUBETAC_ROTATION_DURATION must not be negative, got %s", c.RotationDuration)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("CUBETAC_FRAME_INTERVAL must be positive, got %s", c.FrameInterval)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("CUBETAC_LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// DatabasePath returns DBPath, falling back to the default location.
func (c *Config) DatabasePath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return storage.DefaultDBPath()
}
