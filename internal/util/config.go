package util

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Backends understood by store.OpenBackend.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds runtime settings. Environment first, cobra flags override.
type Config struct {
	Backend   string  `env:"SNAPPR_BACKEND" envDefault:"memory"`
	Path      string  `env:"SNAPPR_PATH" envDefault:"snappr.db"`
	DSN       string  `env:"DATABASE_URL"`
	SessionID string  `env:"SNAPPR_SESSION"`
	Compress  bool    `env:"SNAPPR_COMPRESS"`
	TimeScale float64 `env:"SNAPPR_TIME_SCALE" envDefault:"1"`
	Theme     string  `env:"SNAPPR_THEME" envDefault:"dark"` // dark|light
	SeedText  string  `env:"SNAPPR_SEED"`
	LogFile   string  `env:"SNAPPR_LOG_FILE" envDefault:"snappr.log"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Durable reports whether the backend keeps records after the process exits.
func (c Config) Durable() bool { return c.Backend != BackendMemory }

// Normalize fills defaults that depend on other fields and checks the rest.
func (c *Config) Normalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	switch c.Backend {
	case BackendMemory, BackendBolt, BackendSQLite:
	case BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("backend postgres needs DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if strings.TrimSpace(c.SessionID) == "" {
		c.SessionID = uuid.NewString()
	}
	if c.TimeScale < 0 {
		return fmt.Errorf("time scale must not be negative")
	}
	if c.TimeScale == 0 {
		c.TimeScale = 1
	}
	if c.SeedText == "" {
		c.SeedText = c.SessionID
	}
	switch c.Theme {
	case "dark", "light":
	default:
		c.Theme = "dark"
	}
	return nil
}
