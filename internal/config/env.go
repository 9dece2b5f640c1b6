package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Store backends for the round ledger.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Runtime holds process settings shared by the binaries. Flags in cmd
// binaries default to these values.
type Runtime struct {
	Addr          string        `env:"SYMULATOR_ADDR" envDefault:":8080"`
	CatalogPath   string        `env:"SYMULATOR_CATALOG"`
	Seed          int64         `env:"SYMULATOR_SEED"`
	Cooldown      time.Duration `env:"SYMULATOR_COOLDOWN" envDefault:"1s"`
	AutoRoundCron string        `env:"SYMULATOR_AUTO_ROUND_CRON"`
	ClampPenalty  bool          `env:"SYMULATOR_CLAMP_PENALTY"`
	Store         string        `env:"SYMULATOR_STORE" envDefault:"memory"`
	PostgresDSN   string        `env:"SYMULATOR_POSTGRES_DSN"`
	SQLitePath    string        `env:"SYMULATOR_SQLITE_PATH" envDefault:"data/symulator.db"`
	ClickHouseDSN string        `env:"SYMULATOR_CLICKHOUSE_DSN"`
}

// LoadRuntime parses Runtime from the environment and validates it.
func LoadRuntime() (*Runtime, error) {
	cfg := &Runtime{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the store selection and its DSN.
func (r *Runtime) Validate() error {
	switch r.Store {
	case StoreMemory:
	case StorePostgres:
		if r.PostgresDSN == "" {
			return fmt.Errorf("postgres store requires SYMULATOR_POSTGRES_DSN")
		}
	case StoreSQLite:
		if r.SQLitePath == "" {
			return fmt.Errorf("sqlite store requires SYMULATOR_SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown store %q", r.Store)
	}
	if r.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	return nil
}

// LoadCatalogOrDefault loads the catalog at path, or the built-in catalog
// when path is empty.
func LoadCatalogOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalog(path)
}
