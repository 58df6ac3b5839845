package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"meter-billing/internal/store"
	"meter-billing/internal/store/csvfile"
	"meter-billing/internal/store/sqlite"
)

// Config is the on-disk application configuration shape (YAML).
type Config struct {
	Data    DataConfig   `yaml:"data"`
	Tariffs string       `yaml:"tariffs"` // path to the tariff YAML
	Import  ImportConfig `yaml:"import"`
}

type DataConfig struct {
	// Backend selects the canonical dataset backend: "csv" (default) or
	// "sqlite".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type ImportConfig struct {
	// StepMinutes is the interval length used to derive the next import
	// start from the last stored entry. Defaults to 30.
	StepMinutes int `yaml:"step_minutes"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.Data.Backend == "" {
		c.Data.Backend = "csv"
	}
	if c.Import.StepMinutes == 0 {
		c.Import.StepMinutes = 30
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return errors.New("data.path is required")
	}
	if c.Data.Backend != "csv" && c.Data.Backend != "sqlite" {
		return fmt.Errorf("data.backend must be \"csv\" or \"sqlite\", got %q", c.Data.Backend)
	}
	if c.Tariffs == "" {
		return errors.New("tariffs is required")
	}
	if c.Import.StepMinutes < 0 {
		return errors.New("import.step_minutes must be >= 0")
	}
	return nil
}

// Step returns the configured interval step.
func (c *Config) Step() time.Duration {
	return time.Duration(c.Import.StepMinutes) * time.Minute
}

// OpenStore opens the configured dataset backend.
func (c *Config) OpenStore() (store.Store, error) {
	switch c.Data.Backend {
	case "sqlite":
		return sqlite.New(c.Data.Path)
	default:
		return csvfile.New(c.Data.Path), nil
	}
}
