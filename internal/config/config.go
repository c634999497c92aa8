package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all patient-intake-service settings.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Form     FormConfig     `yaml:"form"`
	Events   EventsConfig   `yaml:"events"`
}

type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	RequestTimeout string `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // postgres | sqlite
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// FormConfig controls how the intake form validates input.
type FormConfig struct {
	EmailRule string `yaml:"email_rule"` // strict | non_empty
}

type EventsConfig struct {
	Workers int `yaml:"workers"`
	Buffer  int `yaml:"buffer"`
}

// DefaultConfig returns a config that runs locally against sqlite.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":8080",
			RequestTimeout: "30s",
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "patients.db",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Form: FormConfig{
			EmailRule: "strict",
		},
		Events: EventsConfig{
			Workers: 4,
			Buffer:  100,
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PATIENT_INTAKE_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("PATIENT_INTAKE_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("PATIENT_INTAKE_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("PATIENT_INTAKE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PATIENT_INTAKE_EVENT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PATIENT_INTAKE_EVENT_WORKERS: %w", err)
		}
		c.Events.Workers = n
	}
	return nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch c.Form.EmailRule {
	case "strict", "non_empty":
	default:
		return fmt.Errorf("form.email_rule must be strict or non_empty, got %q", c.Form.EmailRule)
	}
	if c.Events.Workers < 1 {
		return fmt.Errorf("events.workers must be at least 1")
	}
	if c.Events.Buffer < 0 {
		return fmt.Errorf("events.buffer cannot be negative")
	}
	return nil
}
