package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Workouts  WorkoutsConfig  `yaml:"workouts"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// WorkoutsConfig holds the settings of the workout log itself.
type WorkoutsConfig struct {
	// Dir is the directory holding YYYY-MM-DD*.gym files.
	Dir string `yaml:"dir"`
	// UnitSystem is "imperial" (lb) or "metric" (kg). It is the unit
	// assumed for bare weights.
	UnitSystem string `yaml:"unit_system"`
	// E1RMFormula is "brzycki" or "epley".
	E1RMFormula string `yaml:"e1rm_formula"`
}

// DefaultWeightUnit is the unit bare weights are assumed to be in.
func (w WorkoutsConfig) DefaultWeightUnit() string {
	if w.UnitSystem == "metric" {
		return "kg"
	}
	return "lb"
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Tailscale: TailscaleConfig{
			Hostname: "gymlog",
			StateDir: "tsnet-state",
		},
		Workouts: WorkoutsConfig{
			Dir:         "./workouts",
			UnitSystem:  "imperial",
			E1RMFormula: "brzycki",
		},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix GYMLOG_ and underscore-separated paths:
//
//	GYMLOG_SERVER_HOST, GYMLOG_SERVER_PORT,
//	GYMLOG_DB_HOST, GYMLOG_DB_PORT, GYMLOG_DB_NAME,
//	GYMLOG_DB_USER, GYMLOG_DB_PASSWORD, GYMLOG_DB_SSLMODE,
//	GYMLOG_AUTH_API_KEY, GYMLOG_TAILSCALE_ENABLED,
//	GYMLOG_WORKOUTS_DIR, GYMLOG_UNIT_SYSTEM, GYMLOG_E1RM_FORMULA
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadOptional is Load for the local CLI: a missing file means defaults, and
// only the workouts section is validated.
func LoadOptional(path string) (*Config, error) {
	cfg, err := read(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		applyEnvOverrides(cfg)
	} else if err != nil {
		return nil, err
	}
	if err := cfg.Workouts.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GYMLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GYMLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GYMLOG_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("GYMLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("GYMLOG_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("GYMLOG_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("GYMLOG_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("GYMLOG_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("GYMLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("GYMLOG_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("GYMLOG_WORKOUTS_DIR"); v != "" {
		cfg.Workouts.Dir = v
	}
	if v := os.Getenv("GYMLOG_UNIT_SYSTEM"); v != "" {
		cfg.Workouts.UnitSystem = v
	}
	if v := os.Getenv("GYMLOG_E1RM_FORMULA"); v != "" {
		cfg.Workouts.E1RMFormula = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return c.Workouts.validate()
}

func (w WorkoutsConfig) validate() error {
	switch w.UnitSystem {
	case "imperial", "metric":
	default:
		return fmt.Errorf("workouts.unit_system must be imperial or metric, got %q", w.UnitSystem)
	}
	switch w.E1RMFormula {
	case "brzycki", "epley":
	default:
		return fmt.Errorf("workouts.e1rm_formula must be brzycki or epley, got %q", w.E1RMFormula)
	}
	return nil
}
