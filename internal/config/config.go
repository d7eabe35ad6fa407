// Package config loads the server and CLI configuration from an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/devtier/capability"
)

type Config struct {
	Server   ServerConfig              `yaml:"server"`
	Store    StoreConfig               `yaml:"store"`
	Admin    AdminConfig               `yaml:"admin"`
	Throttle capability.ThrottleConfig `yaml:"throttle"`
}

type ServerConfig struct {
	Port    string `yaml:"port"`
	SiteDir string `yaml:"site_dir"`
}

type StoreConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Retention is the age after which stored reports are purged.
func (s StoreConfig) Retention() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when no file or variable sets a
// value.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: "8080", SiteDir: "./out"},
		Store:    StoreConfig{Path: "devtier.db", RetentionDays: 365},
		Admin:    AdminConfig{Username: "admin", Password: "admin123"},
		Throttle: capability.DefaultThrottleConfig(),
	}
}

// Load reads path, expanding ${VAR} references, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: load: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Server.Port)
	str("SITE_DIR", &c.Server.SiteDir)
	str("DB_PATH", &c.Store.Path)
	str("ADMIN_USERNAME", &c.Admin.Username)
	str("ADMIN_PASSWORD", &c.Admin.Password)

	if v, ok := lookup("RETENTION_DAYS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: RETENTION_DAYS: %w", err)
		}
		c.Store.RetentionDays = n
	}
	if v, ok := lookup("THROTTLE_RATIO"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: THROTTLE_RATIO: %w", err)
		}
		c.Throttle.Ratio = f
	}
	if v, ok := lookup("THROTTLE_ITERATIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: THROTTLE_ITERATIONS: %w", err)
		}
		c.Throttle.Iterations = n
	}
	return nil
}

// Validate checks the loaded configuration for values the server cannot run
// with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("config: server port is required"))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("config: store path is required"))
	}
	if c.Store.RetentionDays <= 0 {
		errs = append(errs, fmt.Errorf("config: retention_days must be positive, got %d", c.Store.RetentionDays))
	}
	if c.Throttle.Ratio <= 1 {
		errs = append(errs, fmt.Errorf("config: throttle ratio must be greater than 1, got %g", c.Throttle.Ratio))
	}
	if c.Throttle.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("config: throttle iterations must be positive, got %d", c.Throttle.Iterations))
	}
	if c.Throttle.Repetitions < 2 {
		errs = append(errs, fmt.Errorf("config: throttle repetitions must be at least 2, got %d", c.Throttle.Repetitions))
	}
	return errors.Join(errs...)
}

// UsesDefaultAdmin reports whether the admin credentials were never changed.
func (c Config) UsesDefaultAdmin() bool {
	d := Default().Admin
	return c.Admin.Username == d.Username || c.Admin.Password == d.Password
}
