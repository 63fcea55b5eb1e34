// Package config loads catalog4go settings from defaults, an optional YAML
// file and the environment, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ammar0144/catalog4go/pkg/authz"
	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/logging"
	"github.com/ammar0144/catalog4go/pkg/reaper"
	"github.com/ammar0144/catalog4go/pkg/redis"

	"github.com/go-playground/validator/v10"
)

// Config is the complete catalog4go configuration
type Config struct {
	Database db.Config          `yaml:"database"`
	Redis    redis.Config       `yaml:"redis"`
	Media    reaper.Directories `yaml:"media"`
	Security SecurityConfig     `yaml:"security"`
	Sweep    SweepConfig        `yaml:"sweep"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// SweepConfig controls the standalone orphan sweep
type SweepConfig struct {
	// LockFile keeps two sweeps from running at once
	LockFile string `yaml:"lock_file" validate:"required"`
}

// SecurityConfig configures who may delete titles
type SecurityConfig struct {
	Casbin authz.Config `yaml:"casbin"`

	// JWTSecret verifies bearer tokens. Empty disables token sessions; once set,
	// the CLI no longer accepts a self-asserted --identity/--role.
	JWTSecret      string        `yaml:"jwt_secret"`
	SessionTimeout time.Duration `yaml:"session_timeout" validate:"gte=0"`
}

// LoggingConfig mirrors logging.Config without the output writer
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `yaml:"caller"`
}

// Logging converts the section to a logging.Config writing to stderr
func (l LoggingConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	if l.Level != "" {
		cfg.Level = l.Level
	}
	if l.Format != "" {
		cfg.Format = l.Format
	}
	cfg.Caller = l.Caller
	return cfg
}

// Default returns the configuration used when nothing else is supplied
func Default() *Config {
	return &Config{
		Database: *db.DefaultConfig(),
		Redis:    *redis.DefaultConfig(),
		Media:    reaper.DefaultDirectories(),
		Security: SecurityConfig{
			SessionTimeout: time.Hour,
		},
		Sweep: SweepConfig{
			LockFile: filepath.Join(os.TempDir(), "catalog4go-sweep.lock"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation and the section validators
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid value for %s: %w", verrs[0].Namespace(), err)
		}
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if c.Media.Movies == "" || c.Media.Series == "" {
		return errors.New("media: movies_dir and series_dir must not be empty")
	}
	return nil
}
