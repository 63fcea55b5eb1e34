package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the config file location
const PathEnvVar = "CATALOG4GO_CONFIG"

// DefaultPaths are searched in order when PathEnvVar is unset; the first existing file wins
var DefaultPaths = []string{
	"catalog4go.yaml",
	"/etc/catalog4go/config.yaml",
}

// envMappings maps environment variables (lower-cased) to config keys
var envMappings = map[string]string{
	"movies_dir": "media.movies_dir",
	"series_dir": "media.series_dir",

	"database_driver":    "database.driver",
	"database_path":      "database.path",
	"database_host":      "database.host",
	"database_port":      "database.port",
	"database_name":      "database.database",
	"database_user":      "database.username",
	"database_password":  "database.password",
	"database_timezone":  "database.timezone",
	"database_log_level": "database.logging.level",

	"redis_enabled":           "redis.enabled",
	"redis_host":              "redis.host",
	"redis_port":              "redis.port",
	"redis_password":          "redis.password",
	"redis_database":          "redis.database",
	"redis_default_ttl":       "redis.default_ttl",
	"redis_breaker_failures":  "redis.breaker_failures",
	"redis_breaker_timeout":   "redis.breaker_timeout",
	"redis_cluster_enabled":   "redis.cluster.enabled",
	"redis_cluster_addresses": "redis.cluster.addresses",

	"casbin_model_path":  "security.casbin.model_path",
	"casbin_policy_path": "security.casbin.policy_path",
	"jwt_secret":         "security.jwt_secret",
	"session_timeout":    "security.session_timeout",

	"sweep_lock_file": "sweep.lock_file",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// sliceConfigPaths accept comma-separated strings from the environment
var sliceConfigPaths = []string{
	"redis.cluster.addresses",
}

// Load builds the configuration from defaults, the config file and the environment, then validates it
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "yaml"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc returns the config key of a known variable, or "" to drop it
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}

		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
