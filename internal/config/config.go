package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for configuration fields. Zero timeouts leave the server
// defaults in place.
const (
	DefaultConfigFile       = "drrms-migrate.yml"
	DefaultMigrationsDir    = "./migrations"
	DefaultLockTimeout      = time.Duration(0)
	DefaultStatementTimeout = time.Duration(0)
	DefaultLogLevel         = "warn"
)

// Config holds the runner configuration loaded from file, environment, and flags.
type Config struct {
	DatabaseURL      string
	MigrationsDir    string
	LockTimeout      time.Duration
	StatementTimeout time.Duration
	LogLevel         string
	AdvisoryLock     bool
}

// yamlConfig is the raw YAML file representation with string durations.
type yamlConfig struct {
	DatabaseURL      string `yaml:"database_url"`
	MigrationsDir    string `yaml:"migrations_dir"`
	LockTimeout      string `yaml:"lock_timeout"`
	StatementTimeout string `yaml:"statement_timeout"`
	LogLevel         string `yaml:"log_level"`
	AdvisoryLock     *bool  `yaml:"advisory_lock"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		MigrationsDir:    DefaultMigrationsDir,
		LockTimeout:      DefaultLockTimeout,
		StatementTimeout: DefaultStatementTimeout,
		LogLevel:         DefaultLogLevel,
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.DatabaseURL != "" {
		cfg.DatabaseURL = raw.DatabaseURL
	}

	if raw.MigrationsDir != "" {
		cfg.MigrationsDir = raw.MigrationsDir
	}

	if raw.LockTimeout != "" {
		d, err := parseTimeout("lock_timeout", raw.LockTimeout)
		if err != nil {
			return nil, err
		}

		cfg.LockTimeout = d
	}

	if raw.StatementTimeout != "" {
		d, err := parseTimeout("statement_timeout", raw.StatementTimeout)
		if err != nil {
			return nil, err
		}

		cfg.StatementTimeout = d
	}

	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}

	if raw.AdvisoryLock != nil {
		cfg.AdvisoryLock = *raw.AdvisoryLock
	}

	return cfg, nil
}

func parseTimeout(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", key, value, err)
	}

	if d < 0 {
		return 0, fmt.Errorf("parsing %s %q: must not be negative", key, value)
	}

	return d, nil
}

// MergeEnv overrides config fields from MIGRATE_* environment variables.
// Values that do not parse are ignored.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("MIGRATE_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("MIGRATE_MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}

	if v := os.Getenv("MIGRATE_LOCK_TIMEOUT"); v != "" {
		if d, err := parseTimeout("MIGRATE_LOCK_TIMEOUT", v); err == nil {
			cfg.LockTimeout = d
		}
	}

	if v := os.Getenv("MIGRATE_STATEMENT_TIMEOUT"); v != "" {
		if d, err := parseTimeout("MIGRATE_STATEMENT_TIMEOUT", v); err == nil {
			cfg.StatementTimeout = d
		}
	}

	if v := os.Getenv("MIGRATE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("MIGRATE_ADVISORY_LOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AdvisoryLock = b
		}
	}
}
