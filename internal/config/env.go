package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

// DefaultDBPort is used when DB_PORT is unset.
const DefaultDBPort = "5432"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overwritten. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// URLFromDBEnv composes a PostgreSQL URL from DB_HOST, DB_PORT, DB_USER,
// DB_PASSWORD and DB_NAME. It returns "" when neither DB_HOST nor DB_NAME
// is set.
func URLFromDBEnv() string {
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")

	if host == "" && name == "" {
		return ""
	}

	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = DefaultDBPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + name,
	}

	if user := os.Getenv("DB_USER"); user != "" {
		if pw, ok := os.LookupEnv("DB_PASSWORD"); ok {
			u.User = url.UserPassword(user, pw)
		} else {
			u.User = url.User(user)
		}
	}

	return u.String()
}

// FillDatabaseURL sets cfg.DatabaseURL from the DB_* variables when no URL
// was configured by flag, MIGRATE_DATABASE_URL, or the config file.
func FillDatabaseURL(cfg *Config) {
	if cfg.DatabaseURL != "" {
		return
	}

	cfg.DatabaseURL = URLFromDBEnv()
}
