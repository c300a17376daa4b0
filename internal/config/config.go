// Package config loads the runtime configuration from a .env file and the
// environment.
package config

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Database is the connection-factory configuration.
type Database struct {
	Driver string
	// DSN overrides the discrete connection fields when set.
	DSN      string
	User     string
	Password string
	Host     string
	Port     string
	Name     string

	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// Config is the configuration of the credential store process.
type Config struct {
	Database   Database
	BcryptCost int
	LogLevel   slog.Level
}

// Load reads the optional .env files, then the environment.
// A missing .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return Config{}, errl.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		Database: Database{
			Driver:         envDefault("DB_DRIVER", DriverPostgres),
			DSN:            os.Getenv("DATABASE_URL"),
			User:           os.Getenv("user"),
			Password:       os.Getenv("password"),
			Host:           envDefault("host", "localhost"),
			Port:           envDefault("port", "5432"),
			Name:           os.Getenv("dbname"),
			ConnectTimeout: envDurationDefault("DB_CONNECT_TIMEOUT", 10*time.Second),
			QueryTimeout:   envDurationDefault("DB_QUERY_TIMEOUT", 5*time.Second),
		},
		BcryptCost: envIntDefault("BCRYPT_COST", 0),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(envDefault("LOG_LEVEL", "info"))); err != nil {
		return Config{}, errl.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, errl.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}

// ConnString returns the driver-specific connection string.
func (d Database) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == DriverSQLite {
		name := d.Name
		if name == "" {
			name = "./data/credstore.db"
		}
		return "file:" + name + "?_foreign_keys=on&_busy_timeout=5000"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	q := url.Values{}
	if secs := int(d.ConnectTimeout / time.Second); secs > 0 {
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
