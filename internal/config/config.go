// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultSessionSecret is only acceptable in dev mode.
const DefaultSessionSecret = "devsessionsecret"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	App      AppConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       int    `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"crm"`
	Password   string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"epic_crm"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"DB_SQLITE_PATH" envDefault:"crm.db"`
	Debug      bool   `env:"DB_DEBUG"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"devsessionsecret"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	// TokenFile is where the CLI keeps the token between invocations.
	TokenFile string `env:"TOKEN_FILE" envDefault:".crm_token"`

	// Bootstrap management account created when the user table is empty.
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `env:"DEV" envDefault:"false"`
	Migrations bool `env:"MIGRATIONS"`
	Seed       bool `env:"DB_SEED" envDefault:"true"`

	// EventTimezone is the IANA zone event dates without offset are read in.
	EventTimezone string `env:"EVENT_TIMEZONE" envDefault:"UTC"`
}

// EventLocation returns the zone named by EventTimezone, UTC when it is
// empty or unknown.
func (a AppConfig) EventLocation() *time.Location {
	loc, err := time.LoadLocation(a.EventTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogConfig holds logger settings. Format is "text" or "json".
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables, after loading a .env
// file when one is present. Explicit env vars win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that are unsafe or unusable.
func (c *Config) Validate() error {
	if c.Auth.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if !c.App.Dev && c.Auth.SessionSecret == DefaultSessionSecret {
		return errors.New("SESSION_SECRET must be changed outside dev mode")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if _, err := time.LoadLocation(c.App.EventTimezone); err != nil {
		return fmt.Errorf("invalid EVENT_TIMEZONE %q: %w", c.App.EventTimezone, err)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}
