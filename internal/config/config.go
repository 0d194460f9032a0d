// Package config provides application configuration loaded from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

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
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings for PostgreSQL or SQLite.
type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	RawDSN   string // DATABASE_DSN, wins over the discrete fields
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite file
	Debug    bool
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	Secret          string
	TokenTTL        time.Duration
	VerifyCacheTTL  time.Duration
	// EphemeralSecret is set when Validate generated Secret because
	// AUTH_SECRET was empty; tokens then die with the process.
	EphemeralSecret bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Migrations    bool
	Seed          bool
	SeedAdminName string
	SeedEmail     string
	SeedPassword  string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	if strings.HasPrefix(d.RawDSN, "postgres://") || strings.HasPrefix(d.RawDSN, "postgresql://") {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// IsSQLite reports whether the SQLite driver is selected.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetInt("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetInt("SERVER_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			RawDSN:   strings.TrimSpace(v.GetString("DATABASE_DSN")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			Path:     v.GetString("DB_PATH"),
			Debug:    getBool(v, "DB_DEBUG"),
		},
		Auth: AuthConfig{
			Secret:         v.GetString("AUTH_SECRET"),
			TokenTTL:       v.GetDuration("AUTH_TOKEN_TTL"),
			VerifyCacheTTL: v.GetDuration("AUTH_VERIFY_CACHE_TTL"),
		},
		App: AppConfig{
			Dev:           getBool(v, "DEV"),
			Migrations:    getBool(v, "MIGRATIONS"),
			Seed:          getBool(v, "DB_SEED"),
			SeedAdminName: v.GetString("SEED_ADMIN_NAME"),
			SeedEmail:     v.GetString("SEED_ADMIN_EMAIL"),
			SeedPassword:  v.GetString("SEED_ADMIN_PASSWORD"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "4000")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "pos")
	v.SetDefault("DB_PASSWORD", "pos123")
	v.SetDefault("DB_NAME", "pos")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "pos.db")
	v.SetDefault("DB_DEBUG", "0")

	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("AUTH_TOKEN_TTL", "12h")
	v.SetDefault("AUTH_VERIFY_CACHE_TTL", "30s")

	v.SetDefault("DEV", "1")
	v.SetDefault("MIGRATIONS", "0")
	v.SetDefault("DB_SEED", "1")
	v.SetDefault("SEED_ADMIN_NAME", "Administrador")
	v.SetDefault("SEED_ADMIN_EMAIL", "adminX@gmail.com")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin123")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// getBool accepts "1", "true", "yes" as true; everything else is false.
func getBool(v *viper.Viper, key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.GetString(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Validate checks settings that have no safe default outside dev mode. In
// dev mode an empty AUTH_SECRET is replaced by a random per-process key.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.Secret == "" {
		if !c.App.Dev {
			return errors.New("config: AUTH_SECRET is required when DEV is off")
		}
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("config: generate auth secret: %w", err)
		}
		c.Auth.Secret = secret
		c.Auth.EphemeralSecret = true
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: AUTH_TOKEN_TTL must be positive")
	}
	return nil
}

func randomSecret() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
