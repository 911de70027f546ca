package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=reviewservice port=5432 sslmode=disable TimeZone=UTC"

type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	// json or text
	LogFormat       string
	ShutdownTimeout time.Duration

	Database DatabaseConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// gorm logger level: silent, error, warn, info
	LogLevel string
}

// CacheConfig controls the review listing cache. A zero TTL disables it.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// Load reads .env (if present) into the process environment and resolves
// every setting through viper. System env vars win over .env values.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading config from environment")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)
	v.SetDefault("DATABASE_URL", defaultDSN)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("LIST_CACHE_SIZE", 500)
	v.SetDefault("LIST_CACHE_TTL", time.Duration(0))

	return &Config{
		Port:            v.GetString("PORT"),
		GinMode:         v.GetString("GIN_MODE"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			LogLevel:        v.GetString("DB_LOG_LEVEL"),
		},
		Cache: CacheConfig{
			Size: v.GetInt("LIST_CACHE_SIZE"),
			TTL:  v.GetDuration("LIST_CACHE_TTL"),
		},
	}
}

// SetupLogger applies level and formatter to the standard logrus logger.
func (c *Config) SetupLogger() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, falling back to info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if c.LogFormat == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
}
