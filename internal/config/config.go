package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend selectors.
const (
	LocalStoreMemory = "memory"
	LocalStoreSQLite = "sqlite"
	LocalStoreRedis  = "redis"

	SessionDBSQLite   = "sqlite"
	SessionDBPostgres = "postgres"

	ObjectStoreFileSystem = "filesystem"
	ObjectStoreS3         = "s3"
)

type Config struct {
	ListenAddr    string
	AuthToken     string
	LogLevel      string
	PublicBaseURL string

	LocalStore    string
	LocalDBPath   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SessionDBDriver      string
	SessionDBDSN         string
	SessionPurgeSchedule string
	SessionTTLHours      float64

	ObjectStore  string
	StoragePath  string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3PublicURL  string
	CacheControl string
}

// Load reads the configuration from the environment, after loading an
// optional .env file from the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		ListenAddr:    getEnv("MENU_LISTEN_ADDR", ":8080"),
		AuthToken:     getEnv("MENU_AUTH_TOKEN", ""),
		LogLevel:      getEnv("MENU_LOG_LEVEL", "info"),
		PublicBaseURL: strings.TrimRight(getEnv("MENU_PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		LocalStore:    getEnv("MENU_LOCAL_STORE", LocalStoreSQLite),
		LocalDBPath:   getEnv("MENU_LOCAL_DB_PATH", "/data/db/local.db"),
		RedisAddr:     getEnv("MENU_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("MENU_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("MENU_REDIS_DB", 0),
		RedisPrefix:   getEnv("MENU_REDIS_PREFIX", "menudesk:"),

		SessionDBDriver:      getEnv("MENU_SESSION_DB_DRIVER", SessionDBSQLite),
		SessionDBDSN:         getEnv("MENU_SESSION_DB_DSN", "/data/db/sessions.db"),
		SessionPurgeSchedule: getEnv("MENU_SESSION_PURGE_SCHEDULE", "@every 10m"),
		SessionTTLHours:      getEnvFloat("MENU_SESSION_TTL_HOURS", 4),

		ObjectStore:  getEnv("MENU_OBJECT_STORE", ObjectStoreFileSystem),
		StoragePath:  getEnv("MENU_STORAGE_PATH", "/data/assets"),
		S3Bucket:     getEnv("MENU_S3_BUCKET", ""),
		S3Region:     getEnv("MENU_S3_REGION", "us-east-1"),
		S3Endpoint:   getEnv("MENU_S3_ENDPOINT", ""),
		S3PublicURL:  getEnv("MENU_S3_PUBLIC_URL", ""),
		CacheControl: getEnv("MENU_CACHE_CONTROL", "3600"),
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("MENU_LISTEN_ADDR is required")
	}
	switch c.LocalStore {
	case LocalStoreMemory:
	case LocalStoreSQLite:
		if c.LocalDBPath == "" {
			return fmt.Errorf("MENU_LOCAL_DB_PATH is required for the sqlite local store")
		}
	case LocalStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("MENU_REDIS_ADDR is required for the redis local store")
		}
	default:
		return fmt.Errorf("MENU_LOCAL_STORE: unknown backend %q", c.LocalStore)
	}
	switch c.SessionDBDriver {
	case SessionDBSQLite, SessionDBPostgres:
	default:
		return fmt.Errorf("MENU_SESSION_DB_DRIVER: unknown driver %q", c.SessionDBDriver)
	}
	if c.SessionDBDSN == "" {
		return fmt.Errorf("MENU_SESSION_DB_DSN is required")
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("MENU_SESSION_TTL_HOURS must be positive")
	}
	switch c.ObjectStore {
	case ObjectStoreFileSystem:
		if c.StoragePath == "" {
			return fmt.Errorf("MENU_STORAGE_PATH is required for the filesystem object store")
		}
	case ObjectStoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("MENU_S3_BUCKET is required for the s3 object store")
		}
	default:
		return fmt.Errorf("MENU_OBJECT_STORE: unknown backend %q", c.ObjectStore)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SessionTTL returns the lifetime of newly opened bill sessions.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours * float64(time.Hour))
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("MENU_LOG_LEVEL: %w", err)
	}
	return l, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid number, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return f
}
