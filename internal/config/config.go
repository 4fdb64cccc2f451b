// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Storage backends for the tracking registry and image galleries.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds every setting the binaries need.
type Config struct {
	Port string

	StorageBackend string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SQLitePath     string

	JWTSecret string
	JWTExpiry time.Duration

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string
}

// Load reads a .env file when one exists, then the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "shop_admin"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		SQLitePath:      getEnv("SQLITE_PATH", "shop-admin.db"),
		JWTSecret:       getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "shop-admin"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "shop/tracking"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	cfg.JWTExpiry = 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		if cfg.JWTExpiry, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("JWT_EXPIRY: %w", err)
		}
	}

	switch cfg.StorageBackend {
	case BackendMemory, BackendMongo, BackendRedis, BackendSQLite:
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", cfg.StorageBackend)
	}
	return cfg, nil
}

// NewLogger builds a logrus logger from LogLevel and LogFormat.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
