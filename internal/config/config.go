// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Catalog backends selected by the DATABASE_URL scheme.
const (
	DatabaseMongo    = "mongo"
	DatabasePostgres = "postgres"
	DatabaseMemory   = "memory"
)

// Storage drivers.
const (
	StorageS3    = "s3"
	StorageMinio = "minio"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DatabaseURL  string
	DatabaseName string

	// Object storage. The s3 driver talks to AWS (or any S3 endpoint) through
	// the AWS SDK; the minio driver talks to a MinIO server.
	StorageDriver     string
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageRegion     string
	StorageUseSSL     bool
	StoragePublicBase string // browser-accessible base URL; derived from endpoint and bucket when empty
	StoragePublicRead bool   // send the public-read canned ACL with every upload

	AdminTheme         string
	AdminMaxBodyBytes  int64 // cap on one admin form submission, uploads included
	CORSAllowedOrigins []string
}

// Load reads configuration from a .env file (if present) and environment
// variables. The returned bool reports whether a .env file was loaded.
func Load() (*Config, bool) {
	loaded := godotenv.Load() == nil

	return &Config{
		Port:     getEnv("PORT", "5000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:  firstEnv([]string{"DATABASE_URL", "MONGO_URI"}, "mongodb://localhost:27017/car_cosmetics"),
		DatabaseName: getEnv("DATABASE_NAME", ""),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageS3)),
		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", ""),
		StorageAccessKey:  firstEnv([]string{"STORAGE_ACCESS_KEY", "AWS_ACCESS_KEY_ID"}, ""),
		StorageSecretKey:  firstEnv([]string{"STORAGE_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		StorageBucket:     firstEnv([]string{"STORAGE_BUCKET", "AWS_S3_BUCKET_NAME"}, ""),
		StorageRegion:     firstEnv([]string{"STORAGE_REGION", "AWS_S3_REGION"}, ""),
		StorageUseSSL:     getBool("STORAGE_USE_SSL", true),
		StoragePublicBase: getEnv("STORAGE_PUBLIC_BASE", ""),
		StoragePublicRead: getBool("STORAGE_PUBLIC_READ_ACL", true),

		AdminTheme:         firstEnv([]string{"ADMIN_THEME", "FLASK_ADMIN_SWATCH"}, "cerulean"),
		AdminMaxBodyBytes:  getInt64("ADMIN_MAX_BODY_BYTES", 64<<20),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}, loaded
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DatabaseKind returns the catalog backend named by the DATABASE_URL scheme.
func (c *Config) DatabaseKind() (string, error) {
	scheme, _, ok := strings.Cut(c.DatabaseURL, "://")
	if !ok {
		return "", fmt.Errorf("database url %q has no scheme", c.DatabaseURL)
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return DatabaseMongo, nil
	case "postgres", "postgresql":
		return DatabasePostgres, nil
	case "memory":
		return DatabaseMemory, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if _, err := c.DatabaseKind(); err != nil {
		return err
	}
	switch c.StorageDriver {
	case StorageS3:
		if c.StorageRegion == "" {
			return fmt.Errorf("storage: s3 driver needs STORAGE_REGION")
		}
	case StorageMinio:
		if c.StorageEndpoint == "" {
			return fmt.Errorf("storage: minio driver needs STORAGE_ENDPOINT")
		}
	default:
		return fmt.Errorf("storage: unsupported driver %q", c.StorageDriver)
	}
	if c.StorageBucket == "" {
		return fmt.Errorf("storage: STORAGE_BUCKET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// firstEnv returns the first non-empty variable of keys.
func firstEnv(keys []string, fallback string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
