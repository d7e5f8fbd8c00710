package config

import (
	"os"
	"strconv"
	"time"
)

// StorageConfig holds the on-disk locations for articles and the admin credential file.
type StorageConfig struct {
	ArticlesDir string
	AdminFile   string
}

// SessionConfig holds settings for the admin session cookie.
type SessionConfig struct {
	Secret     string
	CookieName string
	TTLSec     int
	Secure     bool
}

// TTL returns the session lifetime as a duration.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSec) * time.Second
}

// MinIOConfig holds object storage settings for the article mirror.
// An empty Endpoint disables mirroring.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object storage endpoint was configured.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != ""
}

// TracingConfig holds OpenTelemetry settings. Exporter endpoints are still read
// by the OTLP exporters themselves from the standard OTEL_* variables.
type TracingConfig struct {
	Disabled    bool
	ServiceName string
	Protocol    string
	Sampler     string
	SamplerArg  string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port     string
	Timezone string
	Storage  StorageConfig
	Session  SessionConfig
	MinIO    MinIOConfig
	Tracing  TracingConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "Local"),
		Storage: StorageConfig{
			ArticlesDir: getEnv("ARTICLES_DIR", "articles"),
			AdminFile:   getEnv("ADMIN_FILE", "admin.json"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", ""),
			CookieName: getEnv("SESSION_COOKIE_NAME", "microblog_session"),
			TTLSec:     getEnvInt("SESSION_TTL_SEC", 86400),
			Secure:     getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Tracing: TracingConfig{
			Disabled:    getEnvBool("OTEL_SDK_DISABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "microblog"),
			Protocol:    getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			Sampler:     getEnv("OTEL_TRACES_SAMPLER", "parentbased_traceidratio"),
			SamplerArg:  getEnv("OTEL_TRACES_SAMPLER_ARG", "1.0"),
		},
	}
}

// Location resolves Timezone, falling back to the local zone when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Clock returns a time source in the configured zone, used to date articles.
func (c *AppConfig) Clock() func() time.Time {
	loc := c.Location()
	return func() time.Time { return time.Now().In(loc) }
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
