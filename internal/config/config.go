package config

import (
	"os"
	"strconv"
)

// GoogleConfig holds Google Sheets API access settings.
type GoogleConfig struct {
	CredentialsFile string
	MaxRetries      int
}

// DatabaseConfig holds PostgreSQL settings for the update-history table.
// The history feature is disabled entirely when Host is empty.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for sheet exports.
// The export feature is disabled entirely when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// HTTPConfig holds settings for the API surface: the shared API key,
// CORS origins and the per-client rate limit applied under /api.
type HTTPConfig struct {
	APIKey             string
	CORSOrigins        string
	RateLimitMax       int
	RateLimitWindowSec int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	LinkFile string
	HTTP     HTTPConfig
	Google   GoogleConfig
	Database DatabaseConfig
	MinIO    MinIOConfig

	ExportURLExpirySec int
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		LinkFile: getEnv("LINK_FILE", "linked_sheet.json"),
		HTTP: HTTPConfig{
			APIKey:             getEnv("API_KEY", ""),
			CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
			RateLimitMax:       getEnvInt("RATE_LIMIT_MAX", 60),
			RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		},
		Google: GoogleConfig{
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			MaxRetries:      getEnvInt("SHEETS_MAX_RETRIES", 5),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		ExportURLExpirySec: getEnvInt("EXPORT_URL_EXPIRY_SEC", 900),
	}
}

// HistoryEnabled reports whether the Postgres-backed update history is configured.
func (c *AppConfig) HistoryEnabled() bool {
	return c.Database.Host != ""
}

// ExportEnabled reports whether the object-storage export target is configured.
func (c *AppConfig) ExportEnabled() bool {
	return c.MinIO.Endpoint != ""
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
