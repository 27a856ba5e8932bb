// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DevJWTSecret is the signing key used when JWT_SECRET is not set.
const DevJWTSecret = "dev-chantiers-secret"

// Config holds all application configuration.
// It is built once at startup and passed down explicitly.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Geocoding GeocodingConfig
	Email     EmailConfig
	PDF       PDFConfig
	App       AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
	CORSOrigins  []string
}

// DatabaseConfig holds connection settings.
// An empty URL selects the embedded SQLite file at Path.
type DatabaseConfig struct {
	URL        string
	Path       string
	Debug      bool
	Migrations bool
	Seed       bool
}

// AuthConfig holds token and login settings.
type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	LoginRateLimit int // requests per second per client
	LoginRateBurst int
}

// GeocodingConfig holds the address search API settings.
type GeocodingConfig struct {
	URL     string
	Timeout time.Duration
}

// EmailConfig holds the transactional e-mail API settings.
type EmailConfig struct {
	APIURL     string
	APIKey     string
	Sender     string
	SenderName string
	Timeout    time.Duration
}

// PDFConfig holds document generation settings.
type PDFConfig struct {
	ImageTimeout time.Duration
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev       bool
	LogLevel  string
	LogFormat string
}

// UsesSQLite reports whether the embedded SQLite store is selected.
func (d DatabaseConfig) UsesSQLite() bool {
	return strings.TrimSpace(d.URL) == ""
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8000"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:        getEnv("DATABASE_URL", ""),
			Path:       getEnv("DB_PATH", "chantiers.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
			Migrations: getEnvBool("MIGRATIONS", false),
			Seed:       getEnvBool("DB_SEED", false),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", DevJWTSecret),
			TokenTTL:       time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*7)) * time.Minute,
			LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT", 5),
			LoginRateBurst: getEnvInt("LOGIN_RATE_BURST", 10),
		},
		Geocoding: GeocodingConfig{
			URL:     getEnv("GEOCODING_URL", "https://api-adresse.data.gouv.fr/search/"),
			Timeout: getEnvDuration("GEOCODING_TIMEOUT", 4*time.Second),
		},
		Email: EmailConfig{
			APIURL:     getEnv("EMAIL_API_URL", "https://api.brevo.com/v3/smtp/email"),
			APIKey:     getEnv("BREVO_API_KEY", ""),
			Sender:     getEnv("EMAIL_SENDER", "no-reply@chantiers.local"),
			SenderName: getEnv("EMAIL_SENDER_NAME", "Suivi Chantiers"),
			Timeout:    getEnvDuration("EMAIL_TIMEOUT", 5*time.Second),
		},
		PDF: PDFConfig{
			ImageTimeout: getEnvDuration("IMAGE_FETCH_TIMEOUT", 5*time.Second),
		},
		App: AppConfig{
			Dev:       getEnvBool("DEV", false),
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration accepts Go durations ("4s", "500ms") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
