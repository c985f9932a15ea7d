// Package config provides centralized default values for StudyDeck
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	CORSOrigins        []string

	// Data directory and local (guest) store
	DataDir         string
	LocalSQLitePath string

	// Remote (authenticated) store. When Turso is not configured the
	// remote store falls back to a second SQLite file so development
	// works without a cloud database.
	TursoEnabled     bool
	TursoDatabaseURL string
	TursoAuthToken   string
	RemoteSQLitePath string

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Security
	JWTSecret          string
	AESKey             string
	AdminPassword      string
	SessionTokenExpiry time.Duration
	AdminTokenExpiry   time.Duration

	// Stats stream
	StreamWriteTimeout     time.Duration
	StreamHeartbeatSeconds int

	// External services
	ResendAPIKey    string
	ResendFromEmail string
	AAIAPIKey       string
)

func init() {
	// Load .env before any value is read. Missing file is fine;
	// configuration falls back to real env vars.
	_ = godotenv.Load()

	// Server Configuration
	Port = getEnvString("PORT", "10020")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	CORSOrigins = strings.Split(getEnvString("CORS_ORIGINS", "http://localhost:4321"), ",")

	// Storage locations
	DataDir = getEnvString("STUDYDECK_DATA_DIR", defaultDataDir())
	LocalSQLitePath = getEnvString("LOCAL_SQLITE_PATH", filepath.Join(DataDir, "guest.db"))
	RemoteSQLitePath = getEnvString("REMOTE_SQLITE_PATH", filepath.Join(DataDir, "accounts.db"))

	// Remote store
	TursoEnabled = getEnvBool("TURSO_ENABLED", false)
	TursoDatabaseURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Security
	JWTSecret = getEnvString("JWT_SECRET", "")
	AESKey = getEnvString("AES_KEY", "")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")
	SessionTokenExpiry = getEnvDuration("SESSION_TOKEN_EXPIRY", 30*24*time.Hour)
	AdminTokenExpiry = getEnvDuration("ADMIN_TOKEN_EXPIRY", 12*time.Hour)

	// Stats stream
	StreamWriteTimeout = getEnvDuration("STREAM_WRITE_TIMEOUT", 10*time.Second)
	StreamHeartbeatSeconds = getEnvInt("STREAM_HEARTBEAT_SECONDS", 30)

	// External services
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	ResendFromEmail = getEnvString("RESEND_FROM_EMAIL", "StudyDeck <hello@studydeck.app>")
	AAIAPIKey = getEnvString("AAI_API_KEY", "")
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "studydeck-data"
	}
	return filepath.Join(homeDir, "studydeck-go-server")
}
