package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/eshaffer321/agencia-go/internal/types"
)

// Config holds all configuration for the binaries
type Config struct {
	// API Configuration
	API APIConfig

	// Stub backend Configuration
	Stub StubConfig

	// Logging Configuration
	Logging LoggingConfig

	// SentryDSN enables error reporting when set
	SentryDSN string
}

// APIConfig holds the agency API settings
type APIConfig struct {
	BaseURL     string
	SessionFile string
}

// StubConfig holds the stub backend settings
type StubConfig struct {
	Addr string // listen address (host:port)
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	sessionFile := os.Getenv("AGENCIA_SESSION_FILE")
	if sessionFile == "" {
		sessionFile = DefaultSessionFile()
	}

	return &Config{
		API: APIConfig{
			BaseURL:     getenv("AGENCIA_BASE_URL", types.DefaultBaseURL),
			SessionFile: sessionFile,
		},
		Stub: StubConfig{
			Addr: getenv("STUB_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "warn"),
			Format: getenv("LOG_FORMAT", "console"),
		},
		SentryDSN: os.Getenv("SENTRY_DSN"),
	}, nil
}

// DefaultSessionFile is ~/.agencia/session.json, or a relative
// .agencia/session.json when the home directory is unknown.
func DefaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".agencia", "session.json")
	}
	return filepath.Join(home, ".agencia", "session.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
