package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultAppName     = "starlab"
	DefaultPort        = "8080"
	DefaultTokenSecret = "starlab-demo-secret"
)

// Config holds all configuration for the application
type Config struct {
	// App Configuration
	App AppConfig

	// Client Configuration (HTTP pipeline + session store)
	Client ClientConfig

	// Server Configuration (mock API)
	Server ServerConfig

	// Logging Configuration
	Logging LoggingConfig
}

// AppConfig holds display-only settings
type AppConfig struct {
	Name string `validate:"required"`
}

// ClientConfig holds settings for the outbound HTTP pipeline
type ClientConfig struct {
	// APIBase is the base URL prepended to request paths. Empty means the
	// origin of the bundled mock server.
	APIBase string `validate:"omitempty,url"`

	// AutoLogoutOnUnauthorized clears the session when a request comes back 401
	AutoLogoutOnUnauthorized bool

	SessionBackend string `validate:"oneof=file keyring sqlite memory"`
	SessionPath    string
}

// ServerConfig holds mock API server settings
type ServerConfig struct {
	Port         string   `validate:"required,numeric"`
	AllowOrigins []string `validate:"dive,url"`
	TokenSecret  string   `validate:"required"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn warning error fatal panic"`
	Format string `validate:"oneof=json console"` // json, console
}

// Load loads configuration from environment variables. defaultLogFormat is
// used when LOG_FORMAT is unset: the server logs json, the CLI console.
func Load(defaultLogFormat string) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	autoLogout, err := parseBool("STARLAB_AUTO_LOGOUT", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name: getenv("STARLAB_APP_NAME", DefaultAppName),
		},
		Client: ClientConfig{
			APIBase:                  strings.TrimRight(os.Getenv("STARLAB_API_BASE"), "/"),
			AutoLogoutOnUnauthorized: autoLogout,
			SessionBackend:           getenv("STARLAB_SESSION_BACKEND", "file"),
			SessionPath:              os.Getenv("STARLAB_SESSION_PATH"),
		},
		Server: ServerConfig{
			Port:         getenv("STARLAB_PORT", DefaultPort),
			AllowOrigins: splitList(getenv("STARLAB_CORS_ORIGINS", "http://localhost:3000")),
			TokenSecret:  getenv("STARLAB_TOKEN_SECRET", DefaultTokenSecret),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getenv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getenv("LOG_FORMAT", defaultLogFormat)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Origin returns the base URL the client should talk to
func (c *Config) Origin() string {
	if c.Client.APIBase != "" {
		return c.Client.APIBase
	}
	return "http://localhost:" + c.Server.Port
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
