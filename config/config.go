package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"guesser/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP configuration
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	SecureCookies bool   `env:"SECURE_COOKIES" envDefault:"false"`

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Session store configuration (empty RedisAddr keeps sessions in memory)
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Identity configuration
	JWTSecret string `env:"JWT_SECRET"`

	// Game configuration
	ModesFile        string        `env:"MODES_FILE"`         // Optional YAML override of the mode catalog
	HintChargeAlways bool          `env:"HINT_CHARGE_ALWAYS"` // Charge hints even when none is available
	RecordTimeout    time.Duration `env:"RECORD_TIMEOUT" envDefault:"3s"`
	RecordRetries    uint64        `env:"RECORD_RETRIES" envDefault:"2"`

	// NATS configuration (empty disables event forwarding)
	NATSServers string `env:"NATS_SERVERS"`

	// Discord configuration (both required for result announcements)
	DiscordToken     string `env:"DISCORD_TOKEN"`
	DiscordChannelID string `env:"DISCORD_CHANNEL_ID"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelServiceName          string `env:"OTEL_SERVICE_NAME" envDefault:"guesser"`
	OTelExporterType         string `env:"OTEL_EXPORTER_TYPE" envDefault:"console"` // "console" or "none"
	OTelExportIntervalMillis int    `env:"OTEL_EXPORT_INTERVAL_MS" envDefault:"60000"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from a .env file (if present) and environment variables
func load() (*Config, error) {
	// Missing .env is fine; real deployments set variables directly
	_ = godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks required settings for the current environment
func (c *Config) Validate() error {
	if c.Environment == "test" {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	switch c.OTelExporterType {
	case "console", "none":
	default:
		return fmt.Errorf("unknown OTEL_EXPORTER_TYPE %q", c.OTelExporterType)
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		LogLevel:         "debug",
		HTTPAddr:         ":0",
		SessionTTL:       time.Hour,
		JWTSecret:        "test-secret",
		RecordTimeout:    time.Second,
		RecordRetries:    1,
		OTelServiceName:  "guesser-test",
		OTelExporterType: "none",
	}
}
