package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Realtime RealtimeConfig
	Advisory AdvisoryConfig
	Webhook  WebhookConfig
	Session  SessionConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RealtimeConfig holds voice transport configuration
type RealtimeConfig struct {
	URL           string // wss endpoint of the voice provider
	APIKey        string
	APISecret     string // signs the short-lived session credential
	CredentialTTL time.Duration
	UseMock       bool
}

// AdvisoryConfig holds coaching advisory service configuration
type AdvisoryConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// WebhookConfig holds out-of-band event delivery configuration
type WebhookConfig struct {
	Secret string // shared secret compared against X-Webhook-Secret
}

// SessionConfig holds live-session tuning knobs.
// Loaded via envconfig under the SESSION_ prefix so every knob can be
// overridden per deployment without code changes.
type SessionConfig struct {
	CoachDebounce    time.Duration `envconfig:"COACH_DEBOUNCE" default:"500ms"`
	CoachCooldown    time.Duration `envconfig:"COACH_COOLDOWN" default:"7s"`
	FinalizeAttempts int           `envconfig:"FINALIZE_ATTEMPTS" default:"3"`
	FinalizeTimeout  time.Duration `envconfig:"FINALIZE_TIMEOUT" default:"2.5s"`
	FinalizeBackoff  time.Duration `envconfig:"FINALIZE_BACKOFF" default:"300ms"`
	CaptureInterval  time.Duration `envconfig:"CAPTURE_INTERVAL" default:"250ms"`
	MicPauseLevel    float64       `envconfig:"MIC_PAUSE_LEVEL" default:"0.12"`
	MicSilenceHold   time.Duration `envconfig:"MIC_SILENCE_HOLD" default:"600ms"`
	DedupWindow      int           `envconfig:"DEDUP_WINDOW" default:"200"`
	ReportCacheSize  int           `envconfig:"REPORT_CACHE_SIZE" default:"64"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "persona_interview"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Realtime: RealtimeConfig{
			URL:           getEnv("REALTIME_URL", "wss://voice.example.com/v1/live"),
			APIKey:        getEnv("REALTIME_API_KEY", ""),
			APISecret:     getEnv("REALTIME_API_SECRET", ""),
			CredentialTTL: getEnvAsDuration("REALTIME_CREDENTIAL_TTL", "2m"),
			UseMock:       getEnvAsBool("REALTIME_USE_MOCK", false),
		},
		Advisory: AdvisoryConfig{
			BaseURL: getEnv("ADVISORY_URL", ""),
			APIKey:  getEnv("ADVISORY_API_KEY", ""),
			Timeout: getEnvAsDuration("ADVISORY_TIMEOUT", "4s"),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("WEBHOOK_SECRET", ""),
		},
	}

	if err := envconfig.Process("SESSION", &config.Session); err != nil {
		return nil, fmt.Errorf("failed to load session config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !c.Realtime.UseMock {
		if c.Realtime.APIKey == "" {
			return fmt.Errorf("REALTIME_API_KEY is required")
		}
		if c.Realtime.APISecret == "" {
			return fmt.Errorf("REALTIME_API_SECRET is required")
		}
	}
	if c.Session.FinalizeAttempts < 1 {
		return fmt.Errorf("SESSION_FINALIZE_ATTEMPTS must be at least 1")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
