package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEventStart is the tournament kick-off (Friday 24 October 2025, 12:00 SAST).
const DefaultEventStart = "2025-10-24T12:00:00+02:00"

type Config struct {
	// Server
	Port     int
	Env      string
	LogLevel string

	// CORS
	AllowedOrigins []string

	// Registration
	RegistrationSeed int64
	MaxRegistrations int64
	SubmitLatency    time.Duration
	SuccessDisplay   time.Duration
	EventStart       time.Time

	// Leaderboard
	LeaderboardURL        string
	LeaderboardLimit      int
	LeaderboardTimeout    time.Duration
	LeaderboardMinDelay   time.Duration
	LeaderboardMaxRetries int
	LeaderboardRetryDelay time.Duration

	// Worker pool
	WorkerCount int
	QueueSize   int
}

// Load loads configuration from environment variables, after merging an
// optional dotenv file (ENV_FILE, default ".env"). Variables already set in
// the environment win over the file.
func Load() (*Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	env := getEnv("ENV", "development")
	cfg := &Config{
		Port:     getEnvInt("PORT", 8080),
		Env:      env,
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel(env))),

		RegistrationSeed: int64(getEnvInt("REGISTRATION_SEED", 87)),
		MaxRegistrations: int64(getEnvInt("MAX_REGISTRATIONS", 128)),
		SubmitLatency:    getEnvDuration("SUBMIT_LATENCY", 1*time.Second),
		SuccessDisplay:   getEnvDuration("SUCCESS_DISPLAY", 2*time.Second),

		LeaderboardURL:        getEnv("LEADERBOARD_URL", "https://jsonplaceholder.typicode.com/users"),
		LeaderboardLimit:      getEnvInt("LEADERBOARD_LIMIT", 10),
		LeaderboardTimeout:    getEnvDuration("LEADERBOARD_TIMEOUT", 10*time.Second),
		LeaderboardMinDelay:   getEnvDuration("LEADERBOARD_MIN_DELAY", 800*time.Millisecond),
		LeaderboardMaxRetries: getEnvInt("LEADERBOARD_MAX_RETRIES", 3),
		LeaderboardRetryDelay: getEnvDuration("LEADERBOARD_RETRY_DELAY", 2*time.Second),

		WorkerCount: getEnvInt("WORKER_COUNT", 4),
		QueueSize:   getEnvInt("QUEUE_SIZE", 256),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	start, err := time.Parse(time.RFC3339, getEnv("EVENT_START", DefaultEventStart))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_START: %w", err)
	}
	cfg.EventStart = start

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.LogLevel)
	}
	if c.RegistrationSeed < 0 {
		return fmt.Errorf("REGISTRATION_SEED must not be negative, got %d", c.RegistrationSeed)
	}
	if c.MaxRegistrations <= 0 {
		return fmt.Errorf("MAX_REGISTRATIONS must be positive, got %d", c.MaxRegistrations)
	}
	if c.LeaderboardURL == "" {
		return errors.New("LEADERBOARD_URL must not be empty")
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be positive, got %d", c.LeaderboardLimit)
	}
	if c.LeaderboardMaxRetries < 0 {
		return fmt.Errorf("LEADERBOARD_MAX_RETRIES must not be negative, got %d", c.LeaderboardMaxRetries)
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaultLogLevel(env string) string {
	if env == "production" {
		return "warn"
	}
	return "debug"
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
