package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment. It is
// loaded once in main and passed down explicitly.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	ExtractorBaseURL string
	ExtractorAPIKey  string
	ExtractorModel   string
	ExtractorTimeout time.Duration

	WorkerCount int
	QueueSize   int
	MaxAttempts int

	LogLevel  string
	LogFormat string
}

// Load reads the environment, overlaying a local .env file when present.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getenv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		ExtractorBaseURL: getenv("EXTRACTOR_BASE_URL", "https://api.openai.com/v1"),
		ExtractorAPIKey:  os.Getenv("EXTRACTOR_API_KEY"),
		ExtractorModel:   getenv("EXTRACTOR_MODEL", "gpt-4o-mini"),
		ExtractorTimeout: getduration("EXTRACTOR_TIMEOUT", 90*time.Second),
		WorkerCount:      getint("WORKER_COUNT", 4),
		QueueSize:        getint("QUEUE_SIZE", 256),
		MaxAttempts:      getint("MAX_ATTEMPTS", 3),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
