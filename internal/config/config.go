package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/htmldown/internal/render"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage backend: memory, http or redis.
	StoreBackend string

	// Remote HTTP store
	StoreURL    string
	StoreAPIKey string

	// Redis store
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Renderer defaults
	HeadingStyle string
	BulletMarker string

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("HTMLDOWN_API_KEY"),

		StoreBackend: envOr("STORE_BACKEND", "memory"),
		StoreURL:     envOr("STORE_URL", "http://localhost:8080"),
		StoreAPIKey:  os.Getenv("STORE_API_KEY"),

		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		RedisTTL:      envDuration("REDIS_TTL", 0),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		HeadingStyle: envOr("HEADING_STYLE", "atx"),
		BulletMarker: envOr("BULLET_MARKER", "-"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("HTMLDOWN_API_KEY is required")
	}
	switch c.StoreBackend {
	case "memory", "redis":
	case "http":
		if c.StoreAPIKey == "" {
			return fmt.Errorf("STORE_API_KEY is required for the http backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// RenderOptions builds the service-wide renderer defaults. Per-request
// overrides layer on top of these.
func (c Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	if c.HeadingStyle != "" {
		opts.HeadingStyle = render.HeadingStyle(c.HeadingStyle)
	}
	if c.BulletMarker != "" {
		opts.BulletMarker = c.BulletMarker
	}
	return opts
}
