package httpapi

import (
	"time"

	"github.com/yourorg/loancheck/internal/env"
)

// Config holds the transport settings.
type Config struct {
	ListenAddr      string
	LogLevel        string
	LogFormat       string
	MaxUploadBytes  int64
	RateLimitRPS    float64
	RateLimitBurst  int
	AuditEnabled    bool
	ShutdownTimeout time.Duration
	// RequestTimeout bounds a single decision or reconciliation.
	RequestTimeout time.Duration
}

func LoadConfig() Config {
	return Config{
		ListenAddr:      env.String("LISTEN_ADDR", ":8080"),
		LogLevel:        env.String("LOG_LEVEL", "info"),
		LogFormat:       env.String("LOG_FORMAT", "json"),
		MaxUploadBytes:  int64(env.Int("MAX_UPLOAD_BYTES", 10<<20)),
		RateLimitRPS:    env.Float("RATE_LIMIT_RPS", 10),
		RateLimitBurst:  env.Int("RATE_LIMIT_BURST", 30),
		AuditEnabled:    env.Bool("AUDIT_ENABLED", true),
		ShutdownTimeout: env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:  env.Duration("REQUEST_TIMEOUT", 30*time.Second),
	}
}
