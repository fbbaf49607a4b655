package signals

import (
	"time"

	"github.com/yourorg/loancheck/internal/env"
)

// Config holds the simulated provider latencies and the optional cache.
type Config struct {
	BureauLatency  time.Duration
	RevenueLatency time.Duration
	PaymentLatency time.Duration
	// CacheTTL enables the signal cache when positive.
	CacheTTL time.Duration
}

func LoadConfig() Config {
	return Config{
		BureauLatency:  env.Duration("BUREAU_LATENCY", 500*time.Millisecond),
		RevenueLatency: env.Duration("REVENUE_LATENCY", 800*time.Millisecond),
		PaymentLatency: env.Duration("PAYMENT_LATENCY", 400*time.Millisecond),
		CacheTTL:       env.Duration("SIGNAL_CACHE_TTL", 0),
	}
}
