package notes

import (
	"time"

	"github.com/yourorg/loancheck/internal/env"
)

// Config holds the reconciliation knobs.
type Config struct {
	ValidationLatency time.Duration
	// Tolerance is the symmetric band around the loan amount, 0.15 for 15%.
	Tolerance float64
	// MaxParallelValidations bounds the validator fan-out; zero means unbounded.
	MaxParallelValidations int
	FixedWidthExtensions   []string
}

func LoadConfig() Config {
	return Config{
		ValidationLatency:      env.Duration("NOTE_VALIDATION_LATENCY", 50*time.Millisecond),
		Tolerance:              env.Float("RECONCILE_TOLERANCE", DefaultTolerance),
		MaxParallelValidations: env.Int("MAX_PARALLEL_VALIDATIONS", 0),
		FixedWidthExtensions:   env.List("FIXED_WIDTH_EXTENSIONS", []string{".rem"}),
	}
}

// DefaultTolerance is the 15% band.
const DefaultTolerance = 0.15
