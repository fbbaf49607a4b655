package report

import (
	"time"

	"github.com/yourorg/loancheck/internal/env"
)

// Config holds the PDF rendering settings.
type Config struct {
	PDFEnabled   bool
	ChromiumPath string
	Timeout      time.Duration
	TimeZone     string
	Locale       string
	SignURLTTL   time.Duration
	BaseURL      string
	// SignSecret keys the report link HMAC. Empty means a random per-process key.
	SignSecret string
	// Retention is how long a stored report stays downloadable.
	Retention time.Duration
}

// DefaultSignURLTTL applies when no positive link lifetime is configured.
const DefaultSignURLTTL = 10 * time.Minute

func LoadConfig() Config {
	return Config{
		PDFEnabled:   env.Bool("REPORT_PDF_ENABLED", false),
		ChromiumPath: env.String("REPORT_CHROMIUM_PATH", ""),
		Timeout:      env.Duration("REPORT_TIMEOUT", 15*time.Second),
		TimeZone:     env.String("REPORT_TIMEZONE", "America/Sao_Paulo"),
		Locale:       env.String("REPORT_LOCALE", "pt-BR"),
		SignURLTTL:   env.Duration("REPORT_SIGN_URL_TTL", DefaultSignURLTTL),
		BaseURL:      env.String("REPORT_BASE_URL", "http://localhost:8080/reports"),
		SignSecret:   env.String("REPORT_SIGN_SECRET", ""),
		Retention:    env.Duration("REPORT_RETENTION", time.Hour),
	}
}
