// Package httpapi exposes credit analysis and note reconciliation over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/yourorg/loancheck/internal/audit"
	"github.com/yourorg/loancheck/internal/credit"
	"github.com/yourorg/loancheck/internal/notes"
	"github.com/yourorg/loancheck/internal/report"
)

type Decider interface {
	Decide(ctx context.Context, app credit.Application) (credit.Decision, error)
}

type NoteReconciler interface {
	Reconcile(ctx context.Context, req notes.ReconciliationRequest) (notes.ReconciliationResult, error)
}

type ReportRenderer interface {
	Render(ctx context.Context, data report.Reconciliation) ([]byte, error)
}

// TrailReader lists the chain recorded for one tax ID.
type TrailReader interface {
	Entries(taxID string) []audit.Entry
}

// Deps are the collaborators behind the handlers. Reports, Storage, Audit,
// Trail and Auth are optional.
type Deps struct {
	Engine               Decider
	Reconciler           NoteReconciler
	Reports              ReportRenderer
	Storage              report.Storage
	ReportURLTTL         time.Duration
	Audit                *audit.Log
	Trail                TrailReader
	Auth                 func(http.Handler) http.Handler
	FixedWidthExtensions []string
}

type Server struct {
	cfg     Config
	deps    Deps
	limiter *clientLimiter
	logger  *slog.Logger
	now     func() time.Time
}

func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if len(deps.FixedWidthExtensions) == 0 {
		deps.FixedWidthExtensions = []string{".rem"}
	}
	if deps.ReportURLTTL <= 0 {
		deps.ReportURLTTL = report.DefaultSignURLTTL
	}
	return &Server{
		cfg:     cfg,
		deps:    deps,
		limiter: newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		logger:  logger,
		now:     time.Now,
	}
}

// Routes mounts every endpoint. Health checks skip auth and rate limiting.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.correlation)

	r.Get("/healthz", s.Health)
	r.Group(func(r chi.Router) {
		if s.deps.Auth != nil {
			r.Use(s.deps.Auth)
		}
		r.Use(s.rateLimit)

		r.Post("/loans/credit-analysis", s.CreditAnalysis)
		r.Post("/loans/notes", s.ReconcileNotes)
		r.Post("/loans/notes/xml", s.ReconcileTree)
		r.Post("/loans/notes/cnab", s.ReconcileFixedWidth)
		r.Post("/loans/notes/report", s.ReconciliationReport)
		r.Get("/reports/{reportId}", s.GetReport)
		r.Get("/audit/{taxId}", s.GetAuditTrail)
	})
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, correlationID(r.Context()), Health{Status: "ok"}, nil)
}

type corrIDKey struct{}

const maxCorrIDLen = 128

// correlation reuses the caller's X-Correlation-Id or issues a new UUID.
func (s *Server) correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := strings.TrimSpace(r.Header.Get("X-Correlation-Id"))
		if corrID == "" || len(corrID) > maxCorrIDLen {
			corrID = uuid.NewString()
			r.Header.Set("X-Correlation-Id", corrID)
		}
		w.Header().Set("X-Correlation-Id", corrID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), corrIDKey{}, corrID)))
	})
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(corrIDKey{}).(string)
	return id
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}
