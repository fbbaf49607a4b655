package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/loancheck/internal/audit"
	"github.com/yourorg/loancheck/internal/auth"
	"github.com/yourorg/loancheck/internal/credit"
	"github.com/yourorg/loancheck/internal/env"
	"github.com/yourorg/loancheck/internal/httpapi"
	"github.com/yourorg/loancheck/internal/logging"
	"github.com/yourorg/loancheck/internal/notes"
	"github.com/yourorg/loancheck/internal/report"
	"github.com/yourorg/loancheck/internal/signals"
)

func main() {
	if err := env.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := httpapi.LoadConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg httpapi.Config, logger *slog.Logger) error {
	sigCfg := signals.LoadConfig()
	src := signals.WithCache(signals.NewSimulated(sigCfg), sigCfg.CacheTTL)
	engine := credit.NewEngine(src.Bureau, src.Revenue, src.Payments, logger)

	notesCfg := notes.LoadConfig()
	reconciler := notes.NewReconciler(notes.DefaultExtractors(), notes.NewAuthenticityValidator(notesCfg), notesCfg, logger)

	trail := audit.NewMemoryRecorder()
	deps := httpapi.Deps{
		Engine:               engine,
		Reconciler:           reconciler,
		Audit:                audit.NewLog(trail),
		Trail:                trail,
		FixedWidthExtensions: notesCfg.FixedWidthExtensions,
	}

	reportCfg := report.LoadConfig()
	if reportCfg.PDFEnabled {
		deps.Reports = report.NewRenderer(reportCfg)
		storage, err := report.NewInMemoryStorage(reportCfg.BaseURL, []byte(reportCfg.SignSecret), reportCfg.Retention)
		if err != nil {
			return err
		}
		deps.Storage = storage
		deps.ReportURLTTL = reportCfg.SignURLTTL
	}

	authCfg := auth.LoadConfig()
	if authCfg.Enabled {
		if len(authCfg.KeyHashes) == 0 {
			return errors.New("AUTH_ENABLED is set but AUTH_KEY_HASHES is empty")
		}
		deps.Auth = auth.Middleware(auth.NewStaticKeyStore(authCfg), logger)
	}

	srv := httpapi.NewServer(cfg, deps, logger)
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Info("loancheck api listening",
		"addr", cfg.ListenAddr,
		"auth", authCfg.Enabled,
		"pdf", reportCfg.PDFEnabled,
		"signalCacheTTL", sigCfg.CacheTTL,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
