package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yourorg/loancheck/internal/report"
)

// ReconciliationReport matches POST /loans/notes/report. It reconciles like
// /loans/notes and answers with the PDF. When storage is configured the PDF is
// also kept and its link returned in X-Report-Url.
func (s *Server) ReconciliationReport(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r.Context())
	if s.deps.Reports == nil {
		writeError(w, http.StatusNotImplemented, corrID, "REPORT_DISABLED", "pdf reports are not enabled", false)
		return
	}
	rec, ok := s.reconcile(w, r, "")
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()
	pdf, err := s.deps.Reports.Render(ctx, report.Reconciliation{
		TaxID:       rec.upload.taxID,
		CorrID:      corrID,
		Filename:    rec.upload.file.Filename(),
		Result:      rec.result,
		GeneratedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, report.ErrDisabled) {
			writeError(w, http.StatusNotImplemented, corrID, "REPORT_DISABLED", "pdf reports are not enabled", false)
			return
		}
		rec.log.Error("pdf render failed", "error", err)
		writeProcessingError(w, corrID, err)
		return
	}

	reportID := uuid.NewString()
	headers := map[string]string{
		"Content-Disposition": `attachment; filename="reconciliation-` + reportID + `.pdf"`,
	}
	if s.deps.Storage != nil {
		if err := s.deps.Storage.PutObject(ctx, reportID, pdf, "application/pdf"); err != nil {
			rec.log.Warn("store report failed", "reportId", reportID, "error", err)
		} else if link, err := s.deps.Storage.GetSignedURL(ctx, reportID, s.deps.ReportURLTTL); err != nil {
			rec.log.Warn("sign report link failed", "reportId", reportID, "error", err)
		} else {
			headers["X-Report-Url"] = link
		}
	}
	s.appendAudit(r.Context(), rec.log, corrID, rec.upload.taxID, "notes.report", reportID)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("X-Correlation-Id", corrID)
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// GetReport matches GET /reports/{reportId}. Only links issued by
// ReconciliationReport work, and only until their "exp".
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r.Context())
	if s.deps.Storage == nil {
		writeError(w, http.StatusNotFound, corrID, "NOT_FOUND", "report not found", false)
		return
	}
	reportID := chi.URLParam(r, "reportId")
	body, meta, err := s.deps.Storage.GetObject(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			writeError(w, http.StatusNotFound, corrID, "NOT_FOUND", "report not found", false)
			return
		}
		s.logger.Error("load report failed", "corrId", corrID, "reportId", reportID, "error", err)
		writeProcessingError(w, corrID, err)
		return
	}
	if err := s.deps.Storage.VerifySignedURL(reportID, r.URL.Query(), s.now()); err != nil {
		if errors.Is(err, report.ErrLinkExpired) {
			writeError(w, http.StatusForbidden, corrID, "LINK_EXPIRED", "report link expired", false)
			return
		}
		s.logger.Warn("report link rejected", "corrId", corrID, "reportId", reportID, "error", err)
		writeError(w, http.StatusForbidden, corrID, "LINK_INVALID", "report link is invalid", false)
		return
	}
	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("X-Correlation-Id", corrID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
