package httpapi

import (
	"net/http"

	"github.com/yourorg/loancheck/internal/credit"
	"github.com/yourorg/loancheck/internal/logging"
)

// CreditAnalysis matches POST /loans/credit-analysis.
func (s *Server) CreditAnalysis(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r.Context())

	var req CreditAnalysisRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeValidation(w, corrID, "BAD_JSON", "invalid JSON", []credit.ValidationErrorItem{
			{Code: "BAD_JSON", Path: "body", Message: err.Error()},
		})
		return
	}
	app := req.Application()
	log := logging.WithCorrelation(s.logger, corrID, app.TaxID)

	if errs := credit.ValidateApplication(app); len(errs) > 0 {
		log.Info("credit application rejected by validation", "errors", len(errs))
		writeValidation(w, corrID, "VALIDATION_ERROR", "invalid credit application", errs)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()
	decision, err := s.deps.Engine.Decide(ctx, app)
	if err != nil {
		log.Error("credit analysis failed", "error", err)
		writeProcessingError(w, corrID, err)
		return
	}
	s.appendAudit(r.Context(), log, corrID, app.TaxID, "credit.decide", outcome(decision.Approved)+":"+string(decision.Tier))
	writeJSON(w, http.StatusOK, corrID, decision, nil)
}
