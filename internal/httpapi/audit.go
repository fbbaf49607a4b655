package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/loancheck/internal/audit"
)

// GetAuditTrail matches GET /audit/{taxId} and re-verifies the chain on every read.
func (s *Server) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r.Context())
	if s.deps.Trail == nil {
		writeError(w, http.StatusNotFound, corrID, "NOT_FOUND", "audit trail not available", false)
		return
	}
	taxID := chi.URLParam(r, "taxId")
	entries := s.deps.Trail.Entries(taxID)
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, corrID, "NOT_FOUND", "no audit entries for this tax ID", false)
		return
	}
	trail := AuditTrail{TaxID: taxID, Entries: entries, Valid: true}
	if err := audit.Verify(entries); err != nil {
		s.logger.Error("audit chain broken", "corrId", corrID, "taxId", taxID, "error", err)
		trail.Valid = false
		trail.Problem = err.Error()
	}
	writeJSON(w, http.StatusOK, corrID, trail, nil)
}
