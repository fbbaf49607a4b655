package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yourorg/loancheck/internal/audit"
	"github.com/yourorg/loancheck/internal/auth"
	"github.com/yourorg/loancheck/internal/credit"
)

// writeJSON encodes before writing the status so an unencodable body becomes
// a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, corrID string, v any, extra map[string]string) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Default().Error("encode response failed", "corrId", corrID, "status", status, "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorBody{Code: "INTERNAL_ERROR", Message: "could not encode the response", CorrId: corrID, Retryable: false})
		extra = nil
	}
	w.Header().Set("Content-Type", "application/json")
	if corrID != "" {
		w.Header().Set("X-Correlation-Id", corrID)
	}
	for k, val := range extra {
		w.Header().Set(k, val)
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeValidation(w http.ResponseWriter, corrID, code, message string, items []credit.ValidationErrorItem) {
	body := ValidationError{
		Code:      code,
		Message:   message,
		CorrId:    corrID,
		Retryable: false,
		Errors:    items,
	}
	writeJSON(w, http.StatusBadRequest, corrID, body, nil)
}

func writeError(w http.ResponseWriter, status int, corrID, code, message string, retryable bool) {
	writeJSON(w, status, corrID, ErrorBody{Code: code, Message: message, CorrId: corrID, Retryable: retryable}, nil)
}

// writeProcessingError maps failures that happen after the input was accepted.
// A deadline or an unavailable provider is worth retrying.
func writeProcessingError(w http.ResponseWriter, corrID string, err error) {
	var sigErr credit.SignalError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, corrID, "TIMEOUT", "processing timed out", true)
	case errors.As(err, &sigErr):
		writeError(w, http.StatusServiceUnavailable, corrID, "SIGNAL_UNAVAILABLE", fmt.Sprintf("%s provider unavailable", sigErr.Source), true)
	default:
		writeError(w, http.StatusInternalServerError, corrID, "INTERNAL_ERROR", "internal error", true)
	}
}

func decodeJSON(body io.ReadCloser, v any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after the JSON body")
	}
	return nil
}

// appendAudit records the outcome. A failed append is logged, never surfaced.
func (s *Server) appendAudit(ctx context.Context, log *slog.Logger, corrID, taxID, action, outcome string) {
	if s.deps.Audit == nil || !s.cfg.AuditEnabled {
		return
	}
	actor := "anonymous"
	if op, ok := auth.OperatorFromContext(ctx); ok {
		actor = "key:" + op.KeyID
	}
	entry := audit.Entry{
		AuditID: uuid.NewString(),
		CorrID:  corrID,
		TaxID:   taxID,
		Actor:   actor,
		Action:  action,
		Outcome: outcome,
		Ts:      s.now().UTC(),
	}
	if _, err := s.deps.Audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn("audit append failed", "action", action, "error", err)
	}
}

func outcome(approved bool) string {
	if approved {
		return "APPROVED"
	}
	return "REJECTED"
}
