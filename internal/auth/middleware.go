package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type operatorKey struct{}

// AuthError is the JSON body of a rejected request.
type AuthError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	CorrID    string `json:"corrId"`
	Retryable bool   `json:"retryable"`
}

// Middleware rejects requests without a valid operator key. Keys are read from
// "Authorization: Bearer <key>", "Authorization: ApiKey <key>" or X-API-Key.
func Middleware(store KeyStore, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			corrID := r.Header.Get("X-Correlation-Id")
			rawKey := extractAPIKey(r)
			if rawKey == "" {
				writeAuthError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "API key required", corrID)
				return
			}
			op, err := store.Match(r.Context(), rawKey)
			if err != nil {
				code := "AUTH_FAILED"
				if errors.Is(err, ErrUnknownKey) {
					code = "INVALID_KEY"
				}
				logger.Warn("api key rejected", "corrId", corrID, "keyPrefix", ExtractKeyPrefix(rawKey), "error", err)
				writeAuthError(w, http.StatusUnauthorized, code, "Invalid API key", corrID)
				return
			}
			logger.Debug("authenticated request", "corrId", corrID, "keyId", op.KeyID)
			next.ServeHTTP(w, r.WithContext(ContextWithOperator(r.Context(), op)))
		})
	}
}

func extractAPIKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if k, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(k)
		}
		if k, ok := strings.CutPrefix(h, "ApiKey "); ok {
			return strings.TrimSpace(k)
		}
		return strings.TrimSpace(h)
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func writeAuthError(w http.ResponseWriter, status int, code, message, corrID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(AuthError{Code: code, Message: message, CorrID: corrID})
}

func ContextWithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

func OperatorFromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(Operator)
	return op, ok
}
