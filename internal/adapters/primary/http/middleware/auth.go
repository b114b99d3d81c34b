package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lorrc/helpdesk-core/internal/auth"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// CallerKey is the key used to store the resolved caller in the request context.
const CallerKey contextKey = "caller"

// Authenticate validates the bearer token and resolves the caller from the
// user directory. Handlers read the caller with CallerFromContext.
func Authenticate(tm *auth.TokenManager, resolver ports.CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header is required", "UNAUTHORIZED")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header format must be Bearer {token}", "UNAUTHORIZED")
				return
			}

			claims, err := tm.ValidateToken(strings.TrimSpace(tokenString))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token", "UNAUTHORIZED")
				return
			}

			caller, err := resolver.ResolveCaller(r.Context(), claims.UserID, claims.Login)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) || errors.Is(err, apperrors.ErrUnauthorized) {
					writeError(w, http.StatusUnauthorized, "Unknown user", "UNAUTHORIZED")
					return
				}
				writeError(w, http.StatusInternalServerError, "An unexpected error occurred", "INTERNAL_ERROR")
				return
			}

			ctx := context.WithValue(r.Context(), CallerKey, caller)
			ctx = logging.WithUserID(ctx, strconv.FormatInt(caller.ID, 10))
			ctx = logging.WithRole(ctx, string(caller.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (*domain.User, bool) {
	caller, ok := ctx.Value(CallerKey).(*domain.User)
	return caller, ok && caller != nil
}

// WithCaller stores a caller in the context. Used by tests and tooling
// that bypass token validation.
func WithCaller(ctx context.Context, caller *domain.User) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// writeError writes the same JSON error shape as the http package's error
// handler.
func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}{Error: message, Code: code})
}
