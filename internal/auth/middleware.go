package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/duckdesk/duckdesk/internal/observability"
)

// CookieName carries the API key for the embedded UI, whose fetch calls
// cannot be given custom headers by the user.
const CookieName = "duckdesk_api_key"

type contextKey string

const identityKey contextKey = "auth_identity"

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func Middleware(logger *slog.Logger, validator APIKeyValidator) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observability.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, source := apiKeyFromRequest(r)
			if apiKey == "" {
				writeUnauthorized(w, r, "missing API key")
				return
			}

			identity, ok := validator.Validate(r.Context(), apiKey)
			if !ok {
				logger.WarnContext(r.Context(), "authentication failed",
					slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
					slog.String("path", r.URL.Path),
					slog.String("key_source", source),
				)
				writeUnauthorized(w, r, "invalid API key")
				return
			}
			logger.DebugContext(r.Context(), "authenticated",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.String("client", identity.Client),
				slog.String("key_source", source),
			)

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// apiKeyFromRequest checks X-API-Key, then a bearer token, then the UI
// cookie, and reports which one supplied the key.
func apiKeyFromRequest(r *http.Request) (string, string) {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key, "header"
	}
	const bearerPrefix = "Bearer "
	if authorization := strings.TrimSpace(r.Header.Get("Authorization")); strings.HasPrefix(authorization, bearerPrefix) {
		if key := strings.TrimSpace(strings.TrimPrefix(authorization, bearerPrefix)); key != "" {
			return key, "bearer"
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		if key := strings.TrimSpace(cookie.Value); key != "" {
			return key, "cookie"
		}
	}
	return "", ""
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="duckdesk"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error_code": "UNAUTHORIZED",
		"message":    message,
		"retryable":  false,
		"context":    nil,
		"trace_id":   observability.TraceIDFromContext(r.Context()),
	})
}
