package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/crowelogic/tiergate/adapters/hasher"
	"github.com/crowelogic/tiergate/adapters/metrics"
	"github.com/crowelogic/tiergate/pkg/jsonapi"
)

type ctxKey int

const ctxCallerIDKey ctxKey = iota

// CallerID returns the authenticated caller id stored on ctx.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(ctxCallerIDKey).(string)
	return id
}

// WithCallerID returns a copy of ctx carrying callerID.
func WithCallerID(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, ctxCallerIDKey, callerID)
}

// extractAPIKey extracts the API key from the request.
// Supports: Authorization header (Bearer token) and X-API-Key header.
func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// RequireCaller authenticates the request by API key and stores the derived
// caller id on the request context. The raw key is never stored or logged.
func RequireCaller(m *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractAPIKey(r)
			if key == "" {
				if m != nil {
					m.AuthFailures.WithLabelValues("missing_key").Inc()
				}
				jsonapi.WriteError(w, jsonapi.NewError(http.StatusUnauthorized, "missing_api_key", "Unauthorized").
					Detail("Provide an API key via Authorization: Bearer or X-API-Key").
					Header("Authorization").
					Build())
				return
			}

			ctx := WithCallerID(r.Context(), hasher.CallerID(key))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
