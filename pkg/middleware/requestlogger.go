package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cardhouse/storefront/pkg/logger"
)

// RequestLogger returns middleware that builds a request-scoped logger
// enriched from the context (correlation_id, trace_id, span_id, and
// session_id when a session middleware ran earlier), then stores it in
// context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// Mount this AFTER RequestLogging (which sets correlation_id) and Tracing
// (which sets the span context).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
