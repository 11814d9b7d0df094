package middleware

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/FreshMarket/pkg/logger"
)

// RequestLogger stores a request-scoped logger carrying the correlation,
// user, session and trace ids in the context, for logger.FromContext. The
// user and session ids are also set on the active span.
//
// Mount it after RequestLogging, Tracing and Auth so every field is available.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			span := trace.SpanFromContext(ctx)
			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
				span.SetAttributes(attribute.String("enduser.id", userID))
			}
			if sessionID := SessionIDFromContext(ctx); sessionID != "" {
				ctx = logger.WithSessionID(ctx, sessionID)
				span.SetAttributes(attribute.String("session.id", sessionID))
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
