package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
)

// TraceMiddleware assigns each request a trace ID, exposes it in the
// X-Trace-Id response header, and stores a logger carrying it in the request
// context. It runs early in the chain so every downstream log line and error
// response for the request shares one correlation key.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		w.Header().Set("X-Trace-Id", traceID)
		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
