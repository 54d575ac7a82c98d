package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/todo-app/internal/api/shared"
	"github.com/phrazzld/todo-app/internal/platform/logger"
)

// TraceHeader carries the trace ID back to the client.
const TraceHeader = "X-Trace-ID"

// TraceMiddleware adds a trace ID to the request context and installs a
// request-scoped logger carrying it. The chi request ID is attached too when
// RequestID runs earlier in the chain.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := logger.FromContext(r.Context()).With("trace_id", traceID)
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			ctx = logger.WithRequestID(ctx, reqID)
			log = log.With("request_id", reqID)
		}
		ctx = logger.WithLogger(ctx, log)

		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
