package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestRecorder receives per-request measurements.
type RequestRecorder interface {
	RequestStarted() func()
	ObserveRequest(method, route string, status int, d time.Duration)
}

// unmatchedRoute labels requests that no route matched, so arbitrary paths
// cannot grow label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records request counts and latencies labelled by the chi route
// pattern rather than the raw path.
func Metrics(rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := rec.RequestStarted()
			defer done()

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.ObserveRequest(r.Method, route, status, time.Since(start))
		})
	}
}
