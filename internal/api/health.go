package api

import (
	"fmt"
	"net/http"

	"github.com/phrazzld/todo-app/internal/api/shared"
)

// HealthHandler handles GET /health.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// NotFoundHandler answers unmatched routes.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	shared.RespondWithStatus(w, http.StatusNotFound)
}

// MethodNotAllowedHandler answers known paths requested with the wrong method.
func MethodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	shared.RespondWithStatus(w, http.StatusMethodNotAllowed)
}
