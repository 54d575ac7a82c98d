package shared

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/todo-app/internal/platform/logger"
	"github.com/phrazzld/todo-app/internal/redact"
)

// StatusBody returns the fixed plain-text body used for an error status,
// for example "404 Not Found".
func StatusBody(status int) string {
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// RespondWithStatus writes status with its fixed plain-text body.
func RespondWithStatus(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, StatusBody(status))
}

// RespondWithErrorAndLog writes status with its fixed body and logs err.
// The error never reaches the client.
//
// 5xx responses are logged at ERROR, everything else at DEBUG.
func RespondWithErrorAndLog(w http.ResponseWriter, r *http.Request, status int, err error) {
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status_code", status,
	}
	if err != nil {
		attrs = append(attrs,
			"error", redact.Error(err),
			"error_type", fmt.Sprintf("%T", err))
	}
	logger.FromContext(r.Context()).Log(r.Context(), level, "sending error response", attrs...)

	RespondWithStatus(w, status)
}

// Redirect sends a 302 Found to location.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}
