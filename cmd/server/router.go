package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/todo-app/internal/api"
	apiMiddleware "github.com/phrazzld/todo-app/internal/api/middleware"
	"github.com/phrazzld/todo-app/internal/web"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Metrics(app.metrics))
	r.Use(apiMiddleware.SecurityHeaders)

	r.NotFound(api.NotFoundHandler)
	r.MethodNotAllowed(api.MethodNotAllowedHandler)

	todoHandler := api.NewTodoHandler(app.pool, app.sessions, app.renderer)
	todoHandler.RegisterRoutes(r)

	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler(app.config.Server.StaticDir)))
	r.Get("/health", api.HealthHandler)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
