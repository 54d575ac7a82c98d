package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/todo-app/internal/api/shared"
	"github.com/phrazzld/todo-app/internal/domain"
	"github.com/phrazzld/todo-app/internal/platform/logger"
	"github.com/phrazzld/todo-app/internal/session"
	"github.com/phrazzld/todo-app/internal/web"
	"github.com/phrazzld/todo-app/internal/worker"
)

// Dispatcher executes a worker request and waits for its result.
// *worker.Pool implements it.
type Dispatcher interface {
	Exec(ctx context.Context, req worker.Request) worker.Result
}

// SessionStore reads and writes the signed session cookie.
// *session.Manager implements it.
type SessionStore interface {
	Load(r *http.Request) session.Session
	Save(ctx context.Context, w http.ResponseWriter, s session.Session) error
}

// Renderer renders the index page. *web.Renderer implements it.
type Renderer interface {
	RenderIndex(w io.Writer, data web.IndexData) error
}

// TodoHandler handles the task list pages and forms.
type TodoHandler struct {
	dispatcher Dispatcher
	sessions   SessionStore
	renderer   Renderer
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(dispatcher Dispatcher, sessions SessionStore, renderer Renderer) *TodoHandler {
	return &TodoHandler{
		dispatcher: dispatcher,
		sessions:   sessions,
		renderer:   renderer,
	}
}

// RegisterRoutes mounts the task routes on r. Non-numeric IDs do not match
// the resource route and fall through to the router's not found handler.
func (h *TodoHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/todo", h.Create)
	r.Post("/todo/{id:[0-9]+}", h.UpdateOrDelete)
}

// Index handles GET / requests. The pending flash is consumed only when the
// page is actually rendered.
func (h *TodoHandler) Index(w http.ResponseWriter, r *http.Request) {
	res := h.dispatcher.Exec(r.Context(), worker.ListAll{})
	if res.Failed() {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, res.Err)
		return
	}

	sess, flash := h.sessions.Load(r).TakeFlash()

	var page bytes.Buffer
	if err := h.renderer.RenderIndex(&page, web.IndexData{Tasks: res.Tasks, Flash: flash}); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, err)
		return
	}

	if flash != nil {
		if err := h.sessions.Save(r.Context(), w, sess); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := page.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Debug("failed to write index page", "error", err)
	}
}

// Create handles POST /todo requests. An empty description never reaches
// the worker pool.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, err)
		return
	}

	req := createTaskRequestFromForm(r.PostForm)
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, err)
		return
	}

	task, err := domain.NewTaskFromDescription(*req.Description)
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, err)
			return
		}
		h.flashAndRedirect(w, r, session.KindError, FlashEmptyDescription)
		return
	}

	res := h.dispatcher.Exec(r.Context(), worker.Create{Description: task.Description})
	if res.Failed() {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, res.Err)
		return
	}

	h.flashAndRedirect(w, r, session.KindSuccess, FlashTaskAdded)
}

// UpdateOrDelete handles POST /todo/{id} requests, dispatching on the method
// override field. The override is classified before any work is scheduled.
func (h *TodoHandler) UpdateOrDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, err)
		return
	}
	form := UpdateTaskRequest{ID: id, Method: r.PostForm.Get(MethodOverrideField)}

	override, ok := ParseOverride(form.Method)
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, nil)
		return
	}

	var req worker.Request
	switch override {
	case OverrideToggle:
		req = worker.Toggle{ID: form.ID}
	case OverrideDelete:
		req = worker.Delete{ID: form.ID}
	}

	res := h.dispatcher.Exec(r.Context(), req)
	if res.Failed() {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, res.Err)
		return
	}

	shared.Redirect(w, r, "/")
}

// flashAndRedirect replaces the session flash and redirects to the index.
func (h *TodoHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind session.Kind, message string) {
	sess := h.sessions.Load(r).WithFlash(kind, message)
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, err)
		return
	}
	shared.Redirect(w, r, "/")
}
