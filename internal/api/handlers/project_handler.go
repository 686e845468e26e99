package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	middleware "github.com/markdave123-py/NexSupply/internal/api/middlewares"
	db "github.com/markdave123-py/NexSupply/internal/core/database"
	"github.com/markdave123-py/NexSupply/internal/platform/logger"
	"github.com/markdave123-py/NexSupply/internal/services"
)

// ProjectHandler is the JSON API over the signed-in user's history. Routes
// are mounted behind Auth.Required.
type ProjectHandler struct {
	projects *services.ProjectService
	validate *validator.Validate
	log      *logger.Logger
}

func NewProjectHandler(projects *services.ProjectService, validate *validator.Validate, log *logger.Logger) *ProjectHandler {
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProjectHandler{projects: projects, validate: validate, log: log.With("handler", "ProjectHandler")}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		if err := h.validate.Var(s, "oneof=active completed archived"); err != nil {
			writeError(w, http.StatusBadRequest, "status must be one of active, completed, archived")
			return
		}
		status = &s
	}

	projects, err := h.projects.List(r.Context(), user.ID, status)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.projects.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	msgs, err := h.projects.Messages(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// Profile returns the caller's profile, creating it on first use.
func (h *ProjectHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.projects.EnsureProfile(r.Context(), user.ID, user.Email)
	if err != nil {
		h.fail(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound), errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, db.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "project history is unavailable")
	default:
		h.log.Error("project api failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
