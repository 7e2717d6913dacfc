package activity

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toolindex/toolindex-api/internal/middleware"
	"github.com/toolindex/toolindex-api/internal/pkg/errorhandler"
	"github.com/toolindex/toolindex-api/internal/pkg/response"
)

// Handler exposes the audit trail to admins.
type Handler struct {
	repo     Repository
	exporter *Exporter
}

// NewHandler creates a new activity handler.
func NewHandler(repo Repository, exporter *Exporter) *Handler {
	return &Handler{repo: repo, exporter: exporter}
}

// List handles GET /activity?entity_type=X&entity_id=Y
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entity_type")
	if entityType == "" {
		response.BadRequest(w, "entity_type is required")
		return
	}
	entityID, err := strconv.ParseInt(r.URL.Query().Get("entity_id"), 10, 64)
	if err != nil || entityID <= 0 {
		response.BadRequest(w, "Invalid entity_id")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.repo.ListByEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		errorhandler.HandleError(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
		return
	}
	response.OK(w, entries)
}

// Export handles POST /activity/export?from=2026-08-01&to=2026-09-01
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		response.BadRequest(w, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		response.BadRequest(w, "Invalid to date, expected YYYY-MM-DD")
		return
	}
	if !to.After(from) {
		response.BadRequest(w, "to must be after from")
		return
	}

	key, err := h.exporter.ExportRange(r.Context(), from, to)
	if err != nil {
		errorhandler.HandleError(r, w, http.StatusServiceUnavailable, "DEPENDENCY_FAILED", "A required service is unavailable, please try again", err)
		return
	}
	response.OK(w, map[string]string{"key": key})
}

// Routes returns the activity router, admin only
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth)
	r.Use(middleware.RequireAdmin())

	r.Get("/", h.List)
	r.Post("/export", h.Export)

	return r
}
