package moderation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toolindex/toolindex-api/internal/middleware"
)

// Routes returns the moderation router. Sanctioned users keep access to
// their own standing and to appeals; only reporting requires good standing.
func (h *Handler) Routes(auth func(http.Handler) http.Handler, gate middleware.AccessGate) chi.Router {
	r := chi.NewRouter()
	r.Use(auth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccess(gate))
		r.Post("/reports", h.CreateReport)
	})

	r.Post("/actions/{id}/appeal", h.FileAppeal)
	r.Get("/users/{id}/status", h.GetUserStatus)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireModerator())
		r.Get("/reports", h.ListReports)
		r.Get("/reports/{id}", h.GetReport)
		r.Post("/reports/{id}/decision", h.RecordDecision)
		r.Get("/queue", h.ListQueue)
		r.Post("/queue/{id}/assign", h.AssignEntry)
		r.Post("/queue/{id}/unassign", h.UnassignEntry)
		r.Post("/actions", h.ApplyAction)
		r.Get("/actions/{id}", h.GetAction)
		r.Get("/users/{id}/actions", h.ListUserActions)
		r.Get("/stats", h.GetStatistics)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Get("/appeals", h.ListAppeals)
		r.Post("/appeals/{id}/review", h.ReviewAppeal)
	})

	return r
}
