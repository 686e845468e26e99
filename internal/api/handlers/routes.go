package handlers

import (
	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/NexSupply/internal/api/middlewares"
)

// Mount registers every route on r. Session and optional-auth middleware
// must already be installed on r.
func Mount(r chi.Router, auth *middleware.Auth, pages *PageHandler, projects *ProjectHandler, health *HealthHandler) {
	r.Get("/healthz", health.Health)

	r.Get("/", pages.Home)
	r.Post("/analyze", pages.Analyze)
	r.Post("/templates/{mode}", pages.Template)
	r.Post("/demo", pages.Demo)
	r.Post("/reset", pages.Reset)
	r.Get("/report.json", pages.Report)
	r.Post("/consultation", pages.Consultation)
	r.Get("/payment", pages.Payment)
	r.Get("/legal", pages.Legal)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Required)
		api.Get("/profile", projects.Profile)
		api.Get("/projects", projects.ListProjects)
		api.Get("/projects/{id}", projects.GetProject)
		api.Get("/projects/{id}/messages", projects.ListMessages)
	})
}
