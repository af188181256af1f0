package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/veteran/admin-api/internal/api/errors"
)

// RegisterRoutes регистрирует все маршруты Admin API на роутере.
func RegisterRoutes(r chi.Router, api *APIHandler, health *HealthHandler) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.NotFound(w, "Маршрут не найден")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.MethodNotAllowed(w, "Метод не поддерживается")
	})

	r.Get("/health/live", health.HealthLive)
	r.Get("/health/ready", health.HealthReady)
	r.Get("/metrics", health.GetMetrics)

	r.Get("/recordings/{id}/{filename}", api.ServeRecording)

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", api.GetSummary)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", api.ListSessions)
			r.Get("/rows", api.ListSessionRows)
			r.Get("/{id}/metadata", api.GetSessionMetadata)
			r.Patch("/{id}/metadata", api.PatchSessionMetadata)
			r.Get("/{id}/transcript", api.GetSessionTranscript)
			r.Get("/{id}/audios", api.ListSessionAudios)
			r.Get("/{id}/jobfiles", api.ListSessionJobFiles)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", api.ListJobs)
			r.Get("/files", api.ListJobFiles)
			r.Get("/{filename}", api.GetJob)
			r.Get("/{filename}/postings", api.GetJobPostings)
		})
	})
}
