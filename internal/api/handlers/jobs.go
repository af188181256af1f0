// jobs.go — обработчики документов рекомендаций вакансий.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/veteran/admin-api/internal/api/errors"
)

// ListJobFiles — GET /api/jobs/files.
func (h *APIHandler) ListJobFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.jobs.Files(r.Context())
	if err != nil {
		h.logger.Error("Ошибка чтения списка рекомендаций", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось прочитать список рекомендаций")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// ListJobs — GET /api/jobs: сводки документов с фильтрами name/from/to/order.
func (h *APIHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobs.List(r.Context(), parseQuery(r))
	if err != nil {
		h.logger.Error("Ошибка загрузки рекомендаций", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось загрузить рекомендации")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetJob — GET /api/jobs/{filename}.
func (h *APIHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	rec, err := h.jobs.Get(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		h.writeStoreError(w, r, err, "Документ рекомендаций не найден")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetJobPostings — GET /api/jobs/{filename}/postings.
func (h *APIHandler) GetJobPostings(w http.ResponseWriter, r *http.Request) {
	views, err := h.jobs.Postings(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		h.writeStoreError(w, r, err, "Документ рекомендаций не найден")
		return
	}
	writeJSON(w, http.StatusOK, views)
}
