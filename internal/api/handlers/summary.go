package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/veteran/admin-api/internal/api/errors"
)

// GetSummary — GET /api/summary.
func (h *APIHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.summary.Summary(r.Context())
	if err != nil {
		h.logger.Error("Ошибка расчёта сводки", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось рассчитать сводку")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
