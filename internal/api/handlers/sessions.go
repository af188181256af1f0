// sessions.go — обработчики сессий консультаций.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/veteran/admin-api/internal/api/errors"
)

// maxPatchBodySize — максимальный размер тела PATCH (64 КБ).
const maxPatchBodySize = 64 << 10

// patchMetadataRequest — тело PATCH /api/sessions/{id}/metadata.
type patchMetadataRequest struct {
	IsJobSeeking *bool `json:"is_job_seeking"`
}

// ListSessions — GET /api/sessions.
func (h *APIHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	refresh, err := parseRefresh(r)
	if err != nil {
		apierrors.ValidationError(w, "Параметр refresh должен быть булевым значением")
		return
	}

	ids, err := h.sessions.List(r.Context(), refresh)
	if err != nil {
		// Отсутствие корня записей — ошибка конфигурации, а не 404
		h.logger.Error("Ошибка чтения списка сессий", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось прочитать список сессий")
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// ListSessionRows — GET /api/sessions/rows.
func (h *APIHandler) ListSessionRows(w http.ResponseWriter, r *http.Request) {
	refresh, err := parseRefresh(r)
	if err != nil {
		apierrors.ValidationError(w, "Параметр refresh должен быть булевым значением")
		return
	}

	rows, err := h.sessions.Rows(r.Context(), parseQuery(r), refresh)
	if err != nil {
		h.logger.Error("Ошибка построения строк истории", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось прочитать список сессий")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetSessionMetadata — GET /api/sessions/{id}/metadata.
func (h *APIHandler) GetSessionMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	meta, err := h.sessions.Metadata(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "Метаданные сессии не найдены")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// PatchSessionMetadata — PATCH /api/sessions/{id}/metadata.
// Тело: {"is_job_seeking": bool}. Остальные поля документа сохраняются.
func (h *APIHandler) PatchSessionMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxPatchBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req patchMetadataRequest
	if err := dec.Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		apierrors.ValidationError(w, "Тело запроса должно содержать один JSON-объект")
		return
	}
	if req.IsJobSeeking == nil {
		apierrors.ValidationError(w, "Поле is_job_seeking обязательно")
		return
	}

	doc, err := h.sessions.SetJobSeeking(r.Context(), id, *req.IsJobSeeking)
	if err != nil {
		h.writeStoreError(w, r, err, "Сессия не найдена")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GetSessionTranscript — GET /api/sessions/{id}/transcript.
func (h *APIHandler) GetSessionTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	text, err := h.sessions.Transcript(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "Расшифровка не найдена")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

// ListSessionAudios — GET /api/sessions/{id}/audios.
func (h *APIHandler) ListSessionAudios(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	files, err := h.sessions.AudioFiles(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "Сессия не найдена")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// ListSessionJobFiles — GET /api/sessions/{id}/jobfiles.
func (h *APIHandler) ListSessionJobFiles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	files, err := h.sessions.JobFiles(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "Сессия не найдена")
		return
	}
	writeJSON(w, http.StatusOK, files)
}
