// audio.go — потоковая отдача аудиофайлов сессий.
// http.ServeContent обрабатывает Range, If-Modified-Since и Content-Type.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ServeRecording — GET /recordings/{id}/{filename}.
func (h *APIHandler) ServeRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filename := chi.URLParam(r, "filename")

	f, err := h.sessions.OpenAudio(id, filename)
	if err != nil {
		h.writeStoreError(w, r, err, "Аудиофайл не найден")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.writeStoreError(w, r, err, "Аудиофайл не найден")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, filename, info.ModTime(), f)
}
