// handler.go — основной обработчик API: зависимости, разбор параметров
// запроса и сопоставление ошибок хранилищ с HTTP-ответами.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	apierrors "github.com/veteran/admin-api/internal/api/errors"
	"github.com/veteran/admin-api/internal/domain/model"
	"github.com/veteran/admin-api/internal/service"
	"github.com/veteran/admin-api/internal/storage/attr"
	"github.com/veteran/admin-api/internal/storage/jobstore"
	"github.com/veteran/admin-api/internal/storage/sessionstore"
)

// SessionService — операции над сессиями, нужные обработчикам.
type SessionService interface {
	List(ctx context.Context, refresh bool) ([]string, error)
	Rows(ctx context.Context, q service.Query, refresh bool) ([]model.ViewRow, error)
	Metadata(ctx context.Context, id string) (*model.Metadata, error)
	Transcript(ctx context.Context, id string) (string, error)
	AudioFiles(ctx context.Context, id string) ([]string, error)
	JobFiles(ctx context.Context, id string) ([]string, error)
	SetJobSeeking(ctx context.Context, id string, seeking bool) (attr.Document, error)
	OpenAudio(id, filename string) (*os.File, error)
}

// JobService — операции над документами рекомендаций.
type JobService interface {
	Files(ctx context.Context) ([]string, error)
	List(ctx context.Context, q service.Query) (*service.JobList, error)
	Get(ctx context.Context, filename string) (*model.Recommendation, error)
	Postings(ctx context.Context, filename string) ([]model.PostingView, error)
}

// SummaryService — сводная статистика.
type SummaryService interface {
	Summary(ctx context.Context) (*service.Summary, error)
}

// APIHandler — основной обработчик API Admin API.
type APIHandler struct {
	sessions SessionService
	jobs     JobService
	summary  SummaryService
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	sessions SessionService,
	jobs JobService,
	summary SummaryService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		sessions: sessions,
		jobs:     jobs,
		summary:  summary,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeStoreError сопоставляет ошибку хранилища с ответом:
// не найдено → 404, повреждённый документ → 500 PARSE_ERROR, прочее → 500.
func (h *APIHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, sessionstore.ErrNotFound), errors.Is(err, jobstore.ErrNotFound):
		apierrors.NotFound(w, notFoundMsg)
	case errors.Is(err, sessionstore.ErrParse), errors.Is(err, jobstore.ErrParse):
		h.logger.Error("Повреждённый документ",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.ParseError(w, "Документ повреждён и не может быть прочитан")
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}

// parseQuery разбирает параметры name, from, to, order.
func parseQuery(r *http.Request) service.Query {
	q := r.URL.Query()
	return service.Query{
		Name:  q.Get("name"),
		From:  q.Get("from"),
		To:    q.Get("to"),
		Order: service.ParseOrder(q.Get("order")),
	}
}

// parseRefresh разбирает флаг refresh; пустое значение — false.
func parseRefresh(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("refresh")
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
