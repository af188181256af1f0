// sessions.go — SessionService: список сессий, строки истории,
// метаданные и отметка статуса поиска работы.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/veteran/admin-api/internal/domain/model"
	"github.com/veteran/admin-api/internal/storage/attr"
	"github.com/veteran/admin-api/internal/storage/sessionstore"
)

// FieldIsJobSeeking — ключ статуса поиска работы в metadata.json.
const FieldIsJobSeeking = "is_job_seeking"

var metadataPatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "va_metadata_patches_total",
	Help: "Количество обновлений metadata.json по результату.",
}, []string{"result"})

// SessionStore — интерфейс хранилища сессий для SessionService.
type SessionStore interface {
	ListSessions(ctx context.Context) ([]string, error)
	Metadata(ctx context.Context, id string) (*model.Metadata, error)
	Transcript(ctx context.Context, id string) (string, error)
	AudioFiles(ctx context.Context, id string) ([]string, error)
	JobFiles(ctx context.Context, id string) ([]string, error)
	PatchMetadata(ctx context.Context, id string, fields attr.Document) (attr.Document, error)
	OpenAudio(id, filename string) (*os.File, error)
}

// SessionService — операции над сессиями консультаций.
type SessionService struct {
	store  SessionStore
	cache  *SessionListCache
	logger *slog.Logger
}

// NewSessionService создаёт SessionService. cache может быть nil.
func NewSessionService(store SessionStore, cache *SessionListCache, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "session_service")),
	}
}

// List возвращает отсортированный список сессий.
// refresh=true сбрасывает кэш перед чтением.
func (s *SessionService) List(ctx context.Context, refresh bool) ([]string, error) {
	if s.cache != nil {
		if refresh {
			s.cache.Invalidate()
		} else if ids, ok := s.cache.Get(); ok {
			return ids, nil
		}
	}

	ids, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ids)
	}
	return ids, nil
}

// Invalidate сбрасывает кэш списка сессий.
func (s *SessionService) Invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

// Rows строит строки истории и применяет к ним запрос.
// Повреждённые метаданные отдельной сессии логируются и считаются отсутствующими.
func (s *SessionService) Rows(ctx context.Context, q Query, refresh bool) ([]model.ViewRow, error) {
	ids, err := s.List(ctx, refresh)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]*model.Metadata, len(ids))
	for _, id := range ids {
		m, err := s.store.Metadata(ctx, id)
		switch {
		case err == nil:
			meta[id] = m
		case errors.Is(err, sessionstore.ErrNotFound):
		case errors.Is(err, sessionstore.ErrParse):
			s.logger.Warn("Метаданные сессии повреждены",
				slog.String("session_id", id),
				slog.String("error", err.Error()),
			)
		default:
			return nil, err
		}
	}

	return Apply(BuildRows(ids, meta), q), nil
}

// Metadata возвращает каноническую запись метаданных сессии.
func (s *SessionService) Metadata(ctx context.Context, id string) (*model.Metadata, error) {
	return s.store.Metadata(ctx, id)
}

// Transcript возвращает расшифровку сессии.
func (s *SessionService) Transcript(ctx context.Context, id string) (string, error) {
	return s.store.Transcript(ctx, id)
}

// AudioFiles возвращает список аудиофайлов сессии.
func (s *SessionService) AudioFiles(ctx context.Context, id string) ([]string, error) {
	return s.store.AudioFiles(ctx, id)
}

// JobFiles возвращает файлы результатов рекомендаций в папке сессии.
func (s *SessionService) JobFiles(ctx context.Context, id string) ([]string, error) {
	return s.store.JobFiles(ctx, id)
}

// OpenAudio открывает аудиофайл сессии.
func (s *SessionService) OpenAudio(id, filename string) (*os.File, error) {
	return s.store.OpenAudio(id, filename)
}

// SetJobSeeking записывает статус поиска работы, сохраняя остальные поля.
// Возвращает документ после слияния.
func (s *SessionService) SetJobSeeking(ctx context.Context, id string, seeking bool) (attr.Document, error) {
	value, err := json.Marshal(seeking)
	if err != nil {
		return nil, fmt.Errorf("сериализация статуса: %w", err)
	}

	doc, err := s.store.PatchMetadata(ctx, id, attr.Document{FieldIsJobSeeking: value})
	if err != nil {
		metadataPatchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metadataPatchesTotal.WithLabelValues("ok").Inc()

	s.logger.Info("Статус поиска работы обновлён",
		slog.String("session_id", id),
		slog.Bool("is_job_seeking", seeking),
	)
	return doc, nil
}

// BackfillResult — итог массовой отметки статуса.
type BackfillResult struct {
	Updated int
	Skipped int
	Failed  int
}

// BackfillJobSeeking проставляет is_job_seeking=false всем сессиям,
// у которых есть metadata.json. Сессии без метаданных пропускаются.
func (s *SessionService) BackfillJobSeeking(ctx context.Context) (BackfillResult, error) {
	var res BackfillResult

	ids, err := s.List(ctx, true)
	if err != nil {
		return res, err
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := s.store.Metadata(ctx, id); err != nil {
			if errors.Is(err, sessionstore.ErrNotFound) {
				res.Skipped++
				continue
			}
			s.logger.Warn("Сессия пропущена", slog.String("session_id", id), slog.String("error", err.Error()))
			res.Failed++
			continue
		}
		if _, err := s.SetJobSeeking(ctx, id, false); err != nil {
			s.logger.Warn("Ошибка обновления сессии", slog.String("session_id", id), slog.String("error", err.Error()))
			res.Failed++
			continue
		}
		res.Updated++
	}
	return res, nil
}
