// jobs.go — JobService: список и просмотр документов рекомендаций.
package service

import (
	"context"

	"github.com/veteran/admin-api/internal/domain/model"
	"github.com/veteran/admin-api/internal/storage/jobstore"
)

// JobStore — интерфейс хранилища рекомендаций для JobService.
type JobStore interface {
	ListFiles(ctx context.Context) ([]string, error)
	Get(ctx context.Context, filename string) (*model.Recommendation, error)
	LoadAll(ctx context.Context) ([]*model.Recommendation, []jobstore.LoadFailure, error)
}

// JobList — результат запроса списка рекомендаций.
type JobList struct {
	Items []model.RecommendationSummary `json:"items"`
	// Skipped — документы, пропущенные из-за ошибки разбора
	Skipped []jobstore.LoadFailure `json:"skipped"`
}

// JobService — операции над документами рекомендаций.
type JobService struct {
	store JobStore
}

// NewJobService создаёт JobService.
func NewJobService(store JobStore) *JobService {
	return &JobService{store: store}
}

// Files возвращает имена всех документов.
func (s *JobService) Files(ctx context.Context) ([]string, error) {
	return s.store.ListFiles(ctx)
}

// List загружает документы и применяет запрос к их сводкам
// (имя соискателя, дата создания).
func (s *JobService) List(ctx context.Context, q Query) (*JobList, error) {
	docs, failures, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]model.RecommendationSummary, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.Summary())
	}
	return &JobList{
		Items:   Apply(items, q),
		Skipped: failures,
	}, nil
}

// Get возвращает нормализованный документ.
func (s *JobService) Get(ctx context.Context, filename string) (*model.Recommendation, error) {
	return s.store.Get(ctx, filename)
}

// Postings возвращает вакансии документа для детальной страницы.
func (s *JobService) Postings(ctx context.Context, filename string) ([]model.PostingView, error) {
	rec, err := s.store.Get(ctx, filename)
	if err != nil {
		return nil, err
	}
	return rec.DisplayPostings(), nil
}
