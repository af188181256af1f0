// summary.go — сводная статистика для главной страницы админки.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/veteran/admin-api/internal/domain/model"
	"github.com/veteran/admin-api/internal/storage/sessionstore"
)

// recentDays — окно «последних дней», включая сегодня.
const recentDays = 7

// weekdayLabels — подписи дней недели, начиная с понедельника.
var weekdayLabels = [7]string{"월", "화", "수", "목", "금", "토", "일"}

// Подписи возрастных групп.
const (
	ageBin60s  = "60대"
	ageBin70s  = "70대"
	ageBin80up = "80대 이상"
)

// DayCount — количество сессий за день недели.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// LabelValue — элемент распределения.
type LabelValue struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Summary — сводная статистика.
type Summary struct {
	TotalSessions int `json:"total_sessions"`
	// JobSeekingRate — доля сессий с is_job_seeking=true среди сессий
	// с метаданными, в процентах с одним знаком
	JobSeekingRate      float64      `json:"job_seeking_rate"`
	TodaySessions       int          `json:"today_sessions"`
	RecentSessions      int          `json:"recent_sessions"`
	WeeklySessionCounts []DayCount   `json:"weekly_session_counts"`
	AgeDistribution     []LabelValue `json:"age_distribution"`
	RegionDistribution  []LabelValue `json:"region_distribution"`
	FieldDistribution   []LabelValue `json:"field_distribution"`
}

// SummaryStore — интерфейс хранилища сессий для SummaryService.
type SummaryStore interface {
	ListSessions(ctx context.Context) ([]string, error)
	Metadata(ctx context.Context, id string) (*model.Metadata, error)
}

// SummaryService — расчёт сводной статистики.
type SummaryService struct {
	store  SummaryStore
	now    func() time.Time
	logger *slog.Logger
}

// NewSummaryService создаёт SummaryService. now == nil означает time.Now.
func NewSummaryService(store SummaryStore, now func() time.Time, logger *slog.Logger) *SummaryService {
	if now == nil {
		now = time.Now
	}
	return &SummaryService{
		store:  store,
		now:    now,
		logger: logger.With(slog.String("component", "summary_service")),
	}
}

// Summary вычисляет статистику по текущему содержимому корня записей.
// Даты сессий берутся из имён папок, в часовом поясе часов сервиса.
func (s *SummaryService) Summary(ctx context.Context) (*Summary, error) {
	ids, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := today.AddDate(0, 0, -(recentDays - 1))

	sum := &Summary{TotalSessions: len(ids)}
	var weekly [7]int
	ages := make(map[string]int)
	regions := make(map[string]int)
	fields := make(map[string]int)
	withMeta, seeking := 0, 0

	for _, id := range ids {
		if d, ok := sessionDate(id, loc); ok {
			if d.Equal(today) {
				sum.TodaySessions++
			}
			if !d.Before(weekStart) && !d.After(today) {
				sum.RecentSessions++
				// time.Weekday: воскресенье = 0
				weekly[(int(d.Weekday())+6)%7]++
			}
		}

		m, err := s.store.Metadata(ctx, id)
		if err != nil {
			if !errors.Is(err, sessionstore.ErrNotFound) {
				s.logger.Warn("Метаданные сессии пропущены в сводке",
					slog.String("session_id", id),
					slog.String("error", err.Error()),
				)
			}
			continue
		}

		withMeta++
		if m.IsJobSeeking != nil && *m.IsJobSeeking {
			seeking++
		}
		if m.Age != nil {
			ages[ageBin(*m.Age)]++
		}
		if r := region(m); r != "" {
			regions[r]++
		}
		for _, f := range m.PreferredFieldTag {
			fields[f]++
		}
	}

	if withMeta > 0 {
		sum.JobSeekingRate = math.Round(float64(seeking)/float64(withMeta)*1000) / 10
	}
	sum.WeeklySessionCounts = make([]DayCount, 0, len(weekdayLabels))
	for i, label := range weekdayLabels {
		sum.WeeklySessionCounts = append(sum.WeeklySessionCounts, DayCount{Day: label, Count: weekly[i]})
	}
	sum.AgeDistribution = distribution(ages)
	sum.RegionDistribution = distribution(regions)
	sum.FieldDistribution = distribution(fields)

	return sum, nil
}

// sessionDate разбирает дату сессии из идентификатора.
func sessionDate(id string, loc *time.Location) (time.Time, bool) {
	d, ok := model.DateKey(id)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("20060102", d, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func ageBin(age int) string {
	switch {
	case age < 70:
		return ageBin60s
	case age < 80:
		return ageBin70s
	default:
		return ageBin80up
	}
}

// region — первое слово location_tag, при его отсутствии — location.
func region(m *model.Metadata) string {
	src := m.LocationTag
	if src == "" {
		src = m.Location
	}
	if f := strings.Fields(src); len(f) > 0 {
		return f[0]
	}
	return ""
}

// distribution превращает счётчики в список, упорядоченный по подписи.
func distribution(counts map[string]int) []LabelValue {
	out := make([]LabelValue, 0, len(counts))
	for label, v := range counts {
		out = append(out, LabelValue{Label: label, Value: v})
	}
	slices.SortFunc(out, func(a, b LabelValue) int { return strings.Compare(a.Label, b.Label) })
	return out
}
