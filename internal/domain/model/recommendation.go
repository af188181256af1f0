// recommendation.go — документ рекомендаций вакансий для соискателя.
// Файл {person}_{date}.json: профиль соискателя, время генерации
// и упорядоченный список рекомендаций с unified score.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ApplyPeriod — срок приёма заявок.
type ApplyPeriod struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// JobPosting — вакансия из рекомендации.
type JobPosting struct {
	Title       string       `json:"title"`
	Company     string       `json:"company"`
	Address     string       `json:"address"`
	DistanceKm  *float64     `json:"distanceKm,omitempty"`
	Details     string       `json:"details,omitempty"`
	AgeLimit    string       `json:"ageLimit,omitempty"`
	ApplyPeriod *ApplyPeriod `json:"applyPeriod,omitempty"`
	ApplyMethod string       `json:"applyMethod,omitempty"`
	Contact     string       `json:"contact,omitempty"`
	Homepage    string       `json:"homepage,omitempty"`
}

// RecommendationEntry — одна рекомендация.
// Записи без JobPosting сохраняются в документе и отсекаются
// только при построении представления (DisplayPostings).
type RecommendationEntry struct {
	Rank         int         `json:"rank,omitempty"`
	UnifiedScore float64     `json:"unifiedScore"`
	Reason       string      `json:"reason"`
	JobPosting   *JobPosting `json:"jobPosting,omitempty"`

	// Occupation — блок профессии из документов старого формата, передаётся как есть
	Occupation json.RawMessage `json:"occupation,omitempty"`
}

// Recommendation — нормализованный документ рекомендаций.
type Recommendation struct {
	Filename        string                `json:"filename"`
	GeneratedAt     string                `json:"generatedAt,omitempty"`
	JobSeeker       *Metadata             `json:"jobSeeker"`
	Recommendations []RecommendationEntry `json:"recommendations"`
}

// recommendationWire — формат документа на диске.
type recommendationWire struct {
	GeneratedAt     string                     `json:"generatedAt"`
	JobSeeker       map[string]json.RawMessage `json:"jobSeeker"`
	Recommendations []RecommendationEntry      `json:"recommendations"`
}

// ParseRecommendation разбирает документ рекомендаций и нормализует профиль.
func ParseRecommendation(filename string, data []byte) (*Recommendation, error) {
	var wire recommendationWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("разбор документа %s: %w", filename, err)
	}
	recs := wire.Recommendations
	if recs == nil {
		recs = []RecommendationEntry{}
	}
	return &Recommendation{
		Filename:        filename,
		GeneratedAt:     wire.GeneratedAt,
		JobSeeker:       NormalizeMetadata(wire.JobSeeker),
		Recommendations: recs,
	}, nil
}

// filenameDate — дата в имени файла: {person}_YYYYMMDD[_HHMMSS].json
var filenameDate = regexp.MustCompile(`_(\d{8})(?:_\d{6})?\.json$`)

// CreatedKey возвращает дату создания документа (YYYYMMDD).
// Источник — дата из generatedAt, при её отсутствии — дата из имени файла.
func (r *Recommendation) CreatedKey() string {
	if len(r.GeneratedAt) >= 10 {
		if d, ok := NormalizeDateBound(r.GeneratedAt[:10]); ok {
			return d
		}
	}
	if m := filenameDate.FindStringSubmatch(r.Filename); m != nil {
		return m[1]
	}
	return ""
}

// PersonName возвращает имя соискателя; при пустом профиле — часть имени файла до даты.
func (r *Recommendation) PersonName() string {
	if r.JobSeeker != nil && r.JobSeeker.Name != "" {
		return r.JobSeeker.Name
	}
	name := strings.TrimSuffix(r.Filename, ".json")
	if loc := filenameDate.FindStringIndex(r.Filename); loc != nil {
		name = r.Filename[:loc[0]]
	}
	return name
}

// RecommendationSummary — строка списка документов рекомендаций.
type RecommendationSummary struct {
	Filename  string   `json:"filename"`
	Name      string   `json:"name"`
	Created   string   `json:"created"`
	TopTitles []string `json:"top_titles"`

	// createdKey — дата создания YYYYMMDD для фильтрации и сортировки
	createdKey string
}

// QueryName возвращает имя соискателя для поиска.
func (s RecommendationSummary) QueryName() string { return s.Name }

// QuerySortKey возвращает дату создания (YYYYMMDD), времени нет.
func (s RecommendationSummary) QuerySortKey() string { return s.createdKey }

// topTitlesLimit — сколько вакансий показывается в карточке списка.
const topTitlesLimit = 3

// Summary строит строку списка для документа.
func (r *Recommendation) Summary() RecommendationSummary {
	key := r.CreatedKey()
	titles := make([]string, 0, topTitlesLimit)
	for _, e := range r.Recommendations {
		if e.JobPosting == nil {
			continue
		}
		titles = append(titles, e.JobPosting.Title)
		if len(titles) == topTitlesLimit {
			break
		}
	}
	return RecommendationSummary{
		Filename:   r.Filename,
		Name:       r.PersonName(),
		Created:    FormatDate(key),
		TopTitles:  titles,
		createdKey: key,
	}
}

// PostingView — вакансия в представлении детальной страницы.
type PostingView struct {
	Rank          int           `json:"rank"`
	Posting       *JobPosting   `json:"jobPosting"`
	UnifiedScore  float64       `json:"unifiedScore"`
	ScorePercent  float64       `json:"score_percent"`
	Category      ScoreCategory `json:"category"`
	Reason        string        `json:"reason"`
	ReasonSummary string        `json:"reason_summary"`
}

// DisplayPostings возвращает рекомендации с вакансией в исходном порядке,
// с категорией, процентом (1 знак) и первым предложением обоснования.
func (r *Recommendation) DisplayPostings() []PostingView {
	out := make([]PostingView, 0, len(r.Recommendations))
	for i, e := range r.Recommendations {
		if e.JobPosting == nil {
			continue
		}
		rank := e.Rank
		if rank == 0 {
			rank = i + 1
		}
		out = append(out, PostingView{
			Rank:          rank,
			Posting:       e.JobPosting,
			UnifiedScore:  e.UnifiedScore,
			ScorePercent:  math.Round(e.UnifiedScore*1000) / 10,
			Category:      ClassifyScore(e.UnifiedScore),
			Reason:        e.Reason,
			ReasonSummary: firstSentence(e.Reason),
		})
	}
	return out
}

// firstSentence возвращает текст до первой точки включительно.
func firstSentence(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i+1]
	}
	return s
}
