// metadata.go — каноническая запись профиля соискателя.
// Документы встречаются в двух версиях: snake_case (новая, её пишет
// пайплайн рекомендаций) и camelCase (старая). Нормализация выполняется
// один раз на границе хранилища; при наличии обоих ключей побеждает snake_case.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// CareerEntry — запись об опыте работы.
type CareerEntry struct {
	// Org — организация
	Org string `json:"org,omitempty"`
	// Title — должность
	Title string `json:"title,omitempty"`
	// Years — стаж (в исходных документах число или строка)
	Years string `json:"years,omitempty"`
	// Description — свободный текст, если опыт записан одной строкой
	Description string `json:"description,omitempty"`
}

// Metadata — каноническое представление метаданных сессии
// и профиля соискателя в документе рекомендаций.
type Metadata struct {
	UserID            string        `json:"user_id,omitempty"`
	CreatedAt         string        `json:"created_at,omitempty"`
	Name              string        `json:"name,omitempty"`
	Age               *int          `json:"age,omitempty"`
	Location          string        `json:"location,omitempty"`
	LocationTag       string        `json:"location_tag,omitempty"`
	AvailableTime     string        `json:"available_time,omitempty"`
	Licenses          []string      `json:"license,omitempty"`
	PreferredFields   []string      `json:"preferred_field,omitempty"`
	PreferredFieldTag []string      `json:"preferred_field_tag,omitempty"`
	HealthCondition   string        `json:"health_condition,omitempty"`
	Education         string        `json:"education,omitempty"`
	Career            []CareerEntry `json:"career,omitempty"`

	// IsJobSeeking — nil, если флаг в документе отсутствует
	IsJobSeeking *bool `json:"is_job_seeking,omitempty"`
}

// Ключи документа в порядке приоритета: первым идёт snake_case.
var (
	keysAvailableTime   = []string{"available_time", "availableTime"}
	keysLicense         = []string{"license", "licenses"}
	keysPreferredField  = []string{"preferred_field", "preferredFields"}
	keysHealthCondition = []string{"health_condition", "healthCondition"}

	// carrer — опечатка старых документов, читается только как алиас
	keysCareer = []string{"career", "carrer"}
)

// NormalizeMetadata строит каноническую запись из сырого JSON-документа.
// Для каждого поля берётся первый ключ из списка приоритета, содержащий
// пригодное (не null и не пустое) значение. Неизвестные ключи игнорируются.
func NormalizeMetadata(raw map[string]json.RawMessage) *Metadata {
	return &Metadata{
		UserID:            firstText(raw, "user_id"),
		CreatedAt:         firstText(raw, "created_at"),
		Name:              firstText(raw, "name"),
		Age:               intField(raw, "age"),
		Location:          firstText(raw, "location"),
		LocationTag:       firstText(raw, "location_tag"),
		AvailableTime:     firstText(raw, keysAvailableTime...),
		Licenses:          firstList(raw, keysLicense...),
		PreferredFields:   firstList(raw, keysPreferredField...),
		PreferredFieldTag: firstList(raw, "preferred_field_tag"),
		HealthCondition:   firstText(raw, keysHealthCondition...),
		Education:         firstText(raw, "education"),
		Career:            careerField(raw, keysCareer...),
		IsJobSeeking:      boolField(raw, "is_job_seeking"),
	}
}

// AgeText возвращает возраст строкой или Placeholder.
func (m *Metadata) AgeText() string {
	if m == nil || m.Age == nil {
		return Placeholder
	}
	return strconv.Itoa(*m.Age)
}

// NameText возвращает имя или Placeholder.
func (m *Metadata) NameText() string {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return Placeholder
	}
	return m.Name
}

// --- Вспомогательные функции разбора ---

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// rawText возвращает строковое представление строки или числа.
func rawText(v json.RawMessage) (string, bool) {
	if isNull(v) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func firstText(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if s, ok := rawText(raw[k]); ok {
			return s
		}
	}
	return ""
}

// rawList принимает как список строк, так и одиночную строку.
func rawList(v json.RawMessage) ([]string, bool) {
	if isNull(v) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := rawText(it); ok {
				out = append(out, s)
			}
		}
		return out, len(out) > 0
	}
	if s, ok := rawText(v); ok {
		return []string{s}, true
	}
	return nil, false
}

func firstList(raw map[string]json.RawMessage, keys ...string) []string {
	for _, k := range keys {
		if l, ok := rawList(raw[k]); ok {
			return l
		}
	}
	return nil
}

func intField(raw map[string]json.RawMessage, key string) *int {
	s, ok := rawText(raw[key])
	if !ok {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

func boolField(raw map[string]json.RawMessage, key string) *bool {
	v := raw[key]
	if isNull(v) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return nil
	}
	return &b
}

func careerField(raw map[string]json.RawMessage, keys ...string) []CareerEntry {
	for _, k := range keys {
		if c := parseCareer(raw[k]); len(c) > 0 {
			return c
		}
	}
	return nil
}

// parseCareer разбирает опыт: строка, список строк или список объектов.
func parseCareer(v json.RawMessage) []CareerEntry {
	if isNull(v) {
		return nil
	}
	if s, ok := rawText(v); ok {
		return []CareerEntry{{Description: s}}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}
	out := make([]CareerEntry, 0, len(items))
	for _, it := range items {
		if s, ok := rawText(it); ok {
			out = append(out, CareerEntry{Description: s})
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(it, &obj); err != nil {
			continue
		}
		e := CareerEntry{
			Org:   firstText(obj, "org"),
			Title: firstText(obj, "title"),
			Years: firstText(obj, "years"),
		}
		if e != (CareerEntry{}) {
			out = append(out, e)
		}
	}
	return out
}
