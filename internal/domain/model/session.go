// Пакет model — доменные модели Admin API.
// Session — запись консультации, идентифицируемая ключом вида YYYYMMDD_HHMMSS.
// ViewRow — производная плоская строка для табличного отображения истории.
package model

// Позиции символов в идентификаторе сессии (YYYYMMDD_HHMMSS).
const (
	sessionDateLen  = 8
	sessionTimeFrom = 9
	sessionTimeTo   = 15
)

// Placeholder — значение, которым отображаются отсутствующие поля.
const Placeholder = "-"

// ViewRow — строка таблицы истории консультаций.
// Строится из списка сессий и их метаданных, на диск не сохраняется.
type ViewRow struct {
	// ID — порядковый номер сессии в исходном списке (001, 002, ...).
	// Назначается до фильтрации и сортировки и не меняется при них.
	ID string `json:"id"`
	// Date — дата консультации (YYYY-MM-DD) или Placeholder
	Date string `json:"date"`
	// Time — время консультации (HH:MM) или Placeholder
	Time string `json:"time"`
	// Name — имя из метаданных или Placeholder
	Name string `json:"name"`
	// Age — возраст из метаданных или Placeholder
	Age string `json:"age"`
	// Matched — признак поиска работы; nil, если метаданных нет.
	// Сериализуется как null, никогда не опускается.
	Matched *bool `json:"matched"`
	// SortKey — идентификатор сессии, используется как ключ сортировки
	SortKey string `json:"sort_key"`
}

// QueryName возвращает поле для поиска по имени.
func (r ViewRow) QueryName() string { return r.Name }

// QuerySortKey возвращает ключ сортировки (идентификатор сессии).
func (r ViewRow) QuerySortKey() string { return r.SortKey }

// DateKey извлекает 8-символьную дату (YYYYMMDD) из ключа.
// Возвращает false, если ключ короче или дата содержит не-цифры.
func DateKey(key string) (string, bool) {
	if len(key) < sessionDateLen {
		return "", false
	}
	d := key[:sessionDateLen]
	if !allDigits(d) {
		return "", false
	}
	return d, true
}

// TimeKey извлекает 6-символьное время (HHMMSS) из ключа сессии.
// Для ключей без времени (например, даты рекомендаций) возвращает "".
func TimeKey(key string) string {
	if len(key) < sessionTimeTo || key[sessionDateLen] != '_' {
		return ""
	}
	return key[sessionTimeFrom:sessionTimeTo]
}

// FormatDate форматирует дату сессии как YYYY-MM-DD.
func FormatDate(key string) string {
	d, ok := DateKey(key)
	if !ok {
		return Placeholder
	}
	return d[0:4] + "-" + d[4:6] + "-" + d[6:8]
}

// FormatTime форматирует время сессии как HH:MM.
func FormatTime(key string) string {
	t := TimeKey(key)
	if t == "" || !allDigits(t) {
		return Placeholder
	}
	return t[0:2] + ":" + t[2:4]
}

// NormalizeDateBound приводит границу диапазона (YYYYMMDD или YYYY-MM-DD)
// к формату YYYYMMDD. Возвращает false для некорректного значения.
func NormalizeDateBound(s string) (string, bool) {
	switch len(s) {
	case 8:
		if allDigits(s) {
			return s, true
		}
	case 10:
		if s[4] == '-' && s[7] == '-' {
			d := s[0:4] + s[5:7] + s[8:10]
			if allDigits(d) {
				return d, true
			}
		}
	}
	return "", false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
