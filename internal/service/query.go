// Пакет service — бизнес-логика Admin API.
// query.go — фильтрация и сортировка строк списков (сессии, рекомендации).
// Операции чистые: не выполняют I/O, не возвращают ошибок
// и не изменяют входной срез.
package service

import (
	"cmp"
	"slices"
	"strings"

	"github.com/veteran/admin-api/internal/domain/model"
)

// Queryable — строка, к которой применимы операции запроса.
type Queryable interface {
	// QueryName — поле для поиска по имени
	QueryName() string
	// QuerySortKey — ключ вида YYYYMMDD[_HHMMSS]
	QuerySortKey() string
}

// Order — направление сортировки.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder разбирает направление сортировки; всё, кроме "asc", — desc.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(OrderAsc)) {
		return OrderAsc
	}
	return OrderDesc
}

// Query — параметры запроса к списку.
type Query struct {
	// Name — подстрока имени (с учётом регистра); пустая — без фильтра
	Name string
	// From, To — границы диапазона дат включительно (YYYYMMDD или YYYY-MM-DD)
	From string
	To   string
	// Order — направление сортировки по дате и времени
	Order Order
}

// Apply применяет запрос: имя → диапазон дат → сортировка.
func Apply[T Queryable](rows []T, q Query) []T {
	out := FilterByName(rows, q.Name)
	out = FilterByDateRange(out, q.From, q.To)
	return Sort(out, q.Order)
}

// FilterByName оставляет строки, имя которых содержит sub.
// Пустая (или из пробелов) подстрока возвращает вход без изменений.
func FilterByName[T Queryable](rows []T, sub string) []T {
	if strings.TrimSpace(sub) == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(r.QueryName(), sub) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDateRange оставляет строки, дата ключа которых лежит в [start, end].
// Пустая граница не ограничивает диапазон. Если обе пусты, вход
// возвращается без изменений. Некорректная граница или ключ без даты
// не совпадают ни с чем.
func FilterByDateRange[T Queryable](rows []T, start, end string) []T {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return rows
	}

	from, fromOK := bound(start)
	to, toOK := bound(end)
	out := make([]T, 0, len(rows))
	if !fromOK || !toOK {
		return out
	}

	for _, r := range rows {
		d, ok := model.DateKey(r.QuerySortKey())
		if !ok {
			continue
		}
		if from != "" && d < from {
			continue
		}
		if to != "" && d > to {
			continue
		}
		out = append(out, r)
	}
	return out
}

// bound нормализует границу; пустая граница валидна и означает «без ограничения».
func bound(s string) (string, bool) {
	if s == "" {
		return "", true
	}
	return model.NormalizeDateBound(s)
}

// Sort возвращает копию, упорядоченную по дате, затем по времени,
// в одном направлении. Сортировка стабильная.
func Sort[T Queryable](rows []T, order Order) []T {
	out := slices.Clone(rows)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := compareKeys(a.QuerySortKey(), b.QuerySortKey())
		if order == OrderAsc {
			return c
		}
		return -c
	})
	return out
}

// compareKeys сравнивает ключи по дате, затем по времени.
func compareKeys(a, b string) int {
	da, _ := model.DateKey(a)
	db, _ := model.DateKey(b)
	if c := cmp.Compare(da, db); c != 0 {
		return c
	}
	return cmp.Compare(model.TimeKey(a), model.TimeKey(b))
}
