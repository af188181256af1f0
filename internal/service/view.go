package service

import (
	"fmt"

	"github.com/veteran/admin-api/internal/domain/model"
)

// BuildRows строит строки таблицы истории из списка сессий и их метаданных.
// Повторяющиеся идентификаторы пропускаются (остаётся первое вхождение).
// Номер строки — позиция в списке без повторов, три цифры с ведущими нулями;
// назначается до любой фильтрации и сортировки.
// Отсутствующие метаданные дают Placeholder в имени и возрасте и matched=nil.
func BuildRows(ids []string, meta map[string]*model.Metadata) []model.ViewRow {
	rows := make([]model.ViewRow, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		m := meta[id]
		row := model.ViewRow{
			ID:      fmt.Sprintf("%03d", len(rows)+1),
			Date:    model.FormatDate(id),
			Time:    model.FormatTime(id),
			Name:    m.NameText(),
			Age:     m.AgeText(),
			SortKey: id,
		}
		if m != nil && m.IsJobSeeking != nil {
			v := *m.IsJobSeeking
			row.Matched = &v
		}
		rows = append(rows, row)
	}
	return rows
}
