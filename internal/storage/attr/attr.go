// Пакет attr — чтение и запись JSON-документов сессий (metadata.json).
// Документ хранится как набор сырых JSON-значений верхнего уровня, поэтому
// частичное обновление сохраняет поля, о которых код ничего не знает.
// Все операции записи выполняются атомарно: temp → fsync → rename.
package attr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Document — JSON-объект верхнего уровня.
type Document map[string]json.RawMessage

// maxDocumentSize — максимальный допустимый размер документа (1 МБ).
const maxDocumentSize = 1 << 20

// Write атомарно записывает документ в файл.
// Паттерн: JSON → уникальный temp файл → fsync → atomic rename.
// Уникальное имя temp файла не даёт двум одновременным записям
// испортить друг другу промежуточный файл; побеждает последний rename.
func Write(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации документа: %w", err)
	}

	if len(data) > maxDocumentSize {
		return fmt.Errorf("размер документа (%d байт) превышает максимум (%d байт)", len(data), maxDocumentSize)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.New().String()[:8])

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

// Read читает и десериализует документ.
// Ошибка чтения оборачивает исходную (os.ErrNotExist проверяется через errors.Is),
// невалидный JSON возвращается как *json.SyntaxError / *json.UnmarshalTypeError.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения документа %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ошибка десериализации документа %s: %w", path, err)
	}
	if doc == nil {
		// Файл содержит null
		doc = Document{}
	}

	return doc, nil
}

// Merge копирует поля patch поверх doc и возвращает doc.
// Слияние только верхнего уровня: вложенные объекты заменяются целиком.
func Merge(doc, patch Document) Document {
	if doc == nil {
		doc = Document{}
	}
	for k, v := range patch {
		doc[k] = v
	}
	return doc
}
