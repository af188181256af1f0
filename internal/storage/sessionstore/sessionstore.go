// Пакет sessionstore — доступ к папкам сессий консультаций.
// Корень записей содержит по одной директории на сессию (YYYYMMDD_HHMMSS)
// с файлами metadata.json, transcript.txt и аудиофрагментами.
// Документы метаданных нормализуются при чтении (см. model.NormalizeMetadata).
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/veteran/admin-api/internal/domain/model"
	"github.com/veteran/admin-api/internal/storage/attr"
)

// Имена файлов внутри папки сессии.
const (
	MetadataFile   = "metadata.json"
	TranscriptFile = "transcript.txt"
)

// Ошибки хранилища сессий.
var (
	// ErrNotFound — сессия или файл не найдены
	ErrNotFound = errors.New("не найдено")
	// ErrAccess — нет доступа к файловой системе
	ErrAccess = errors.New("нет доступа")
	// ErrParse — документ не является валидным JSON
	ErrParse = errors.New("ошибка разбора документа")
)

// Store — доступ к сессиям в корневой директории записей.
type Store struct {
	root     string
	audioExt string
}

// New создаёт Store. audioExt — расширение аудиофайлов (например, ".wav").
func New(root, audioExt string) *Store {
	if audioExt != "" && !strings.HasPrefix(audioExt, ".") {
		audioExt = "." + audioExt
	}
	return &Store{root: root, audioExt: strings.ToLower(audioExt)}
}

// Root возвращает корневую директорию записей.
func (s *Store) Root() string {
	return s.root
}

// ListSessions возвращает отсортированный список идентификаторов сессий
// (имён поддиректорий корня) без повторов.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, wrapFS(err, "чтение корня записей %s", s.root)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Metadata читает и нормализует метаданные сессии.
func (s *Store) Metadata(ctx context.Context, id string) (*model.Metadata, error) {
	raw, err := s.RawMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.NormalizeMetadata(raw), nil
}

// RawMetadata читает документ метаданных сессии без нормализации.
func (s *Store) RawMetadata(ctx context.Context, id string) (attr.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.sessionDir(id)
	if err != nil {
		return nil, err
	}

	doc, err := attr.Read(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, classifyReadErr(err, "метаданные сессии %s", id)
	}
	return doc, nil
}

// Transcript возвращает текст расшифровки сессии.
func (s *Store) Transcript(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := s.sessionDir(id)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(dir, TranscriptFile))
	if err != nil {
		return "", wrapFS(err, "расшифровка сессии %s", id)
	}
	return string(data), nil
}

// AudioFiles возвращает отсортированные имена аудиофайлов сессии.
// Пустой срез, если аудио нет; ErrNotFound, если нет папки сессии.
func (s *Store) AudioFiles(ctx context.Context, id string) ([]string, error) {
	return s.listFiles(ctx, id, func(name string) bool {
		return strings.ToLower(filepath.Ext(name)) == s.audioExt
	})
}

// JobFiles возвращает JSON-файлы результатов рекомендаций в папке сессии
// (все .json, кроме metadata*).
func (s *Store) JobFiles(ctx context.Context, id string) ([]string, error) {
	return s.listFiles(ctx, id, func(name string) bool {
		return strings.ToLower(filepath.Ext(name)) == ".json" &&
			!strings.HasPrefix(name, "metadata")
	})
}

// PatchMetadata сливает поля fields с документом метаданных сессии
// и атомарно сохраняет результат. Если документа нет, он создаётся.
// Возвращает документ после слияния.
// Параллельные вызовы не портят файл; побеждает последняя запись.
func (s *Store) PatchMetadata(ctx context.Context, id string, fields attr.Document) (attr.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.existingSessionDir(id)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, MetadataFile)
	doc, err := attr.Read(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		doc = attr.Document{}
	default:
		return nil, classifyReadErr(err, "метаданные сессии %s", id)
	}

	doc = attr.Merge(doc, fields)
	if err := attr.Write(path, doc); err != nil {
		return nil, wrapFS(err, "запись метаданных сессии %s", id)
	}
	return doc, nil
}

// OpenAudio открывает аудиофайл сессии для потоковой отдачи.
// Вызывающий код обязан закрыть файл.
func (s *Store) OpenAudio(id, filename string) (*os.File, error) {
	dir, err := s.sessionDir(id)
	if err != nil {
		return nil, err
	}
	if !validName(filename) {
		return nil, fmt.Errorf("имя файла %q: %w", filename, ErrNotFound)
	}

	f, err := os.Open(filepath.Join(dir, filename))
	if err != nil {
		return nil, wrapFS(err, "аудиофайл %s/%s", id, filename)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapFS(err, "аудиофайл %s/%s", id, filename)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("аудиофайл %s/%s: %w", id, filename, ErrNotFound)
	}
	return f, nil
}

// listFiles возвращает отсортированные имена файлов сессии, прошедших фильтр.
func (s *Store) listFiles(ctx context.Context, id string, keep func(string) bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.sessionDir(id)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrapFS(err, "папка сессии %s", id)
	}

	names := make([]string, 0)
	for _, e := range entries {
		if e.Type().IsRegular() && keep(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// sessionDir возвращает путь к папке сессии после проверки идентификатора.
func (s *Store) sessionDir(id string) (string, error) {
	if !validName(id) {
		return "", fmt.Errorf("идентификатор сессии %q: %w", id, ErrNotFound)
	}
	return filepath.Join(s.root, id), nil
}

// existingSessionDir дополнительно проверяет, что папка сессии существует.
func (s *Store) existingSessionDir(id string) (string, error) {
	dir, err := s.sessionDir(id)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", wrapFS(err, "папка сессии %s", id)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("папка сессии %s: %w", id, ErrNotFound)
	}
	return dir, nil
}

// validName отклоняет пустые имена, разделители пути и переходы вверх.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// wrapFS сопоставляет ошибку файловой системы с ошибкой хранилища.
func wrapFS(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w: %v", what, ErrAccess, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// classifyReadErr дополнительно распознаёт ошибки разбора JSON.
func classifyReadErr(err error, format string, args ...any) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%s: %w: %v", fmt.Sprintf(format, args...), ErrParse, err)
	}
	return wrapFS(err, format, args...)
}
