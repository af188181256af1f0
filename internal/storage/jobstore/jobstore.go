// Пакет jobstore — доступ к документам рекомендаций вакансий.
// Документы лежат в плоской директории рекомендаций ({person}_{date}.json)
// и в папках сессий (результаты конкретной консультации,
// {person}_YYYYMMDD_HHMMSS.json). Имена файлов приводятся к NFC:
// macOS записывает корейские имена в NFD, а поисковый ввод приходит в NFC.
package jobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/veteran/admin-api/internal/domain/model"
)

// Ошибки хранилища рекомендаций.
var (
	// ErrNotFound — документ не найден
	ErrNotFound = errors.New("документ рекомендаций не найден")
	// ErrAccess — нет доступа к файловой системе
	ErrAccess = errors.New("нет доступа к документам рекомендаций")
	// ErrParse — документ не является валидным JSON
	ErrParse = errors.New("ошибка разбора документа рекомендаций")
)

// sessionResultPattern — имя файла результата внутри папки сессии.
var sessionResultPattern = regexp.MustCompile(`^.+_\d{8}_\d{6}\.json$`)

// defaultConcurrency — параллелизм LoadAll по умолчанию.
const defaultConcurrency = 8

var parseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "va_job_document_parse_failures_total",
	Help: "Количество документов рекомендаций, пропущенных из-за ошибки разбора.",
})

// LoadFailure — документ, пропущенный при загрузке списка.
type LoadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Store — доступ к документам рекомендаций.
type Store struct {
	// jobsDir — плоская директория рекомендаций (может быть пустой)
	jobsDir string
	// recordingsDir — корень папок сессий
	recordingsDir string
	concurrency   int
	logger        *slog.Logger
}

// New создаёт Store. Пустой jobsDir означает, что используются
// только результаты из папок сессий.
func New(jobsDir, recordingsDir string, concurrency int, logger *slog.Logger) *Store {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Store{
		jobsDir:       jobsDir,
		recordingsDir: recordingsDir,
		concurrency:   concurrency,
		logger:        logger.With(slog.String("component", "jobstore")),
	}
}

// ListFiles возвращает отсортированные имена документов без повторов.
// Отсутствующие директории считаются пустыми.
func (s *Store) ListFiles(ctx context.Context) ([]string, error) {
	refs, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.name)
	}
	return names, nil
}

// Get читает и нормализует документ по имени файла.
// Поиск: сначала плоская директория, затем папки сессий.
func (s *Store) Get(ctx context.Context, filename string) (*model.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := norm.NFC.String(filename)
	if !validFilename(name) {
		return nil, fmt.Errorf("имя файла %q: %w", filename, ErrNotFound)
	}

	path, err := s.locate(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.read(name, path)
}

// LoadAll загружает все документы параллельно (не больше concurrency
// одновременно). Документы с ошибкой разбора пропускаются и возвращаются
// в списке failures; ошибка возвращается только при сбое листинга.
func (s *Store) LoadAll(ctx context.Context) ([]*model.Recommendation, []LoadFailure, error) {
	refs, err := s.scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	docs := make([]*model.Recommendation, len(refs))
	errs := make([]error, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i], errs[i] = s.read(ref.name, ref.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	loaded := make([]*model.Recommendation, 0, len(refs))
	failures := make([]LoadFailure, 0)
	for i, ref := range refs {
		if errs[i] != nil {
			s.logger.Warn("Документ рекомендаций пропущен",
				slog.String("filename", ref.name),
				slog.String("error", errs[i].Error()),
			)
			failures = append(failures, LoadFailure{Filename: ref.name, Error: errs[i].Error()})
			continue
		}
		loaded = append(loaded, docs[i])
	}
	return loaded, failures, nil
}

// fileRef — найденный документ: NFC-имя и путь на диске.
type fileRef struct {
	name string
	path string
}

// scan собирает документы из плоской директории и папок сессий.
// При совпадении имён приоритет у плоской директории.
func (s *Store) scan(ctx context.Context) ([]fileRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	refs := make([]fileRef, 0)
	add := func(dir, diskName string) {
		name := norm.NFC.String(diskName)
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		refs = append(refs, fileRef{name: name, path: filepath.Join(dir, diskName)})
	}

	if s.jobsDir != "" {
		entries, err := readDirIfExists(s.jobsDir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
				add(s.jobsDir, e.Name())
			}
		}
	}

	sessions, err := readDirIfExists(s.recordingsDir)
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if !sess.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(s.recordingsDir, sess.Name())
		entries, err := readDirIfExists(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() && sessionResultPattern.MatchString(e.Name()) {
				add(dir, e.Name())
			}
		}
	}

	slices.SortFunc(refs, func(a, b fileRef) int { return strings.Compare(a.name, b.name) })
	return refs, nil
}

// locate находит путь документа по NFC-имени.
func (s *Store) locate(ctx context.Context, name string) (string, error) {
	if s.jobsDir != "" {
		if p, ok := findIn(s.jobsDir, name); ok {
			return p, nil
		}
	}
	if !sessionResultPattern.MatchString(name) {
		return "", fmt.Errorf("документ %s: %w", name, ErrNotFound)
	}

	sessions, err := readDirIfExists(s.recordingsDir)
	if err != nil {
		return "", err
	}
	for _, sess := range sessions {
		if !sess.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if p, ok := findIn(filepath.Join(s.recordingsDir, sess.Name()), name); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("документ %s: %w", name, ErrNotFound)
}

// read читает и разбирает документ.
func (s *Store) read(name, path string) (*model.Recommendation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapFS(err, name)
	}
	rec, err := model.ParseRecommendation(name, data)
	if err != nil {
		parseFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return rec, nil
}

// findIn ищет файл в директории: сначала по точному имени,
// затем сравнивая NFC-формы имён.
func findIn(dir, name string) (string, bool) {
	p := filepath.Join(dir, name)
	if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
		return p, true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.Type().IsRegular() && norm.NFC.String(e.Name()) == name {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// readDirIfExists возвращает содержимое директории; отсутствующая — пустая.
func readDirIfExists(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, wrapFS(err, dir)
	}
	return entries, nil
}

// validFilename допускает только имя .json без компонентов пути.
func validFilename(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".json")
}

func wrapFS(err error, what string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w: %v", what, ErrAccess, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
