// Пакет watcher — отслеживание изменений корня записей.
// Появление, удаление или переименование папки сессии сбрасывает
// кэш списка сессий. Серия быстрых событий схлопывается (debounce).
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce — задержка по умолчанию между последним событием и вызовом onChange.
const DefaultDebounce = 500 * time.Millisecond

// Watcher следит за одной директорией (без рекурсии).
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()
	logger   *slog.Logger
}

// New создаёт Watcher. onChange вызывается из отдельной горутины.
func New(dir string, debounce time.Duration, onChange func(), logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   logger.With(slog.String("component", "watcher")),
	}
}

// Run отслеживает изменения до отмены ctx.
// Возвращает ошибку, если наблюдение не удалось запустить.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("создание fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("наблюдение за %s: %w", w.dir, err)
	}

	w.logger.Info("Наблюдение за корнем записей запущено", slog.String("dir", w.dir))

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Наблюдение за корнем записей остановлено")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				w.logger.Debug("Изменение корня записей", slog.String("path", event.Name))
				w.onChange()
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Ошибка fsnotify", slog.String("error", err.Error()))
		}
	}
}
