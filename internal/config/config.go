// Пакет config — загрузка и валидация конфигурации Admin API
// из переменных окружения (префикс VA_).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Admin API.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Файл для дополнительного JSON-лога (пусто — только stdout)
	LogFile string

	// --- Данные ---

	// Корень папок сессий консультаций
	RecordingsDir string
	// Плоская директория документов рекомендаций (может быть пустой)
	JobsDir string
	// Расширение аудиофайлов сессий
	AudioExt string
	// Параллелизм загрузки документов рекомендаций
	JobLoadConcurrency int

	// --- Кэш и наблюдение ---

	// Время жизни кэша списка сессий
	SessionCacheTTL time.Duration
	// Сбрасывать кэш при изменении корня записей (fsnotify)
	WatchRecordings bool

	// --- CORS ---

	// Разрешённые источники, через запятую
	CORSOrigins []string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// VA_PORT — порт HTTP-сервера (по умолчанию 5050)
	cfg.Port, err = getEnvInt("VA_PORT", 5050)
	if err != nil {
		return nil, fmt.Errorf("VA_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("VA_PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	// VA_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("VA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("VA_LOG_LEVEL: %w", err)
	}

	// VA_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("VA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("VA_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.LogFile = os.Getenv("VA_LOG_FILE")

	// --- Данные ---

	// VA_RECORDINGS_DIR — обязательный
	cfg.RecordingsDir, err = getEnvRequired("VA_RECORDINGS_DIR")
	if err != nil {
		return nil, err
	}

	cfg.JobsDir = os.Getenv("VA_JOBS_DIR")

	// VA_AUDIO_EXT — расширение аудио (по умолчанию .wav)
	cfg.AudioExt = getEnvDefault("VA_AUDIO_EXT", ".wav")
	if !strings.HasPrefix(cfg.AudioExt, ".") {
		cfg.AudioExt = "." + cfg.AudioExt
	}

	cfg.JobLoadConcurrency, err = getEnvInt("VA_JOB_LOAD_CONCURRENCY", 8)
	if err != nil {
		return nil, fmt.Errorf("VA_JOB_LOAD_CONCURRENCY: %w", err)
	}
	if cfg.JobLoadConcurrency < 1 {
		return nil, fmt.Errorf("VA_JOB_LOAD_CONCURRENCY: значение должно быть >= 1")
	}

	// --- Кэш и наблюдение ---

	cfg.SessionCacheTTL, err = getEnvDuration("VA_SESSION_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("VA_SESSION_CACHE_TTL: %w", err)
	}
	if cfg.SessionCacheTTL <= 0 {
		return nil, fmt.Errorf("VA_SESSION_CACHE_TTL: значение должно быть > 0")
	}

	cfg.WatchRecordings, err = getEnvBool("VA_WATCH_RECORDINGS", true)
	if err != nil {
		return nil, fmt.Errorf("VA_WATCH_RECORDINGS: %w", err)
	}

	// --- CORS ---

	cfg.CORSOrigins = splitList(getEnvDefault("VA_CORS_ORIGINS", "*"))

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("VA_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VA_HTTP_READ_TIMEOUT: %w", err)
	}

	cfg.HTTPWriteTimeout, err = getEnvDuration("VA_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VA_HTTP_WRITE_TIMEOUT: %w", err)
	}

	cfg.HTTPIdleTimeout, err = getEnvDuration("VA_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VA_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("VA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VA_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// splitList разбивает список через запятую, отбрасывая пустые элементы.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
