package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
// При заданном LogFile записи дублируются в файл в формате JSON.
// Возвращает логгер и функцию закрытия файла лога.
func SetupLogger(cfg *Config) (*slog.Logger, func() error) {
	noop := func() error { return nil }

	if cfg.LogFile == "" {
		logger := slog.New(newHandler(os.Stdout, cfg.LogFormat, cfg.LogLevel))
		slog.SetDefault(logger)
		return logger, noop
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(newHandler(os.Stdout, cfg.LogFormat, cfg.LogLevel))
		slog.SetDefault(logger)
		logger.Error("Не удалось открыть файл лога, используется только stdout",
			slog.String("file", cfg.LogFile),
			slog.String("error", err.Error()),
		)
		return logger, noop
	}

	logger := NewFanoutLogger(os.Stdout, file, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger, file.Close
}

// NewFanoutLogger создаёт логгер с двумя выходами:
// основной поток в формате format и JSON-копия в file.
func NewFanoutLogger(out, file io.Writer, format string, level slog.Level) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		newHandler(out, format, level),
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	))
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
