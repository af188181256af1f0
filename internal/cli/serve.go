package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/veteran/admin-api/internal/api/handlers"
	"github.com/veteran/admin-api/internal/api/middleware"
	"github.com/veteran/admin-api/internal/config"
	"github.com/veteran/admin-api/internal/server"
	"github.com/veteran/admin-api/internal/service"
	"github.com/veteran/admin-api/internal/watcher"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер Admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := a.cfg
	logger := a.logger

	logger.Info("Admin API запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("recordings_dir", cfg.RecordingsDir),
		slog.String("jobs_dir", cfg.JobsDir),
	)

	store := a.sessionStore()
	sessions := a.sessionService()
	jobs := a.jobService()
	summary := service.NewSummaryService(store, nil, logger)

	checks := []handlers.NamedCheck{
		{Name: "recordings", Checker: handlers.DirChecker{Path: cfg.RecordingsDir}},
	}
	if cfg.JobsDir != "" {
		checks = append(checks, handlers.NamedCheck{
			Name:    "jobs",
			Checker: handlers.DirChecker{Path: cfg.JobsDir, Optional: true},
		})
	}

	apiHandler := handlers.NewAPIHandler(sessions, jobs, summary, logger)
	healthHandler := handlers.NewHealthHandler(checks...)

	srv := server.New(cfg, logger, apiHandler, healthHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		// Остановка сервера завершает и наблюдение за директорией
		defer cancel()
		return srv.Run(runCtx)
	})

	if cfg.WatchRecordings {
		w := watcher.New(cfg.RecordingsDir, watcher.DefaultDebounce, sessions.Invalidate, logger)
		g.Go(func() error {
			if err := w.Run(runCtx); err != nil {
				// Без наблюдения кэш обновляется по TTL и параметру refresh
				logger.Warn("Наблюдение за корнем записей отключено",
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Admin API остановлен")
	return nil
}
