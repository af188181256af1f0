// Пакет cli — командная строка Admin API: запуск сервера
// и служебные команды над корнем записей.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/veteran/admin-api/internal/config"
	"github.com/veteran/admin-api/internal/service"
	"github.com/veteran/admin-api/internal/storage/jobstore"
	"github.com/veteran/admin-api/internal/storage/sessionstore"
)

// app — состояние, общее для команд: конфигурация и логгер.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
	envFiles []string
}

// NewRootCmd создаёт корневую команду со всеми подкомандами.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "admin-api",
		Short: "Admin API для истории консультаций и рекомендаций вакансий",
		Long: `Admin API отдаёт админке историю консультаций (папки сессий
с метаданными, расшифровкой и аудио) и документы рекомендаций вакансий.

Конфигурация задаётся переменными окружения VA_* и файлом .env.`,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.closeLog != nil {
				_ = a.closeLog()
			}
		},
	}

	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "файлы .env (по умолчанию ./.env)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newSessionsCmd(a))
	root.AddCommand(newJobsCmd(a))
	root.AddCommand(newBackfillCmd(a))
	return root
}

// Execute запускает корневую команду.
func Execute() error {
	return NewRootCmd().Execute()
}

// init загружает .env, конфигурацию и настраивает логгер.
func (a *app) init() error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}
	a.cfg = cfg
	a.logger, a.closeLog = config.SetupLogger(cfg)

	a.logger.Debug("Конфигурация загружена",
		slog.String("version", config.Version),
		slog.String("recordings_dir", cfg.RecordingsDir),
		slog.String("jobs_dir", cfg.JobsDir),
	)
	return nil
}

// sessionStore создаёт хранилище сессий по конфигурации.
func (a *app) sessionStore() *sessionstore.Store {
	return sessionstore.New(a.cfg.RecordingsDir, a.cfg.AudioExt)
}

// sessionService создаёт SessionService с кэшем списка.
func (a *app) sessionService() *service.SessionService {
	return service.NewSessionService(
		a.sessionStore(),
		service.NewSessionListCache(a.cfg.SessionCacheTTL),
		a.logger,
	)
}

// jobService создаёт JobService.
func (a *app) jobService() *service.JobService {
	return service.NewJobService(
		jobstore.New(a.cfg.JobsDir, a.cfg.RecordingsDir, a.cfg.JobLoadConcurrency, a.logger),
	)
}

// addQueryFlags добавляет флаги запроса к списку.
func addQueryFlags(cmd *cobra.Command, name, from, to, order *string) {
	cmd.Flags().StringVarP(name, "name", "n", "", "подстрока имени (с учётом регистра)")
	cmd.Flags().StringVar(from, "from", "", "начальная дата (YYYYMMDD или YYYY-MM-DD)")
	cmd.Flags().StringVar(to, "to", "", "конечная дата (YYYYMMDD или YYYY-MM-DD)")
	cmd.Flags().StringVarP(order, "order", "o", "desc", "порядок: asc или desc")
}
