package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackfillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-job-seeking",
		Short: "Проставить is_job_seeking=false во всех метаданных сессий",
		Long: `Записывает is_job_seeking=false в metadata.json каждой сессии.
Сессии без метаданных пропускаются. Повреждённые документы
не перезаписываются и считаются ошибками.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.sessionService().BackfillJobSeeking(cmd.Context())
			if err != nil {
				return fmt.Errorf("backfill: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Обновлено: %d, пропущено: %d, ошибок: %d\n",
				res.Updated, res.Skipped, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("backfill: %d сессий не обновлено", res.Failed)
			}
			return nil
		},
	}
}
