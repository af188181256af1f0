package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veteran/admin-api/internal/service"
)

func newJobsCmd(a *app) *cobra.Command {
	var (
		name, from, to, order string
		asJSON                bool
	)

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Показать документы рекомендаций вакансий",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := service.Query{
				Name:  name,
				From:  from,
				To:    to,
				Order: service.ParseOrder(order),
			}
			list, err := a.jobService().List(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("список рекомендаций: %w", err)
			}
			if asJSON {
				return writeJSONTo(cmd.OutOrStdout(), list)
			}
			return printJobs(cmd.OutOrStdout(), cmd.ErrOrStderr(), list)
		},
	}

	addQueryFlags(cmd, &name, &from, &to, &order)
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывод в JSON")
	return cmd
}

// printJobs печатает документы таблицей, пропущенные файлы уходят в stderr.
func printJobs(out, errOut io.Writer, list *service.JobList) error {
	for _, f := range list.Skipped {
		fmt.Fprintf(errOut, "пропущен %s: %s\n", f.Filename, f.Error)
	}

	if len(list.Items) == 0 {
		_, err := fmt.Fprintln(out, "Документы рекомендаций не найдены.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ДАТА\tИМЯ\tВАКАНСИИ\tФАЙЛ")
	for _, it := range list.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			it.Created, it.Name, strings.Join(it.TopTitles, ", "), it.Filename)
	}
	return tw.Flush()
}
