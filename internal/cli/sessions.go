package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veteran/admin-api/internal/domain/model"
	"github.com/veteran/admin-api/internal/service"
)

func newSessionsCmd(a *app) *cobra.Command {
	var (
		name, from, to, order string
		asJSON                bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Показать историю консультаций",
		Long: `Выводит строки истории консультаций: номер, дату, время, имя,
возраст и признак поиска работы. Фильтры применяются в порядке
имя, диапазон дат, сортировка.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := service.Query{
				Name:  name,
				From:  from,
				To:    to,
				Order: service.ParseOrder(order),
			}
			rows, err := a.sessionService().Rows(cmd.Context(), q, true)
			if err != nil {
				return fmt.Errorf("список сессий: %w", err)
			}
			if asJSON {
				return writeJSONTo(cmd.OutOrStdout(), rows)
			}
			return printRows(cmd.OutOrStdout(), rows)
		},
	}

	addQueryFlags(cmd, &name, &from, &to, &order)
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывод в JSON")
	return cmd
}

// printRows печатает строки истории таблицей.
func printRows(out io.Writer, rows []model.ViewRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "Сессии не найдены.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tДАТА\tВРЕМЯ\tИМЯ\tВОЗРАСТ\tПОИСК РАБОТЫ\tСЕССИЯ")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Date, r.Time, r.Name, r.Age, matchedText(r.Matched), r.SortKey)
	}
	return tw.Flush()
}

func matchedText(m *bool) string {
	switch {
	case m == nil:
		return model.Placeholder
	case *m:
		return "да"
	default:
		return "нет"
	}
}

func writeJSONTo(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
