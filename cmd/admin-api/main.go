// Точка входа Admin API: HTTP-сервер истории консультаций
// и рекомендаций вакансий, а также служебные команды.
package main

import (
	"fmt"
	"os"

	"github.com/veteran/admin-api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}
