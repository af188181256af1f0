package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv загружает переменные из файлов .env (по умолчанию ./.env).
// Уже заданные переменные окружения не перезаписываются.
// Отсутствие файла ошибкой не считается.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("загрузка %s: %w", p, err)
		}
	}
	return nil
}
