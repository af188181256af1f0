package attr

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// TestWriteAndRead проверяет запись и чтение документа.
func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "20250801_101500", "metadata.json")
	doc := Document{
		"name": json.RawMessage(`"Kim"`),
		"age":  json.RawMessage(`40`),
	}

	if err := Write(path, doc); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if string(got["name"]) != `"Kim"` {
		t.Errorf("name: ожидалось %q, получено %q", `"Kim"`, got["name"])
	}
	if string(got["age"]) != "40" {
		t.Errorf("age: ожидалось 40, получено %s", got["age"])
	}
}

// TestWrite_NoTempFilesLeft проверяет, что после записи не остаётся temp файлов.
func TestWrite_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	if err := Write(path, Document{"a": json.RawMessage(`1`)}); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ошибка чтения директории: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp файл не удалён: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("ожидался 1 файл, получено %d", len(entries))
	}
}

// TestWrite_Concurrent проверяет, что параллельные записи оставляют валидный документ.
func TestWrite_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			doc := Document{"n": json.RawMessage(strings.Repeat("1", n+1))}
			if err := Write(path, doc); err != nil {
				t.Errorf("ошибка записи: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if _, err := Read(path); err != nil {
		t.Fatalf("документ повреждён после параллельных записей: %v", err)
	}
}

// TestRead_NotExist проверяет ошибку для несуществующего файла.
func TestRead_NotExist(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ожидалась os.ErrNotExist, получено %v", err)
	}
}

// TestRead_InvalidJSON проверяет ошибку для невалидного JSON.
func TestRead_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := os.WriteFile(path, []byte("{не json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Read(path)
	if err == nil {
		t.Fatal("ожидалась ошибка для невалидного JSON")
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("ожидалась *json.SyntaxError, получено %T", err)
	}
}

// TestMerge проверяет слияние верхнего уровня.
func TestMerge(t *testing.T) {
	doc := Document{
		"name":           json.RawMessage(`"Kim"`),
		"age":            json.RawMessage(`40`),
		"is_job_seeking": json.RawMessage(`false`),
	}
	patch := Document{"is_job_seeking": json.RawMessage(`true`)}

	got := Merge(doc, patch)
	if len(got) != 3 {
		t.Errorf("ожидалось 3 поля, получено %d", len(got))
	}
	if string(got["is_job_seeking"]) != "true" {
		t.Errorf("is_job_seeking: ожидалось true, получено %s", got["is_job_seeking"])
	}

	if got := Merge(nil, patch); len(got) != 1 {
		t.Errorf("Merge(nil): ожидалось 1 поле, получено %d", len(got))
	}
}
