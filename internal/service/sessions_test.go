package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veteran/admin-api/internal/storage/sessionstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupRecordings создаёт корень записей: папка → содержимое metadata.json
// (пустая строка — без метаданных).
func setupRecordings(t *testing.T, sessions map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for id, meta := range sessions {
		dir := filepath.Join(root, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if meta != "" {
			if err := os.WriteFile(filepath.Join(dir, sessionstore.MetadataFile), []byte(meta), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

func newTestSessionService(t *testing.T, root string) *SessionService {
	t.Helper()
	store := sessionstore.New(root, ".wav")
	return NewSessionService(store, NewSessionListCache(time.Minute), testLogger())
}

// TestSessionService_Rows проверяет построение строк с повреждёнными метаданными.
func TestSessionService_Rows(t *testing.T) {
	root := setupRecordings(t, map[string]string{
		"20250505_090000": "",
		"20250506_100000": `{"name":"Kim","age":40,"is_job_seeking":false}`,
		"20250507_110000": `{broken`,
	})
	svc := newTestSessionService(t, root)

	rows, err := svc.Rows(context.Background(), Query{Order: OrderAsc}, false)
	if err != nil {
		t.Fatalf("ошибка: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("ожидалось 3 строки, получено %d", len(rows))
	}
	if rows[0].Matched != nil {
		t.Error("строка без метаданных: matched должен быть nil")
	}
	if rows[1].Name != "Kim" || rows[1].Age != "40" || rows[1].Matched == nil || *rows[1].Matched {
		t.Errorf("строка 2: %+v", rows[1])
	}
	if rows[2].Name != "-" || rows[2].Matched != nil {
		t.Errorf("повреждённые метаданные должны считаться отсутствующими: %+v", rows[2])
	}
}

// TestSessionService_ListCache проверяет кэш списка и refresh.
func TestSessionService_ListCache(t *testing.T) {
	root := setupRecordings(t, map[string]string{"20250505_090000": ""})
	svc := newTestSessionService(t, root)
	ctx := context.Background()

	if ids, err := svc.List(ctx, false); err != nil || len(ids) != 1 {
		t.Fatalf("List: %v, %v", ids, err)
	}

	if err := os.Mkdir(filepath.Join(root, "20250506_100000"), 0o755); err != nil {
		t.Fatal(err)
	}

	// Без refresh возвращается закэшированный список
	ids, _ := svc.List(ctx, false)
	if len(ids) != 1 {
		t.Errorf("ожидался закэшированный список из 1 сессии, получено %v", ids)
	}

	ids, _ = svc.List(ctx, true)
	if len(ids) != 2 {
		t.Errorf("после refresh ожидалось 2 сессии, получено %v", ids)
	}
}

// TestSessionService_SetJobSeeking проверяет сценарий Kim/40.
func TestSessionService_SetJobSeeking(t *testing.T) {
	root := setupRecordings(t, map[string]string{"S1": `{"name":"Kim","age":40}`})
	svc := newTestSessionService(t, root)

	doc, err := svc.SetJobSeeking(context.Background(), "S1", true)
	if err != nil {
		t.Fatalf("ошибка: %v", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"name": "Kim", "age": float64(40), "is_job_seeking": true}
	if len(got) != len(want) {
		t.Fatalf("ожидалось %v, получено %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: ожидалось %v, получено %v", k, v, got[k])
		}
	}
}

// TestSessionService_BackfillJobSeeking проверяет массовую отметку.
func TestSessionService_BackfillJobSeeking(t *testing.T) {
	root := setupRecordings(t, map[string]string{
		"s1": `{"name":"A","is_job_seeking":true}`,
		"s2": `{"name":"B"}`,
		"s3": "",
		"s4": `{broken`,
	})
	svc := newTestSessionService(t, root)
	ctx := context.Background()

	res, err := svc.BackfillJobSeeking(ctx)
	if err != nil {
		t.Fatalf("ошибка: %v", err)
	}
	if res.Updated != 2 || res.Skipped != 1 || res.Failed != 1 {
		t.Errorf("результат: %+v", res)
	}

	for _, id := range []string{"s1", "s2"} {
		m, err := svc.Metadata(ctx, id)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if m.IsJobSeeking == nil || *m.IsJobSeeking {
			t.Errorf("%s: ожидался is_job_seeking=false", id)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "s3", sessionstore.MetadataFile)); !os.IsNotExist(err) {
		t.Error("для сессии без метаданных файл не должен создаваться")
	}
}
