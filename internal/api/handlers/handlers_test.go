package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veteran/admin-api/internal/service"
	"github.com/veteran/admin-api/internal/storage/jobstore"
	"github.com/veteran/admin-api/internal/storage/sessionstore"
)

const testJobDoc = `{
	"generatedAt": "2025-08-01T10:00:00",
	"jobSeeker": {"name": "홍길동", "availableTime": "오전"},
	"recommendations": [
		{"rank": 1, "unifiedScore": 0.36, "reason": "가깝습니다. 경력 일치.",
		 "jobPosting": {"title": "경비원", "company": "A", "address": "서울"}},
		{"rank": 2, "unifiedScore": 0.3, "reason": "보통", "jobPosting": null}
	]
}`

// testEnv — тестовое окружение: корень записей, рекомендации и роутер.
type testEnv struct {
	recDir  string
	jobsDir string
	router  http.Handler
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	env := &testEnv{
		recDir:  filepath.Join(base, "recordings"),
		jobsDir: filepath.Join(base, "jobs"),
	}

	writeTestFile(t, filepath.Join(env.recDir, "20250505_090000", "transcript.txt"), "상담 기록")
	writeTestFile(t, filepath.Join(env.recDir, "20250505_090000", "b.wav"), "RIFF-b")
	writeTestFile(t, filepath.Join(env.recDir, "20250505_090000", "a.wav"), "RIFF-a")
	writeTestFile(t, filepath.Join(env.recDir, "20250506_100000", "metadata.json"),
		`{"name":"Kim","age":40,"carrer":"경비 5년"}`)
	writeTestFile(t, filepath.Join(env.recDir, "20250507_110000", "metadata.json"), `{broken`)
	writeTestFile(t, filepath.Join(env.jobsDir, "hong_20250801.json"), testJobDoc)
	writeTestFile(t, filepath.Join(env.jobsDir, "bad_20250802.json"), `[`)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessStore := sessionstore.New(env.recDir, ".wav")
	sessions := service.NewSessionService(sessStore, service.NewSessionListCache(time.Minute), logger)
	jobs := service.NewJobService(jobstore.New(env.jobsDir, env.recDir, 2, logger))
	summary := service.NewSummaryService(sessStore, nil, logger)

	api := NewAPIHandler(sessions, jobs, summary, logger)
	health := NewHealthHandler(NamedCheck{Name: "recordings", Checker: DirChecker{Path: env.recDir}})

	r := chi.NewRouter()
	RegisterRoutes(r, api, health)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(method, target, rd))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
}

// errorCode извлекает код ошибки из тела ответа.
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Code
}

// TestListSessions проверяет список сессий.
func TestListSessions(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/sessions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", w.Code)
	}
	var ids []string
	decode(t, w, &ids)
	if len(ids) != 3 || ids[0] != "20250505_090000" {
		t.Errorf("ids = %v", ids)
	}
}

// TestListSessions_MissingRoot проверяет 500 при отсутствии корня записей.
func TestListSessions_MissingRoot(t *testing.T) {
	env := newTestEnv(t)
	if err := os.RemoveAll(env.recDir); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/api/sessions?refresh=true", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("статус = %d, ожидался 500", w.Code)
	}
}

// TestListSessionRows проверяет строки истории с фильтрами.
func TestListSessionRows(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/sessions/rows?order=asc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("статус = %d", w.Code)
	}
	var rows []map[string]any
	decode(t, w, &rows)
	if len(rows) != 3 {
		t.Fatalf("ожидалось 3 строки, получено %d", len(rows))
	}
	if v, ok := rows[0]["matched"]; !ok || v != nil {
		t.Errorf("matched должен присутствовать и быть null: %v", rows[0])
	}
	if rows[1]["name"] != "Kim" || rows[1]["age"] != "40" {
		t.Errorf("строка 2: %v", rows[1])
	}

	w = env.do(t, http.MethodGet, "/api/sessions/rows?from=2025-05-06&to=2025-05-06", "")
	rows = nil
	decode(t, w, &rows)
	if len(rows) != 1 || rows[0]["id"] != "002" {
		t.Errorf("фильтр по дате: %v", rows)
	}

	if w := env.do(t, http.MethodGet, "/api/sessions/rows?refresh=maybe", ""); w.Code != http.StatusBadRequest {
		t.Errorf("refresh=maybe: статус = %d, ожидался 400", w.Code)
	}
}

// TestGetSessionMetadata проверяет каноническую запись и ошибки.
func TestGetSessionMetadata(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/sessions/20250506_100000/metadata", "")
	if w.Code != http.StatusOK {
		t.Fatalf("статус = %d", w.Code)
	}
	var meta map[string]any
	decode(t, w, &meta)
	if meta["name"] != "Kim" {
		t.Errorf("name = %v", meta["name"])
	}
	if _, ok := meta["career"]; !ok {
		t.Error("carrer должен нормализоваться в career")
	}
	if _, ok := meta["carrer"]; ok {
		t.Error("ответ не должен содержать carrer")
	}

	w = env.do(t, http.MethodGet, "/api/sessions/20250505_090000/metadata", "")
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NOT_FOUND" {
		t.Errorf("без метаданных: статус = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/sessions/20250507_110000/metadata", "")
	if w.Code != http.StatusInternalServerError || errorCode(t, w) != "PARSE_ERROR" {
		t.Errorf("повреждённые метаданные: статус = %d", w.Code)
	}
}

// TestPatchSessionMetadata проверяет обновление статуса поиска работы.
func TestPatchSessionMetadata(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPatch, "/api/sessions/20250506_100000/metadata", `{"is_job_seeking": true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("статус = %d, тело: %s", w.Code, w.Body.String())
	}
	var doc map[string]any
	decode(t, w, &doc)
	if doc["name"] != "Kim" || doc["age"] != float64(40) || doc["is_job_seeking"] != true {
		t.Errorf("документ после слияния: %v", doc)
	}
	// Исходный ключ сохраняется в документе на диске
	if _, ok := doc["carrer"]; !ok {
		t.Error("PATCH не должен терять поля документа")
	}

	// Строка истории отражает новый статус
	w = env.do(t, http.MethodGet, "/api/sessions/rows?order=asc", "")
	var rows []map[string]any
	decode(t, w, &rows)
	if rows[1]["matched"] != true {
		t.Errorf("matched после PATCH: %v", rows[1]["matched"])
	}
}

// TestPatchSessionMetadata_Errors проверяет ошибки PATCH.
func TestPatchSessionMetadata_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"невалидный JSON", "/api/sessions/20250506_100000/metadata", `{`, http.StatusBadRequest},
		{"неверный тип", "/api/sessions/20250506_100000/metadata", `{"is_job_seeking": "yes"}`, http.StatusBadRequest},
		{"лишнее поле", "/api/sessions/20250506_100000/metadata", `{"is_job_seeking": true, "x": 1}`, http.StatusBadRequest},
		{"нет поля", "/api/sessions/20250506_100000/metadata", `{}`, http.StatusBadRequest},
		{"пустое тело", "/api/sessions/20250506_100000/metadata", ``, http.StatusBadRequest},
		{"нет сессии", "/api/sessions/20990101_000000/metadata", `{"is_job_seeking": true}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPatch, tt.target, tt.body)
			if w.Code != tt.status {
				t.Errorf("статус = %d, ожидался %d", w.Code, tt.status)
			}
		})
	}
}

// TestGetSessionTranscript проверяет отдачу расшифровки.
func TestGetSessionTranscript(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/sessions/20250505_090000/transcript", "")
	if w.Code != http.StatusOK {
		t.Fatalf("статус = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "상담 기록" {
		t.Errorf("тело = %q", w.Body.String())
	}

	if w := env.do(t, http.MethodGet, "/api/sessions/20250506_100000/transcript", ""); w.Code != http.StatusNotFound {
		t.Errorf("без расшифровки: статус = %d", w.Code)
	}
}

// TestListSessionAudios проверяет список аудио.
func TestListSessionAudios(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/sessions/20250505_090000/audios", "")
	var files []string
	decode(t, w, &files)
	if len(files) != 2 || files[0] != "a.wav" {
		t.Errorf("files = %v", files)
	}

	w = env.do(t, http.MethodGet, "/api/sessions/20250506_100000/audios", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("без аудио: %d %s", w.Code, w.Body.String())
	}

	if w := env.do(t, http.MethodGet, "/api/sessions/nope/audios", ""); w.Code != http.StatusNotFound {
		t.Errorf("нет сессии: статус = %d", w.Code)
	}
}

// TestServeRecording проверяет потоковую отдачу и Range.
func TestServeRecording(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/recordings/20250505_090000/a.wav", "")
	if w.Code != http.StatusOK || w.Body.String() != "RIFF-a" {
		t.Errorf("отдача: %d %q", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/recordings/20250505_090000/a.wav", nil)
	req.Header.Set("Range", "bytes=0-3")
	rw := httptest.NewRecorder()
	env.router.ServeHTTP(rw, req)
	if rw.Code != http.StatusPartialContent || rw.Body.String() != "RIFF" {
		t.Errorf("Range: %d %q", rw.Code, rw.Body.String())
	}

	if w := env.do(t, http.MethodGet, "/recordings/20250505_090000/c.wav", ""); w.Code != http.StatusNotFound {
		t.Errorf("нет файла: статус = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/recordings/20250505_090000/..", ""); w.Code != http.StatusNotFound {
		t.Errorf("..: статус = %d", w.Code)
	}
}

// TestJobs проверяет список, документ и вакансии рекомендаций.
func TestJobs(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/jobs/files", "")
	var files []string
	decode(t, w, &files)
	if len(files) != 2 {
		t.Errorf("files = %v", files)
	}

	w = env.do(t, http.MethodGet, "/api/jobs?name="+url.QueryEscape("홍"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("статус = %d", w.Code)
	}
	var list service.JobList
	decode(t, w, &list)
	if len(list.Items) != 1 || list.Items[0].Created != "2025-08-01" {
		t.Errorf("items = %+v", list.Items)
	}
	if len(list.Skipped) != 1 || list.Skipped[0].Filename != "bad_20250802.json" {
		t.Errorf("skipped = %+v", list.Skipped)
	}

	w = env.do(t, http.MethodGet, "/api/jobs/hong_20250801.json", "")
	var doc map[string]any
	decode(t, w, &doc)
	seeker, _ := doc["jobSeeker"].(map[string]any)
	if seeker["available_time"] != "오전" {
		t.Errorf("jobSeeker = %v", seeker)
	}

	w = env.do(t, http.MethodGet, "/api/jobs/hong_20250801.json/postings", "")
	var postings []map[string]any
	decode(t, w, &postings)
	if len(postings) != 1 || postings[0]["category"] != "suitable" || postings[0]["reason_summary"] != "가깝습니다." {
		t.Errorf("postings = %v", postings)
	}

	if w := env.do(t, http.MethodGet, "/api/jobs/missing_20250101.json", ""); w.Code != http.StatusNotFound {
		t.Errorf("нет документа: статус = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/jobs/bad_20250802.json", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("повреждённый документ: статус = %d", w.Code)
	}
}

// TestGetSummary проверяет сводку.
func TestGetSummary(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("статус = %d", w.Code)
	}
	var sum service.Summary
	decode(t, w, &sum)
	if sum.TotalSessions != 3 || len(sum.WeeklySessionCounts) != 7 {
		t.Errorf("сводка: %+v", sum)
	}
}

// TestHealth проверяет health endpoints.
func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodGet, "/health/live", ""); w.Code != http.StatusOK {
		t.Errorf("live: статус = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/health/ready", ""); w.Code != http.StatusOK {
		t.Errorf("ready: статус = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/metrics", ""); w.Code != http.StatusOK {
		t.Errorf("metrics: статус = %d", w.Code)
	}

	if err := os.RemoveAll(env.recDir); err != nil {
		t.Fatal(err)
	}
	if w := env.do(t, http.MethodGet, "/health/ready", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready без корня записей: статус = %d, ожидался 503", w.Code)
	}
}

// TestOverallStatus проверяет итоговый статус готовности.
func TestOverallStatus(t *testing.T) {
	if s := overallStatus(statusOK, statusDegraded); s != statusDegraded {
		t.Errorf("ok+degraded = %s", s)
	}
	if s := overallStatus(statusDegraded, statusFail); s != statusFail {
		t.Errorf("degraded+fail = %s", s)
	}
	if s := overallStatus(); s != statusOK {
		t.Errorf("пусто = %s", s)
	}
	if s, _ := (DirChecker{Optional: true}).CheckReady(); s != statusOK {
		t.Errorf("необязательная пустая директория = %s", s)
	}
}

// TestUnknownRoute проверяет формат ошибки для неизвестного маршрута.
func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/unknown", "")
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NOT_FOUND" {
		t.Errorf("статус = %d", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/api/sessions/20250506_100000/metadata", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE: статус = %d, ожидался 405", w.Code)
	}
}
