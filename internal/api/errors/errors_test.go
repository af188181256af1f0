package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestWrite проверяет статус, заголовки и тело для каждого конструктора.
func TestWrite(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
		code   string
	}{
		{"validation", ValidationError, http.StatusBadRequest, CodeValidationError},
		{"not_found", NotFound, http.StatusNotFound, CodeNotFound},
		{"method", MethodNotAllowed, http.StatusMethodNotAllowed, CodeMethodNotAllowed},
		{"parse", ParseError, http.StatusInternalServerError, CodeParseError},
		{"internal", InternalError, http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "сообщение")

			if w.Code != tt.status {
				t.Errorf("статус = %d, ожидался %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body Body
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("ошибка разбора тела: %v", err)
			}
			if body.Error.Code != tt.code || body.Error.Message != "сообщение" {
				t.Errorf("тело = %+v", body)
			}
		})
	}
}

func TestStatusFor_UnknownCode(t *testing.T) {
	if got := StatusFor("SOMETHING_ELSE"); got != http.StatusInternalServerError {
		t.Errorf("StatusFor = %d, ожидался 500", got)
	}
}
