// Пакет errors — ответы с ошибками Admin API.
// Тело ошибки: {"error": {"code": "...", "message": "..."}}.
// HTTP-статус определяется кодом ошибки.
package errors //nolint:revive // имя пакета совпадает со stdlib, импортируется как apierrors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeParseError       = "PARSE_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

// statusByCode — HTTP-статус каждого кода.
// Повреждённый документ на диске — ошибка сервера, а не клиента.
var statusByCode = map[string]int{
	CodeValidationError:  http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeParseError:       http.StatusInternalServerError,
	CodeInternalError:    http.StatusInternalServerError,
}

// Body — тело ответа с ошибкой.
type Body struct {
	Error Detail `json:"error"`
}

// Detail — код и описание ошибки.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor возвращает HTTP-статус кода; неизвестный код — 500.
func StatusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Write записывает ошибку с кодом code.
func Write(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusFor(code))
	_ = json.NewEncoder(w).Encode(Body{Error: Detail{Code: code, Message: message}})
}

func ValidationError(w http.ResponseWriter, message string) {
	Write(w, CodeValidationError, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Write(w, CodeNotFound, message)
}

func MethodNotAllowed(w http.ResponseWriter, message string) {
	Write(w, CodeMethodNotAllowed, message)
}

// ParseError — документ на диске не читается как JSON.
func ParseError(w http.ResponseWriter, message string) {
	Write(w, CodeParseError, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Write(w, CodeInternalError, message)
}
