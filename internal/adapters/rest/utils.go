package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const traceHeader = "X-Trace-ID"

// apiError - тело JSON-ошибки; trace_id помогает найти запрос в логах
type apiError struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// WriteJSONError отправляет {"error": "...", "trace_id": "..."}.
// trace_id берется из заголовка ответа, выставленного LoggerMiddleware.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, apiError{Error: message, TraceID: w.Header().Get(traceHeader)})
}

// RespondWithJSON отправляет JSON-ответ; ответы API не кэшируются
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// parsePage разбирает номер страницы из формы или ссылки.
// Пустое, нечисловое или неположительное значение - ok=false.
func parsePage(raw string) (int, bool) {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}
