package rest

import (
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/port"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// пути проб и сбора метрик логируются на уровне Debug
var quietPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// LoggerMiddleware кладет в контекст логгер с trace_id и пишет итог запроса.
// trace_id берется из X-Trace-ID шлюза, если это UUID, иначе генерируется;
// в любом случае возвращается в ответе.
func LoggerMiddleware(logger port.LoggerPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(traceHeader)
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.New().String()
			}
			w.Header().Set(traceHeader, traceID)

			requestLogger := logger.WithFields(port.Fields{"trace_id": traceID})
			ctx := contextkeys.ContextWithTraceID(r.Context(), traceID)
			ctx = contextkeys.ContextWithLogger(ctx, requestLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := port.Fields{
				"http_method":   r.Method,
				"http_path":     r.URL.Path,
				"http_route":    routePattern(r),
				"status_code":   status,
				"bytes_written": ww.BytesWritten(),
				"duration_ms":   time.Since(started).Milliseconds(),
			}

			switch {
			case status >= http.StatusInternalServerError:
				requestLogger.Warn("Request failed", fields)
			case quietPaths[r.URL.Path]:
				requestLogger.Debug("Request finished", fields)
			default:
				requestLogger.Info("Request finished", fields)
			}
		})
	}
}

// routePattern - шаблон маршрута chi (например, /properties/page) или путь, если маршрут не найден
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
