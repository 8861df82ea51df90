package rest

import (
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/port"
	"net/http"

	"github.com/google/uuid"
)

// UserMiddleware переносит X-User-ID, выставленный шлюзом, в контекст и логгер.
// Аутентификация здесь не выполняется: заголовок необязателен, некорректный игнорируется.
func UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := uuid.Parse(userID); err != nil {
			contextkeys.LoggerFromContext(r.Context()).Debug("Ignoring malformed X-User-ID header", nil)
			next.ServeHTTP(w, r)
			return
		}

		ctx := contextkeys.ContextWithUserID(r.Context(), userID)
		logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"user_id": userID})
		ctx = contextkeys.ContextWithLogger(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
