package contextkeys

import "context"

type userIDKeyType struct{}

var userIDKey = userIDKeyType{}

// ContextWithUserID сохраняет id пользователя, выставленный шлюзом в X-User-ID.
// Сервис его не проверяет, только пробрасывает дальше.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}
