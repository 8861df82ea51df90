package rest

import (
	"net/http"

	"github.com/google/uuid"
)

// SessionCookieName - cookie с id сессии страницы объявлений
const SessionCookieName = "listing_session"

// sessionID возвращает id сессии из cookie, выдавая новый при отсутствии или порче
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
