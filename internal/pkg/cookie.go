package pkg

import (
	"net/http"
	"time"
)

const SessionCookieName = "user_session"

// NewSessionCookie - builds the cookie that binds a browser to its session.
func NewSessionCookie(sessionID string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}

	return cookie
}

// SessionIDFromRequest returns the session ID stored in the request cookie, if any.
func SessionIDFromRequest(req *http.Request) string {
	cookie, err := req.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}
