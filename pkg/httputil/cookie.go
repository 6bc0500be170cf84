package httputil

import (
	"net/http"
	"strings"
	"time"
)

const RefreshCookieName = "refreshToken"

const bearerPrefix = "Bearer "

// RefreshCookie builds the refresh-token cookie: HttpOnly, SameSite=Strict,
// scoped to the whole site, living as long as the refresh token.
func RefreshCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func SetRefreshCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, RefreshCookie(token, ttl, secure))
}

// ClearRefreshCookie emits Max-Age=0 so the browser drops the cookie.
func ClearRefreshCookie(w http.ResponseWriter, secure bool) {
	cookie := RefreshCookie("", 0, secure)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

// GetRefreshToken returns the refresh cookie value, or "" if absent.
func GetRefreshToken(r *http.Request) string {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// ok is false for a missing header, another scheme, or an empty token.
func BearerToken(r *http.Request) (token string, ok bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token = strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
