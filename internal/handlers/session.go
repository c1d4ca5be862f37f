package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "sid"

// setSessionCookie writes the sid cookie: HttpOnly, SameSite=Lax, path /.
func setSessionCookie(c *gin.Context, sid string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sid, maxAge, "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}

func sessionID(c *gin.Context) string {
	sid, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return sid
}

// stripQueryParam removes every occurrence of key from a raw query string
// and leaves the remaining pairs untouched and in order.
func stripQueryParam(rawQuery, key string) string {
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		name, _, _ := strings.Cut(part, "=")
		if name == key {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "&")
}

// authorizeURL rebuilds /authorize from a saved query string.
func authorizeURL(originalQuery string) string {
	if originalQuery == "" {
		return "/authorize"
	}
	return "/authorize?" + originalQuery
}
