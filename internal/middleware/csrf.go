package middleware

import (
	"encoding/base64"
	"net/http"

	"github.com/notdulain/OAuth-Learning/internal/templates"
	"github.com/notdulain/OAuth-Learning/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	csrfTokenKey    = "csrf_token"
	csrfFormField   = "csrf_token"
	csrfHeaderField = "X-CSRF-Token"
)

// CSRFMiddleware provides CSRF protection for the login, consent and logout
// forms. The token lives in the gin-contrib session cookie, which is
// separate from the sid cookie of the session registry.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		// Generate token if not exists
		token, _ := session.Get(csrfTokenKey).(string)
		if token == "" {
			generated, err := generateCSRFToken()
			if err != nil {
				abortCSRF(c, http.StatusInternalServerError, "Failed to generate CSRF token.")
				return
			}
			token = generated
			session.Set(csrfTokenKey, token)
			if err := session.Save(); err != nil {
				abortCSRF(c, http.StatusInternalServerError, "Failed to save CSRF token.")
				return
			}
		}

		// Make token available to templates
		c.Set(csrfTokenKey, token)

		if c.Request.Method == http.MethodPost {
			submittedToken := c.PostForm(csrfFormField)
			if submittedToken == "" {
				submittedToken = c.GetHeader(csrfHeaderField)
			}

			if submittedToken == "" || !util.SecureCompare(submittedToken, token) {
				abortCSRF(c, http.StatusForbidden,
					"CSRF token validation failed. Please refresh the page and try again.")
				return
			}
		}

		c.Next()
	}
}

func abortCSRF(c *gin.Context, status int, message string) {
	templates.RenderError(c, status, "Request rejected", message)
	c.Abort()
}

// generateCSRFToken generates a random CSRF token
func generateCSRFToken() (string, error) {
	b, err := util.CryptoRandomBytes(32)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GetCSRFToken retrieves the CSRF token from the context.
// It is empty when CSRF protection is disabled.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfTokenKey); exists {
		if tokenStr, ok := token.(string); ok {
			return tokenStr
		}
	}
	return ""
}
