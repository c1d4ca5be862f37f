package middleware

import (
	"net/http"

	"github.com/notdulain/OAuth-Learning/internal/util"

	"github.com/gin-gonic/gin"
)

const metricsRealm = `Bearer realm="metrics"`

// MetricsAuthMiddleware guards the Prometheus endpoint with a static bearer
// token. An empty token leaves the endpoint open.
func MetricsAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		provided, ok := bearerToken(c.GetHeader("Authorization"))
		switch {
		case !ok || provided == "":
			abortMetrics(c, "missing_token", "Bearer token required")
		case !util.SecureCompare(provided, token):
			abortMetrics(c, "invalid_token", "Invalid metrics token")
		default:
			c.Next()
		}
	}
}

func abortMetrics(c *gin.Context, code, description string) {
	c.Header("WWW-Authenticate", metricsRealm)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":             code,
		"error_description": description,
	})
}
