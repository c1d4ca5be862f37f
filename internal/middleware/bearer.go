package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/metrics"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const tokenClaimsKey = "token_claims"

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively. ok is false when the
// header is absent or uses another scheme.
func bearerToken(header string) (string, bool) {
	scheme, credential, _ := strings.Cut(strings.TrimSpace(header), " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(credential), true
}

// BearerAuth verifies the access token on every request and stores its
// claims in the context. audience may be empty to use the codec default;
// a nil recorder disables validation metrics.
func BearerAuth(codec *token.Codec, audience string, recorder core.Recorder) gin.HandlerFunc {
	if recorder == nil {
		recorder = metrics.NewNoopMetrics()
	}
	return func(c *gin.Context) {
		start := time.Now()

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || raw == "" {
			recorder.RecordTokenValidation("missing", time.Since(start))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":             "missing_token",
				"error_description": "Authorization header missing or malformed",
			})
			return
		}

		claims, err := codec.Verify(raw, token.KindAccess, audience)
		if err != nil {
			if errors.Is(err, token.ErrExpiredToken) {
				recorder.RecordTokenValidation("expired", time.Since(start))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":             "token_expired",
					"error_description": "Access token has expired",
				})
				return
			}
			recorder.RecordTokenValidation("invalid", time.Since(start))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":             "invalid_token",
				"error_description": "Access token is invalid",
			})
			return
		}

		recorder.RecordTokenValidation("valid", time.Since(start))
		c.Set(tokenClaimsKey, claims)
		c.Next()
	}
}

// RequireScopes rejects requests whose token lacks any of the given scopes.
// It must run after BearerAuth.
func RequireScopes(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		granted := GetTokenScopes(c)
		missing := granted.Missing(required...)
		if len(missing) > 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":             "insufficient_scope",
				"error_description": "Missing required scope(s): " + strings.Join(missing, ", "),
				"required_scopes":   required,
				"token_scopes":      nonNil(granted),
			})
			return
		}
		c.Next()
	}
}

// GetTokenClaims returns the verified claims stored by BearerAuth.
func GetTokenClaims(c *gin.Context) (jwt.MapClaims, bool) {
	v, exists := c.Get(tokenClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(jwt.MapClaims)
	return claims, ok
}

// GetTokenScopes returns the scopes of the verified token, if any.
func GetTokenScopes(c *gin.Context) models.Scopes {
	claims, ok := GetTokenClaims(c)
	if !ok {
		return nil
	}
	raw, _ := claims["scope"].(string)
	return models.ParseScopes(raw)
}

func nonNil(s models.Scopes) models.Scopes {
	if s == nil {
		return models.Scopes{}
	}
	return s
}
