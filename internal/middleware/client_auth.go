package middleware

import (
	"net/http"

	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"

	"github.com/gin-gonic/gin"
)

const authenticatedClientKey = "authenticated_client"

// ClientAuthRealm is advertised in WWW-Authenticate on failed client authentication.
const ClientAuthRealm = "oauth-learning"

// ClientAuth authenticates the calling client with client_secret_post
// (form fields) or, failing that, client_secret_basic.
func ClientAuth(clients *services.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.PostForm("client_id")
		clientSecret := c.PostForm("client_secret")
		if clientID == "" || clientSecret == "" {
			if id, secret, ok := c.Request.BasicAuth(); ok {
				clientID, clientSecret = id, secret
			}
		}

		if clientID == "" || clientSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":             "invalid_client",
				"error_description": "Client credentials missing",
			})
			return
		}

		client, err := clients.ValidateClientCredentials(clientID, clientSecret)
		if err != nil {
			c.Header("WWW-Authenticate", `Basic realm="`+ClientAuthRealm+`"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":             "invalid_client",
				"error_description": "Client authentication failed",
			})
			return
		}

		c.Set(authenticatedClientKey, client)
		c.Next()
	}
}

// GetAuthenticatedClient returns the client stored by ClientAuth.
func GetAuthenticatedClient(c *gin.Context) (*models.Client, bool) {
	v, exists := c.Get(authenticatedClientKey)
	if !exists {
		return nil, false
	}
	client, ok := v.(*models.Client)
	return client, ok
}

// NoStore marks responses as uncacheable (RFC 6749 §5.1).
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
