package handlers

import (
	"errors"
	"net/http"

	"github.com/notdulain/OAuth-Learning/internal/services"

	"github.com/gin-gonic/gin"
)

// OAuth 2.0 error codes (RFC 6749 §4.1.2.1, §5.2)
const (
	errInvalidRequest          = "invalid_request"
	errInvalidClient           = "invalid_client"
	errInvalidGrant            = "invalid_grant"
	errUnauthorizedClient      = "unauthorized_client"
	errUnsupportedGrantType    = "unsupported_grant_type"
	errUnsupportedResponseType = "unsupported_response_type"
	errAccessDenied            = "access_denied"
	errInsufficientScope       = "insufficient_scope"
	errServerError             = "server_error"
)

func respondError(c *gin.Context, status int, code, description string) {
	c.JSON(status, gin.H{
		"error":             code,
		"error_description": description,
	})
}

// grantErrorDescription maps a token service failure to the description
// returned with invalid_grant.
func grantErrorDescription(err error) string {
	switch {
	case errors.Is(err, services.ErrAuthCodeNotFound):
		return "Authorization code is invalid or expired"
	case errors.Is(err, services.ErrAuthCodeClientMismatch):
		return "Authorization code does not belong to this client"
	case errors.Is(err, services.ErrAuthCodeRedirectURI):
		return "redirect_uri mismatch"
	case errors.Is(err, services.ErrInvalidCodeVerifier):
		return "PKCE verification failed"
	case errors.Is(err, services.ErrTokenUserNotFound):
		return "User no longer exists"
	case errors.Is(err, services.ErrRefreshTokenClientMismatch):
		return "refresh_token was not issued to this client"
	case errors.Is(err, services.ErrInvalidRefreshToken):
		return "refresh_token is invalid or expired"
	default:
		return "The provided grant is invalid"
	}
}

// respondTokenError writes the token endpoint error for err.
func respondTokenError(c *gin.Context, grantType string, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorizedClient):
		respondError(c, http.StatusBadRequest, errUnauthorizedClient,
			"Client is not allowed to use grant_type "+grantType)
	case errors.Is(err, services.ErrCodeRequired):
		respondError(c, http.StatusBadRequest, errInvalidRequest, "code is required")
	case errors.Is(err, services.ErrRefreshTokenRequired):
		respondError(c, http.StatusBadRequest, errInvalidRequest, "refresh_token is required")
	case errors.Is(err, services.ErrInvalidGrant):
		respondError(c, http.StatusBadRequest, errInvalidGrant, grantErrorDescription(err))
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, errServerError, "Failed to issue tokens")
	}
}
