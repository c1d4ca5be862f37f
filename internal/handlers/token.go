package handlers

import (
	"net/http"

	"github.com/notdulain/OAuth-Learning/internal/middleware"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"

	"github.com/gin-gonic/gin"
)

type TokenHandler struct {
	tokenService *services.TokenService
}

func NewTokenHandler(ts *services.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: ts}
}

// Token handles POST /token. The client has already been authenticated by
// middleware.ClientAuth.
func (h *TokenHandler) Token(c *gin.Context) {
	client, ok := middleware.GetAuthenticatedClient(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errInvalidClient, "Client credentials missing")
		return
	}

	grantType := c.PostForm("grant_type")

	var (
		resp *services.TokenResponse
		err  error
	)
	switch grantType {
	case "":
		respondError(c, http.StatusBadRequest, errInvalidRequest, "grant_type is required")
		return
	case models.GrantTypeClientCredentials:
		resp, err = h.tokenService.IssueClientCredentialsToken(
			c.Request.Context(), client, c.PostForm("scope"),
		)
	case models.GrantTypeAuthorizationCode:
		resp, err = h.tokenService.ExchangeAuthorizationCode(
			c.Request.Context(),
			client,
			c.PostForm("code"),
			c.PostForm("redirect_uri"),
			c.PostForm("code_verifier"),
		)
	case models.GrantTypeRefreshToken:
		resp, err = h.tokenService.RefreshAccessToken(
			c.Request.Context(), client, c.PostForm("refresh_token"), c.PostForm("scope"),
		)
	default:
		respondError(c, http.StatusBadRequest, errUnsupportedGrantType, grantType+" is not supported")
		return
	}
	if err != nil {
		respondTokenError(c, grantType, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
