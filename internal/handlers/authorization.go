package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/metrics"
	"github.com/notdulain/OAuth-Learning/internal/middleware"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"
	"github.com/notdulain/OAuth-Learning/internal/templates"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	signedInNotice     = "Successfully signed in!"
	defaultClientLabel = "the application"

	msgCredentialsRequired = "Username and password are required."
	msgInvalidCredentials  = "Invalid credentials. Try again."
	msgSessionExpired      = "Session expired. Please sign in again."
)

// AuthorizationHandler drives the browser side of the Authorization Code
// Flow: login, consent and logout.
type AuthorizationHandler struct {
	authorizationService *services.AuthorizationService
	clientService        *services.ClientService
	userService          *services.UserService
	sessionService       *services.SessionService
	config               *config.Config
	metrics              core.Recorder
	logger               *zap.SugaredLogger
}

func NewAuthorizationHandler(
	as *services.AuthorizationService,
	cs *services.ClientService,
	us *services.UserService,
	ss *services.SessionService,
	cfg *config.Config,
	m core.Recorder,
	logger *zap.SugaredLogger,
) *AuthorizationHandler {
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuthorizationHandler{
		authorizationService: as,
		clientService:        cs,
		userService:          us,
		sessionService:       ss,
		config:               cfg,
		metrics:              m,
		logger:               logger,
	}
}

// Authorize handles GET /authorize. It validates the request, then shows the
// login page or, with a live session, the consent page.
func (h *AuthorizationHandler) Authorize(c *gin.Context) {
	responseType := c.Query("response_type")
	clientID := c.Query("client_id")
	redirectURI := c.Query("redirect_uri")
	codeChallenge := c.Query("code_challenge")
	codeChallengeMethod := c.Query("code_challenge_method")

	req, err := h.authorizationService.ValidateAuthorizationRequest(
		clientID, redirectURI, responseType, c.Query("scope"),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedResponseType):
			respondError(c, http.StatusBadRequest, errUnsupportedResponseType,
				"Only response_type=code is supported.")
		case errors.Is(err, services.ErrClientNotFound):
			respondError(c, http.StatusBadRequest, errInvalidClient, "Unknown client_id")
		default:
			respondError(c, http.StatusBadRequest, errInvalidRequest,
				"redirect_uri is not registered for this client.")
		}
		return
	}

	originalQuery := stripQueryParam(c.Request.URL.RawQuery, "notice")

	session, user, ok := h.currentUser(c)
	if !ok {
		h.renderLogin(c, clientLabel(req.Client), originalQuery, "")
		return
	}
	if user == nil {
		_ = h.sessionService.Destroy(c.Request.Context(), session.SID)
		clearSessionCookie(c, h.config.CookieSecure)
		h.renderLogin(c, clientLabel(req.Client), originalQuery, msgSessionExpired)
		return
	}

	h.touch(c, session.SID)

	notice := ""
	if c.Query("notice") != "" {
		notice = signedInNotice
	}

	templates.RenderTempl(c, http.StatusOK, templates.ConsentPage(templates.ConsentPageProps{
		BaseProps:  templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		ClientName: clientLabel(req.Client),
		Username:   displayName(user),
		Scopes:     req.Scopes,
		Notice:     notice,
		Payload: templates.ConsentPayload{
			OriginalQuery:       originalQuery,
			ClientID:            clientID,
			RedirectURI:         redirectURI,
			Scope:               req.Scopes.String(),
			State:               c.Query("state"),
			CodeChallenge:       codeChallenge,
			CodeChallengeMethod: codeChallengeMethod,
			ResponseType:        responseType,
			ShowCode:            c.Query("show_code") == "true",
		},
	}))
}

// Login handles POST /login.
func (h *AuthorizationHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	originalQuery := c.PostForm("original_query")
	clientName := h.clientLabelFromQuery(originalQuery)

	if username == "" || password == "" {
		h.renderLogin(c, clientName, originalQuery, msgCredentialsRequired)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		h.metrics.RecordLogin(false)
		h.logger.Infow("login failed", "username", username)
		h.renderLogin(c, clientName, originalQuery, msgInvalidCredentials)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Errorw("failed to create session", "user_id", user.ID, "error", err)
		templates.RenderError(c, http.StatusInternalServerError, "Sign-in failed",
			"Could not start a session. Please try again.")
		return
	}
	h.metrics.RecordLogin(true)
	h.logger.Infow("user signed in", "user_id", user.ID)

	setSessionCookie(c, session.SID, int(h.sessionService.TTL().Seconds()), h.config.CookieSecure)

	location := authorizeURL(originalQuery)
	if originalQuery == "" {
		location += "?"
	} else {
		location += "&"
	}
	c.Redirect(http.StatusFound, location+"notice="+url.QueryEscape(signedInNotice))
}

// Consent handles POST /consent: approve issues a code, anything else denies.
func (h *AuthorizationHandler) Consent(c *gin.Context) {
	originalQuery := c.PostForm("original_query")
	clientID := c.PostForm("client_id")
	redirectURI := c.PostForm("redirect_uri")
	state := c.PostForm("state")

	session, user, ok := h.currentUser(c)
	if !ok {
		if sid := sessionID(c); sid != "" {
			_ = h.sessionService.Destroy(c.Request.Context(), sid)
		}
		c.Redirect(http.StatusFound, authorizeURL(originalQuery))
		return
	}

	client, err := h.clientService.GetClient(clientID)
	if err != nil || !h.clientService.IsRedirectURIAllowed(client, redirectURI) {
		respondError(c, http.StatusBadRequest, errInvalidRequest, "Invalid client or redirect_uri.")
		return
	}

	if user == nil {
		_ = h.sessionService.Destroy(c.Request.Context(), session.SID)
		clearSessionCookie(c, h.config.CookieSecure)
		c.Redirect(http.StatusFound, authorizeURL(originalQuery))
		return
	}

	h.touch(c, session.SID)

	if c.PostForm("decision") != "approve" {
		h.metrics.RecordConsent("deny")
		h.logger.Infow("consent denied", "client_id", client.ClientID, "user_id", user.ID)
		redirectTo(c, redirectURI, map[string]string{"error": errAccessDenied}, state)
		return
	}
	h.metrics.RecordConsent("approve")

	// The consent form carries the scopes already filtered at /authorize;
	// the user's submission is taken as is.
	scopes := models.ParseScopes(c.PostForm("scope"))
	if len(scopes) == 0 {
		scopes = client.Scopes.Clone()
	}
	code, err := h.authorizationService.IssueCode(c.Request.Context(), services.IssueCodeParams{
		ClientID:            client.ClientID,
		RedirectURI:         redirectURI,
		Scopes:              scopes,
		UserID:              user.ID,
		CodeChallenge:       c.PostForm("code_challenge"),
		CodeChallengeMethod: c.PostForm("code_challenge_method"),
	})
	if err != nil {
		h.logger.Errorw("failed to issue authorization code", "client_id", client.ClientID, "error", err)
		redirectTo(c, redirectURI, map[string]string{
			"error":             errServerError,
			"error_description": "Failed to generate authorization code",
		}, state)
		return
	}

	target, err := buildRedirect(redirectURI, map[string]string{"code": code.Code}, state)
	if err != nil {
		respondError(c, http.StatusBadRequest, errInvalidRequest, "Invalid client or redirect_uri.")
		return
	}

	if c.PostForm("show_code") == "true" {
		templates.RenderTempl(c, http.StatusOK, templates.CodePage(templates.CodePageProps{
			ClientName:  clientLabel(client),
			Code:        code.Code,
			State:       state,
			Scopes:      scopes,
			ContinueURL: target,
		}))
		return
	}

	c.Redirect(http.StatusFound, target)
}

// Logout handles POST /logout.
func (h *AuthorizationHandler) Logout(c *gin.Context) {
	if sid := sessionID(c); sid != "" {
		_ = h.sessionService.Destroy(c.Request.Context(), sid)
		clearSessionCookie(c, h.config.CookieSecure)
	}
	c.Redirect(http.StatusFound, authorizeURL(c.PostForm("original_query")))
}

// currentUser resolves the sid cookie. ok is false without a live session;
// user is nil when the session outlived its user.
func (h *AuthorizationHandler) currentUser(c *gin.Context) (*models.Session, *models.User, bool) {
	sid := sessionID(c)
	if sid == "" {
		return nil, nil, false
	}
	session, err := h.sessionService.Get(c.Request.Context(), sid)
	if err != nil {
		return nil, nil, false
	}
	user, err := h.userService.GetUserByID(session.UserID)
	if err != nil {
		return session, nil, true
	}
	return session, user, true
}

// touch slides the session and refreshes the cookie Max-Age to match.
func (h *AuthorizationHandler) touch(c *gin.Context, sid string) {
	if _, err := h.sessionService.Touch(c.Request.Context(), sid); err != nil {
		return
	}
	setSessionCookie(c, sid, int(h.sessionService.TTL().Seconds()), h.config.CookieSecure)
}

func (h *AuthorizationHandler) renderLogin(c *gin.Context, clientName, originalQuery, errMsg string) {
	templates.RenderTempl(c, http.StatusOK, templates.LoginPage(templates.LoginPageProps{
		BaseProps:     templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		ClientName:    clientName,
		Error:         errMsg,
		OriginalQuery: originalQuery,
	}))
}

func (h *AuthorizationHandler) clientLabelFromQuery(originalQuery string) string {
	values, err := url.ParseQuery(originalQuery)
	if err != nil {
		return defaultClientLabel
	}
	client, err := h.clientService.GetClient(values.Get("client_id"))
	if err != nil {
		return defaultClientLabel
	}
	return clientLabel(client)
}

// ============================================================
// Helpers
// ============================================================

func clientLabel(client *models.Client) string {
	switch {
	case client == nil:
		return defaultClientLabel
	case client.Name != "":
		return client.Name
	default:
		return client.ClientID
	}
}

func displayName(user *models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Username
}

// buildRedirect appends params and, when non-empty, state to redirectURI.
func buildRedirect(redirectURI string, params map[string]string, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func redirectTo(c *gin.Context, redirectURI string, params map[string]string, state string) {
	target, err := buildRedirect(redirectURI, params, state)
	if err != nil {
		respondError(c, http.StatusBadRequest, errInvalidRequest, "Invalid client or redirect_uri.")
		return
	}
	c.Redirect(http.StatusFound, target)
}
