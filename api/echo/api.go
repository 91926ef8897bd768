// Package echo exposes the authorization server over HTTP using the echo
// framework. Handlers translate between the wire and the services; all
// protocol decisions live in the services.
package echo

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sentinelsso/sentinel/api"
	"github.com/sentinelsso/sentinel/errors"
	"github.com/sentinelsso/sentinel/internal/flow"
	"github.com/sentinelsso/sentinel/log"
	"github.com/sentinelsso/sentinel/services"
)

// SessionCookieName is the browser session cookie set after login.
const SessionCookieName = "sentinel_session"

// OAuth2API holds the handler dependencies. secureCookies marks the session
// cookie Secure; it follows the scheme the server is published under.
type OAuth2API struct {
	oauth         *services.OAuthService
	clients       *services.ClientService
	users         *services.UserService
	pending       *flow.PendingStore
	sessions      *flow.SessionStore
	logger        log.Logger
	secureCookies bool
}

// NewOAuth2API wires the HTTP layer onto the services and flow stores.
func NewOAuth2API(
	oauth *services.OAuthService,
	clients *services.ClientService,
	users *services.UserService,
	pending *flow.PendingStore,
	sessions *flow.SessionStore,
	logger log.Logger,
	secureCookies bool,
) *OAuth2API {
	return &OAuth2API{
		oauth:         oauth,
		clients:       clients,
		users:         users,
		pending:       pending,
		sessions:      sessions,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes registers all endpoints on the echo instance.
func (oa *OAuth2API) RegisterRoutes(e *echo.Echo) {
	e.GET("/oauth/authorize", oa.AuthorizeHandler)
	e.POST("/oauth/token", oa.TokenHandler)
	e.GET("/oauth/authenticate", oa.AuthenticateHandler)
	e.POST("/oauth/revoke", oa.RevokeHandler)

	e.GET("/oauth/login", oa.LoginFormHandler)
	e.POST("/oauth/login", oa.LoginSubmitHandler)

	e.POST("/users/register", oa.RegisterUserHandler)

	e.POST("/clients", oa.RegisterClientHandler)
	e.GET("/clients", oa.ListClientsHandler)
	e.GET("/clients/:client_id", oa.GetClientHandler)
	e.DELETE("/clients/:client_id", oa.DeleteClientHandler)

	e.GET("/health", oa.HealthHandler)
}

// sessionUserID resolves the browser session cookie to a user id. An absent
// or expired session yields the empty string.
func (oa *OAuth2API) sessionUserID(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	session, err := oa.sessions.Get(cookie.Value)
	if err != nil {
		return ""
	}
	return session.UserID
}

// writeOAuthError renders an error as JSON, mapping unknown errors to
// server_error so no internal detail leaks.
func writeOAuthError(c echo.Context, err error) error {
	var oauthErr *errors.OAuth2Error
	if !errors.As(err, &oauthErr) {
		oauthErr = errors.NewServerError("unexpected error")
	}
	return c.JSON(oauthErr.HTTPStatus(), oauthErr)
}

// AuthorizeHandler starts the authorization code flow. With a live browser
// session the code is issued immediately; otherwise the request is suspended
// and the user sent to the login form.
func (oa *OAuth2API) AuthorizeHandler(c echo.Context) error {
	req := services.AuthorizeRequest{
		ClientID:     c.QueryParam("client_id"),
		ResponseType: c.QueryParam("response_type"),
		RedirectURI:  c.QueryParam("redirect_uri"),
		Scope:        c.QueryParam("scope"),
		State:        c.QueryParam("state"),
	}

	redirectURL, err := oa.oauth.Authorize(c.Request().Context(), req, oa.sessionUserID(c))
	if err == nil {
		return c.Redirect(http.StatusFound, redirectURL)
	}

	if errors.Is(err, errors.ErrAuthenticationRequired) {
		return oa.suspendForLogin(c, req)
	}

	var redirectErr *services.RedirectError
	if errors.As(err, &redirectErr) {
		return c.Redirect(http.StatusFound, redirectErr.Location())
	}

	return writeOAuthError(c, err)
}

// suspendForLogin parks the authorize request and redirects the browser to
// the login form carrying only the correlation token.
func (oa *OAuth2API) suspendForLogin(c echo.Context, req services.AuthorizeRequest) error {
	token, err := oa.pending.Suspend(&flow.PendingAuthorization{
		ClientID:     req.ClientID,
		RedirectURI:  req.RedirectURI,
		ResponseType: req.ResponseType,
		Scope:        req.Scope,
		State:        req.State,
	})
	if err != nil {
		oa.logger.Error(c.Request().Context(), "failed to suspend authorize request", err, nil)
		return writeOAuthError(c, errors.NewServerError("failed to start login"))
	}

	return c.Redirect(http.StatusFound, "/oauth/login?request_id="+token)
}

// TokenHandler exchanges an authorization code or a refresh token for
// tokens. Client credentials come from the form body or HTTP Basic auth.
func (oa *OAuth2API) TokenHandler(c echo.Context) error {
	clientID := c.FormValue("client_id")
	clientSecret := c.FormValue("client_secret")
	if clientID == "" {
		if basicID, basicSecret, ok := c.Request().BasicAuth(); ok {
			clientID, clientSecret = basicID, basicSecret
		}
	}

	ctx := c.Request().Context()

	switch c.FormValue("grant_type") {
	case "authorization_code":
		access, refresh, err := oa.oauth.ExchangeAuthorizationCode(ctx,
			clientID, clientSecret, c.FormValue("code"), c.FormValue("redirect_uri"))
		if err != nil {
			return writeOAuthError(c, err)
		}
		return c.JSON(http.StatusOK, api.NewTokenResponse(access, refresh))

	case "refresh_token":
		access, refresh, err := oa.oauth.RefreshAccessToken(ctx,
			clientID, clientSecret, c.FormValue("refresh_token"))
		if err != nil {
			return writeOAuthError(c, err)
		}
		return c.JSON(http.StatusOK, api.NewTokenResponse(access, refresh))

	default:
		return writeOAuthError(c, errors.NewUnsupportedGrantType())
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AuthenticateHandler resolves a bearer access token to its resource owner.
func (oa *OAuth2API) AuthenticateHandler(c echo.Context) error {
	token, user, err := oa.oauth.Authenticate(c.Request().Context(), bearerToken(c))
	if err != nil {
		return writeOAuthError(c, err)
	}

	return c.JSON(http.StatusOK, &api.IdentityResponse{
		ID:       user.ID,
		Username: user.Username,
		ClientID: token.ClientID,
		Scope:    token.Scope,
	})
}

// RevokeHandler deletes a token by value. The optional token_type_hint picks
// which store to probe first.
func (oa *OAuth2API) RevokeHandler(c echo.Context) error {
	err := oa.oauth.Revoke(c.Request().Context(), c.FormValue("token"), c.FormValue("token_type_hint"))
	if err != nil {
		return writeOAuthError(c, err)
	}
	return c.JSON(http.StatusOK, &api.RevocationResponse{Success: true})
}

// HealthHandler reports liveness.
func (oa *OAuth2API) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
