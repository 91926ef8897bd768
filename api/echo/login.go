package echo

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/sentinelsso/sentinel/errors"
)

// loginPage is the minimal interactive login form. The correlation token
// rides along as a hidden field; the form never sees the original authorize
// parameters.
var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
  <h1>Sign in{{if .ClientName}} to continue to {{.ClientName}}{{end}}</h1>
  {{if .Error}}<p style="color:red">{{.Error}}</p>{{end}}
  <form method="POST" action="/oauth/login">
    <input type="hidden" name="request_id" value="{{.RequestID}}">
    <label>Username <input type="text" name="username" autofocus></label><br>
    <label>Password <input type="password" name="password"></label><br>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>
`))

type loginPageData struct {
	RequestID  string
	ClientName string
	Error      string
}

func (oa *OAuth2API) renderLogin(c echo.Context, status int, data loginPageData) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return loginPage.Execute(c.Response(), data)
}

// LoginFormHandler shows the login form for a suspended authorize request.
// The correlation token is validated without being consumed, so a page
// reload does not burn the suspension.
func (oa *OAuth2API) LoginFormHandler(c echo.Context) error {
	requestID := c.QueryParam("request_id")
	if requestID == "" {
		return writeOAuthError(c, errors.NewInvalidRequest("request_id is required"))
	}

	pending, err := oa.pending.Peek(requestID)
	if err != nil {
		return writeOAuthError(c, errors.NewInvalidRequest("login request is unknown or has expired"))
	}

	data := loginPageData{RequestID: requestID}
	if client, clientErr := oa.clients.Get(c.Request().Context(), pending.ClientID); clientErr == nil {
		data.ClientName = client.Name
	}
	return oa.renderLogin(c, http.StatusOK, data)
}

// LoginSubmitHandler verifies the credentials, opens a browser session, and
// resumes the suspended authorize request. The suspension is consumed only
// after the credentials check out, so a failed attempt can be retried.
func (oa *OAuth2API) LoginSubmitHandler(c echo.Context) error {
	requestID := c.FormValue("request_id")
	if requestID == "" {
		return writeOAuthError(c, errors.NewInvalidRequest("request_id is required"))
	}

	if _, err := oa.pending.Peek(requestID); err != nil {
		return writeOAuthError(c, errors.NewInvalidRequest("login request is unknown or has expired"))
	}

	ctx := c.Request().Context()
	user, err := oa.users.VerifyCredentials(ctx, c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			return oa.renderLogin(c, http.StatusUnauthorized, loginPageData{
				RequestID: requestID,
				Error:     "Invalid username or password",
			})
		}
		oa.logger.Error(ctx, "credential check failed", err, nil)
		return writeOAuthError(c, errors.NewServerError("failed to verify credentials"))
	}

	pending, err := oa.pending.Consume(requestID)
	if err != nil {
		// Lost a race with another submit or with expiry.
		return writeOAuthError(c, errors.NewInvalidRequest("login request is unknown or has expired"))
	}

	session, err := oa.sessions.Create(user.ID)
	if err != nil {
		oa.logger.Error(ctx, "failed to create session", err, nil)
		return writeOAuthError(c, errors.NewServerError("failed to create session"))
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   oa.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	resumeURL := url.URL{Path: "/oauth/authorize", RawQuery: pending.Query().Encode()}
	return c.Redirect(http.StatusFound, resumeURL.String())
}
