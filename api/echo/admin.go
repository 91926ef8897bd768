package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sentinelsso/sentinel/api"
	"github.com/sentinelsso/sentinel/errors"
)

// RegisterClientHandler creates a client registration.
func (oa *OAuth2API) RegisterClientHandler(c echo.Context) error {
	var req api.RegisterClientRequest
	if err := c.Bind(&req); err != nil {
		return writeOAuthError(c, errors.NewInvalidRequest("malformed request body"))
	}

	client, err := oa.clients.Register(c.Request().Context(),
		req.ClientID, req.Secret, req.Name, req.RedirectURI, req.GrantTypes)
	if err != nil {
		if errors.Is(err, errors.ErrDuplicateClient) {
			return c.JSON(http.StatusConflict, errors.NewInvalidRequest("client identifier already exists"))
		}
		return writeOAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, client)
}

// ListClientsHandler lists registrations without secrets.
func (oa *OAuth2API) ListClientsHandler(c echo.Context) error {
	clients, err := oa.clients.List(c.Request().Context())
	if err != nil {
		return writeOAuthError(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

// GetClientHandler returns a single registration without its secret.
func (oa *OAuth2API) GetClientHandler(c echo.Context) error {
	client, err := oa.clients.Get(c.Request().Context(), c.Param("client_id"))
	if err != nil {
		if errors.Is(err, errors.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, errors.NewInvalidClient("unknown client"))
		}
		return writeOAuthError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClientHandler removes a registration.
func (oa *OAuth2API) DeleteClientHandler(c echo.Context) error {
	deleted, err := oa.clients.Delete(c.Request().Context(), c.Param("client_id"))
	if err != nil {
		return writeOAuthError(c, err)
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, errors.NewInvalidClient("unknown client"))
	}
	return c.NoContent(http.StatusNoContent)
}

// RegisterUserHandler creates a resource-owner account.
func (oa *OAuth2API) RegisterUserHandler(c echo.Context) error {
	var req api.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return writeOAuthError(c, errors.NewInvalidRequest("malformed request body"))
	}

	user, err := oa.users.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errors.ErrDuplicateUser) {
			return c.JSON(http.StatusConflict, errors.NewInvalidRequest("username already exists"))
		}
		return writeOAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, api.NewUserResponse(user))
}
