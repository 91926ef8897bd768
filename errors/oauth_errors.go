package errors

import (
	"fmt"
	"net/http"
)

// OAuth2Error represents a standardized OAuth 2.0 error response. When the
// failing request carried a state parameter and a trusted redirect URI is
// known, State is echoed back verbatim on the error redirect.
type OAuth2Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	State       string `json:"state,omitempty"`
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WithState returns a copy of the error carrying the client's state value.
func (e *OAuth2Error) WithState(state string) *OAuth2Error {
	clone := *e
	clone.State = state
	return &clone
}

// HTTPStatus maps the error code to the status used when the error is
// returned as JSON rather than encoded into a redirect.
func (e *OAuth2Error) HTTPStatus() int {
	switch e.Code {
	case InvalidClient, InvalidToken:
		return http.StatusUnauthorized
	case ServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Standard OAuth2 error codes, plus the revocation-specific token_not_found
// used to let callers distinguish "already revoked" for monitoring.
const (
	InvalidRequest          = "invalid_request"
	InvalidClient           = "invalid_client"
	InvalidGrant            = "invalid_grant"
	InvalidToken            = "invalid_token"
	UnauthorizedClient      = "unauthorized_client"
	UnsupportedGrantType    = "unsupported_grant_type"
	UnsupportedResponseType = "unsupported_response_type"
	AccessDenied            = "access_denied"
	ServerError             = "server_error"
	TokenNotFound           = "token_not_found"
)

func NewInvalidRequest(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidRequest, Description: description}
}

func NewInvalidClient(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidClient, Description: description}
}

func NewInvalidGrant(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidGrant, Description: description}
}

func NewInvalidToken(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidToken, Description: description}
}

func NewUnauthorizedClient(description string) *OAuth2Error {
	return &OAuth2Error{Code: UnauthorizedClient, Description: description}
}

func NewUnsupportedGrantType() *OAuth2Error {
	return &OAuth2Error{
		Code:        UnsupportedGrantType,
		Description: "The authorization grant type is not supported",
	}
}

func NewUnsupportedResponseType() *OAuth2Error {
	return &OAuth2Error{
		Code:        UnsupportedResponseType,
		Description: "Only the \"code\" response type is supported",
	}
}

func NewTokenNotFound() *OAuth2Error {
	return &OAuth2Error{
		Code:        TokenNotFound,
		Description: "No matching token was found",
	}
}

func NewServerError(description string) *OAuth2Error {
	return &OAuth2Error{Code: ServerError, Description: description}
}
