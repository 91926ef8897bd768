package api

import (
	"time"

	"github.com/sentinelsso/sentinel/domain"
)

// TokenResponse is the body returned by the token endpoint for both the
// authorization_code and refresh_token grants. Expiry fields are absolute
// timestamps rather than expires_in deltas so clients do not need to account
// for transit time.
type TokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	Scope                 string    `json:"scope,omitempty"`
}

// NewTokenResponse builds the wire representation of an issued token pair.
func NewTokenResponse(access, refresh *domain.Token) *TokenResponse {
	return &TokenResponse{
		AccessToken:           access.TokenValue,
		AccessTokenExpiresAt:  access.ExpiresAt,
		RefreshToken:          refresh.TokenValue,
		RefreshTokenExpiresAt: refresh.ExpiresAt,
		Scope:                 access.Scope,
	}
}

// IdentityResponse is returned by the authenticate endpoint: the resource
// owner the presented bearer token belongs to.
type IdentityResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	ClientID string `json:"clientId"`
	Scope    string `json:"scope,omitempty"`
}

// RevocationResponse acknowledges a revoke call. Success is false only when
// no matching token existed; the token is gone either way.
type RevocationResponse struct {
	Success bool `json:"success"`
}

// RegisterClientRequest is the body accepted by the client registration
// endpoint.
type RegisterClientRequest struct {
	ClientID    string   `json:"clientId"`
	Secret      string   `json:"secret"`
	Name        string   `json:"name"`
	RedirectURI string   `json:"redirectUri"`
	GrantTypes  []string `json:"grantTypes"`
}

// RegisterUserRequest is the body accepted by the user registration endpoint.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public projection of a user account.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NewUserResponse builds the wire representation of a user.
func NewUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Username: u.Username}
}
