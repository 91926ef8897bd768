package services

import (
	"context"
	"net/url"
	"time"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
	"github.com/sentinelsso/sentinel/log"
)

// AuthorizeRequest carries the query parameters of an authorize call.
type AuthorizeRequest struct {
	ClientID     string
	ResponseType string
	RedirectURI  string
	Scope        string
	State        string
}

// OAuthService is the protocol state machine: it validates authorize, token,
// authenticate, and revoke requests and drives the TokenService for issuance
// and deletion. It never renders HTTP; handlers translate its errors.
type OAuthService struct {
	repo   domain.OAuthRepository
	tokens *TokenService
	logger log.Logger
}

// NewOAuthService creates the grant engine.
func NewOAuthService(repo domain.OAuthRepository, tokens *TokenService, logger log.Logger) *OAuthService {
	return &OAuthService{repo: repo, tokens: tokens, logger: logger}
}

// Authorize validates an authorize request and, when userID is bound, mints
// a code and returns the redirect URL carrying code and the verbatim state.
//
// Parameter validation is ordered by how much we trust the request:
// client_id and state are checked before anything else because without them
// no redirect may ever be issued; the redirect URI is compared against the
// registration before it is used as an error sink; only a fully validated
// request may suspend for login, which Authorize signals with
// errors.ErrAuthenticationRequired.
func (s *OAuthService) Authorize(ctx context.Context, req AuthorizeRequest, userID string) (string, error) {
	if req.ClientID == "" {
		return "", errors.NewInvalidRequest("client_id is required")
	}
	if req.State == "" {
		return "", errors.NewInvalidRequest("state is required")
	}

	client, err := s.repo.GetClient(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, errors.ErrClientNotFound) {
			return "", errors.NewInvalidClient("unknown client")
		}
		return "", errors.NewServerError("failed to load client")
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = client.RedirectURI
	}
	if redirectURI != client.RedirectURI {
		// Never redirect to an unregistered URI, not even to report an error.
		return "", errors.NewInvalidRequest("redirect_uri does not match the registered value")
	}

	// From here on the redirect URI is trusted; protocol errors are encoded
	// into a redirect to it, carrying the state back verbatim.
	if req.ResponseType != domain.ResponseTypeCode {
		return "", &RedirectError{RedirectURI: redirectURI, Err: errors.NewUnsupportedResponseType().WithState(req.State)}
	}
	if !client.AllowsGrant(domain.GrantTypeAuthorizationCode) {
		return "", &RedirectError{RedirectURI: redirectURI, Err: errors.NewUnauthorizedClient("client is not registered for the authorization_code grant").WithState(req.State)}
	}

	if userID == "" {
		return "", errors.ErrAuthenticationRequired
	}

	code, err := s.tokens.GenerateAuthCode(ctx, client.ClientID, userID, redirectURI, req.Scope)
	if err != nil {
		return "", &RedirectError{RedirectURI: redirectURI, Err: errors.NewServerError("failed to issue authorization code").WithState(req.State)}
	}

	return buildRedirect(redirectURI, url.Values{
		"code":  {code.Code},
		"state": {req.State},
	}), nil
}

// buildRedirect appends query parameters to a redirect URI, preserving any
// query the registration already carries.
func buildRedirect(redirectURI string, params url.Values) string {
	u, err := url.Parse(redirectURI)
	if err != nil {
		// The URI matched the registration; a parse failure here means the
		// registration itself is broken. Fall back to naive concatenation.
		return redirectURI + "?" + params.Encode()
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Set(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedirectError is a protocol error raised after the redirect URI was
// validated. Handlers encode it into a redirect instead of a JSON body.
type RedirectError struct {
	RedirectURI string
	Err         *errors.OAuth2Error
}

func (e *RedirectError) Error() string { return e.Err.Error() }

func (e *RedirectError) Unwrap() error { return e.Err }

// Location returns the full error redirect URL.
func (e *RedirectError) Location() string {
	return ErrorRedirect(e.RedirectURI, e.Err)
}

// ErrorRedirect encodes a protocol error into the client's redirect URI. Only
// called for errors raised after the redirect URI was validated.
func ErrorRedirect(redirectURI string, oauthErr *errors.OAuth2Error) string {
	params := url.Values{"error": {oauthErr.Code}}
	if oauthErr.Description != "" {
		params.Set("error_description", oauthErr.Description)
	}
	if oauthErr.State != "" {
		params.Set("state", oauthErr.State)
	}
	return buildRedirect(redirectURI, params)
}

// ExchangeAuthorizationCode redeems a code for a token pair. The code is
// consumed atomically before its bindings are checked, so a failed exchange
// still burns it.
func (s *OAuthService) ExchangeAuthorizationCode(ctx context.Context, clientID, clientSecret, codeValue, redirectURI string) (*domain.Token, *domain.Token, error) {
	if clientID == "" || clientSecret == "" {
		return nil, nil, errors.NewInvalidRequest("client credentials are required")
	}
	if codeValue == "" {
		return nil, nil, errors.NewInvalidRequest("code is required")
	}

	client, err := s.repo.GetClientWithSecret(ctx, clientID, clientSecret)
	if err != nil {
		if errors.Is(err, errors.ErrClientNotFound) {
			return nil, nil, errors.NewInvalidClient("client authentication failed")
		}
		return nil, nil, errors.NewServerError("failed to load client")
	}
	if !client.AllowsGrant(domain.GrantTypeAuthorizationCode) {
		return nil, nil, errors.NewUnauthorizedClient("client is not registered for the authorization_code grant")
	}

	code, err := s.repo.ConsumeAuthCode(ctx, codeValue)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, nil, errors.NewInvalidGrant("authorization code is invalid or already used")
		}
		return nil, nil, errors.NewServerError("failed to consume authorization code")
	}

	if code.Expired(time.Now().UTC()) {
		return nil, nil, errors.NewInvalidGrant("authorization code has expired")
	}
	if code.ClientID != client.ClientID {
		return nil, nil, errors.NewInvalidGrant("authorization code was issued to another client")
	}
	if code.RedirectURI != redirectURI {
		return nil, nil, errors.NewInvalidGrant("redirect_uri does not match the authorization request")
	}

	access, refresh, err := s.tokens.GenerateTokenPair(ctx, client.ClientID, code.UserID, code.Scope)
	if err != nil {
		return nil, nil, errors.NewServerError("failed to issue tokens")
	}
	return access, refresh, nil
}

// RefreshAccessToken issues a fresh access token against a live refresh
// token. The refresh token is returned unchanged: it is not rotated, so its
// expiry bounds the total lifetime of the delegation.
func (s *OAuthService) RefreshAccessToken(ctx context.Context, clientID, clientSecret, refreshValue string) (*domain.Token, *domain.Token, error) {
	if clientID == "" || clientSecret == "" {
		return nil, nil, errors.NewInvalidRequest("client credentials are required")
	}
	if refreshValue == "" {
		return nil, nil, errors.NewInvalidRequest("refresh_token is required")
	}

	client, err := s.repo.GetClientWithSecret(ctx, clientID, clientSecret)
	if err != nil {
		if errors.Is(err, errors.ErrClientNotFound) {
			return nil, nil, errors.NewInvalidClient("client authentication failed")
		}
		return nil, nil, errors.NewServerError("failed to load client")
	}
	if !client.AllowsGrant(domain.GrantTypeRefreshToken) {
		return nil, nil, errors.NewUnauthorizedClient("client is not registered for the refresh_token grant")
	}

	refresh, err := s.repo.GetRefreshToken(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, errors.ErrTokenNotFound) {
			return nil, nil, errors.NewInvalidGrant("refresh token is invalid")
		}
		return nil, nil, errors.NewServerError("failed to load refresh token")
	}
	if refresh.Expired(time.Now().UTC()) {
		return nil, nil, errors.NewInvalidGrant("refresh token has expired")
	}
	if refresh.ClientID != client.ClientID {
		return nil, nil, errors.NewInvalidGrant("refresh token was issued to another client")
	}

	access, err := s.tokens.IssueAccessToken(ctx, client.ClientID, refresh.UserID, refresh.Scope)
	if err != nil {
		return nil, nil, errors.NewServerError("failed to issue access token")
	}
	return access, refresh, nil
}

// Authenticate resolves a bearer access token to the token record and its
// resource owner.
func (s *OAuthService) Authenticate(ctx context.Context, tokenValue string) (*domain.Token, *domain.User, error) {
	if tokenValue == "" {
		return nil, nil, errors.NewInvalidRequest("access token is required")
	}

	token, err := s.tokens.ValidateAccessToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, errors.ErrTokenNotFound) {
			return nil, nil, errors.NewInvalidToken("access token is invalid or expired")
		}
		return nil, nil, errors.NewServerError("failed to validate access token")
	}

	user, err := s.repo.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, nil, errors.NewInvalidToken("token owner no longer exists")
		}
		return nil, nil, errors.NewServerError("failed to load token owner")
	}

	return token, user, nil
}

// Revoke deletes the matching token. The hint selects which store is probed
// first; an absent or unrecognized hint probes access tokens first. Expired
// but still-present tokens delete successfully; only a token that matched
// neither store reports token_not_found.
func (s *OAuthService) Revoke(ctx context.Context, tokenValue, tokenTypeHint string) error {
	if tokenValue == "" {
		return errors.NewInvalidRequest("token is required")
	}

	order := []string{domain.TokenTypeAccess, domain.TokenTypeRefresh}
	if tokenTypeHint == domain.TokenTypeRefresh {
		order = []string{domain.TokenTypeRefresh, domain.TokenTypeAccess}
	}

	for _, tokenType := range order {
		var deleted bool
		var err error
		if tokenType == domain.TokenTypeAccess {
			deleted, err = s.tokens.RevokeAccessToken(ctx, tokenValue)
		} else {
			deleted, err = s.tokens.RevokeRefreshToken(ctx, tokenValue)
		}
		if err != nil {
			return errors.NewServerError("failed to revoke token")
		}
		if deleted {
			s.logger.Info(ctx, "token revoked", map[string]interface{}{
				"token_type": tokenType,
			})
			return nil
		}
	}

	return errors.NewTokenNotFound()
}
