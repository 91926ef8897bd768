package domain

import "context"

// ClientRepository stores registered OAuth2 clients.
type ClientRepository interface {
	// CreateClient persists a new client. Returns errors.ErrDuplicateClient
	// when the public client identifier is already taken.
	CreateClient(ctx context.Context, client *Client) error
	// GetClient looks a client up by its public identifier. Returns
	// errors.ErrClientNotFound when absent.
	GetClient(ctx context.Context, clientID string) (*Client, error)
	// GetClientWithSecret looks a client up by identifier and secret.
	// Returns errors.ErrClientNotFound when either does not match; callers
	// must not be able to distinguish a bad secret from a missing client.
	GetClientWithSecret(ctx context.Context, clientID, secret string) (*Client, error)
	ListClients(ctx context.Context) ([]*Client, error)
	// DeleteClient removes a client, reporting whether a record existed.
	DeleteClient(ctx context.Context, clientID string) (bool, error)
}

// AuthCodeRepository stores single-use authorization codes.
type AuthCodeRepository interface {
	// SaveAuthCode persists a freshly minted code. Returns
	// errors.ErrDuplicateCode if the code value already exists.
	SaveAuthCode(ctx context.Context, code *AuthCode) error
	// ConsumeAuthCode atomically looks up and deletes a code by value, so
	// that exactly one of any number of concurrent callers receives the
	// record. Returns errors.ErrCodeNotFound when no row matched.
	ConsumeAuthCode(ctx context.Context, codeValue string) (*AuthCode, error)
	// DeleteExpiredAuthCodes is a housekeeping sweep; correctness never
	// depends on it because expiry is checked lazily at consume time.
	DeleteExpiredAuthCodes(ctx context.Context) error
}

// TokenRepository stores access and refresh tokens keyed by opaque value.
type TokenRepository interface {
	// StoreTokenPair persists an access token together with its optional
	// refresh token as one logical unit: if either write fails, neither
	// token may be retrievable afterwards.
	StoreTokenPair(ctx context.Context, access, refresh *Token) error
	// GetAccessToken returns errors.ErrTokenNotFound when absent. Expiry is
	// the caller's concern.
	GetAccessToken(ctx context.Context, tokenValue string) (*Token, error)
	GetRefreshToken(ctx context.Context, tokenValue string) (*Token, error)
	// DeleteAccessToken removes a token unconditionally, reporting whether a
	// record was actually deleted.
	DeleteAccessToken(ctx context.Context, tokenValue string) (bool, error)
	DeleteRefreshToken(ctx context.Context, tokenValue string) (bool, error)
	DeleteExpiredTokens(ctx context.Context) error
}

// UserRepository stores resource owners. Registration and password management
// live outside the grant engine; the engine only reads.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	// GetUserByUsername returns errors.ErrUserNotFound when absent.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// OAuthRepository aggregates the narrow persistence contract the grant engine
// is implemented against. Storage backends implement this; protocol logic
// never touches a concrete store type.
type OAuthRepository interface {
	ClientRepository
	AuthCodeRepository
	TokenRepository
	UserRepository
}
