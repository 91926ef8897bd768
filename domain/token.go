package domain

import "time"

// Token types stored by the token repository.
const (
	TokenTypeAccess  = "access_token"
	TokenTypeRefresh = "refresh_token"
)

// Token is an opaque bearer credential. Access and refresh tokens share the
// shape but live in separate stores and have independent lifetimes.
type Token struct {
	ID         string    `bson:"_id" json:"id"`
	TokenType  string    `bson:"token_type" json:"token_type"`
	TokenValue string    `bson:"token_value" json:"token_value"`
	ClientID   string    `bson:"client_id" json:"client_id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Scope      string    `bson:"scope,omitempty" json:"scope,omitempty"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
// Expiry is evaluated lazily at lookup time; expired rows stay inert until
// the housekeeping sweep removes them.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
