package domain

import "time"

// AuthCode is a single-use authorization code issued by the authorize
// endpoint and redeemed exactly once at the token endpoint. The redirect URI
// is snapshotted at issuance and must match verbatim at exchange time.
type AuthCode struct {
	ID          string    `bson:"_id" json:"id"`
	Code        string    `bson:"code" json:"code"`
	ClientID    string    `bson:"client_id" json:"client_id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	RedirectURI string    `bson:"redirect_uri" json:"redirect_uri"`
	Scope       string    `bson:"scope,omitempty" json:"scope,omitempty"`
	ExpiresAt   time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *AuthCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
