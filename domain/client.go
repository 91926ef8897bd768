package domain

import "time"

// Grant types clients can be registered for.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
)

// ResponseTypeCode is the only supported authorize response type.
const ResponseTypeCode = "code"

// Client represents a registered third-party application that may request
// tokens on behalf of a resource owner.
//
//nolint:tagliatelle
type Client struct {
	ID          string    `bson:"_id" json:"id,omitempty"`
	ClientID    string    `bson:"client_id" json:"client_id"`
	Secret      string    `bson:"client_secret,omitempty" json:"client_secret,omitempty"`
	Name        string    `bson:"client_name,omitempty" json:"name,omitempty"`
	RedirectURI string    `bson:"redirect_uri" json:"redirect_uri"`
	GrantTypes  []string  `bson:"grant_types" json:"grant_types"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at,omitempty"`
}

// AllowsGrant reports whether the client is registered for the given grant type.
func (c *Client) AllowsGrant(grantType string) bool {
	for _, gt := range c.GrantTypes {
		if gt == grantType {
			return true
		}
	}
	return false
}

// WithoutSecret returns a copy of the client safe for listing responses.
func (c *Client) WithoutSecret() *Client {
	clean := *c
	clean.Secret = ""
	return &clean
}
