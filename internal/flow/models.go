package flow

import (
	"net/url"
	"time"
)

// PendingAuthorization is a suspended authorize request: everything needed to
// replay the request once the resource owner has logged in. It is keyed by a
// server-minted correlation token, never by anything derived from client
// input.
type PendingAuthorization struct {
	ID           string // correlation token, minted at suspension time
	ClientID     string
	RedirectURI  string
	ResponseType string
	Scope        string
	State        string // client's state, echoed back verbatim
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Query rebuilds the original authorize query string so the request can be
// replayed after login.
func (p *PendingAuthorization) Query() url.Values {
	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("response_type", p.ResponseType)
	if p.RedirectURI != "" {
		q.Set("redirect_uri", p.RedirectURI)
	}
	if p.Scope != "" {
		q.Set("scope", p.Scope)
	}
	if p.State != "" {
		q.Set("state", p.State)
	}
	return q
}

// Session is an authenticated browser session at the authorization server.
// One session serves any number of clients until it expires, which is what
// makes single sign-on work across authorize requests.
type Session struct {
	ID              string
	UserID          string
	AuthenticatedAt time.Time
	ExpiresAt       time.Time
}
