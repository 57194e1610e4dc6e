// auth/models.go
package auth

import (
	"net/http"
	"time"
)

// TokenSet is the credential record persisted per connected user. The
// JSON field names are the persisted cookie layout and must not change.
type TokenSet struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	RealmID      string     `json:"realmId"` // company ID in QuickBooks
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the record is fully populated. Partial records
// are never handed to callers; stores degrade them to ErrNoToken.
func (t *TokenSet) Valid() bool {
	return t != nil && t.AccessToken != "" && t.RefreshToken != "" && t.RealmID != ""
}

// Expired reports whether the access token is past its expiry. An
// unknown expiry is conservatively treated as not expired.
func (t *TokenSet) Expired(now time.Time) bool {
	if t == nil || t.ExpiresAt == nil {
		return false
	}
	return t.ExpiresAt.Before(now)
}

// TokenStore persists one TokenSet per user identity.
type TokenStore interface {
	Save(userID string, token *TokenSet) error
	Get(userID string) (*TokenSet, error)
	Delete(userID string) error
}

// StoreFactory yields the TokenStore for one request. The cookie store
// is request-scoped (it reads the request and writes Set-Cookie);
// server-side stores ignore the arguments and return a shared instance.
type StoreFactory func(w http.ResponseWriter, r *http.Request) TokenStore

// OAuthConfig holds OAuth 2.0 configuration for the Intuit endpoints.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	RevokeURL    string
}
