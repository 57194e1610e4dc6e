// auth/cookie_store.go
package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const cookiePrefix = "qb_"

// CookieOptions control the flags on persisted token cookies.
type CookieOptions struct {
	// Secure marks the cookie HTTPS-only. Enabled in production.
	Secure bool

	// TTL is the cookie lifetime. It is deliberately independent of the
	// access token's own expiry so a valid refresh token survives long
	// after the access token lapsed. Default 100 days.
	TTL time.Duration
}

// CookieTokenStore persists the TokenSet as base64-encoded JSON in an
// httpOnly cookie named qb_<userID>. The store is request-scoped: it
// reads from the inbound request and writes Set-Cookie on the response.
//
// The base64 step keeps the JSON survivable in the cookie header; it is
// encoding, not encryption. Confidentiality comes from the transport
// (Secure + httpOnly).
type CookieTokenStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions
}

// NewCookieTokenStore creates a token store bound to one request.
func NewCookieTokenStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieTokenStore {
	if opts.TTL <= 0 {
		opts.TTL = 100 * 24 * time.Hour
	}
	return &CookieTokenStore{w: w, r: r, opts: opts}
}

func (s *CookieTokenStore) name(userID string) string {
	return cookiePrefix + userID
}

// Save serializes the record and overwrites any prior cookie value.
// The expiry timestamp is truncated to whole seconds before encoding.
func (s *CookieTokenStore) Save(userID string, token *TokenSet) error {
	if !token.Valid() {
		return fmt.Errorf("refusing to save partial token record")
	}

	stored := *token
	if stored.ExpiresAt != nil {
		t := stored.ExpiresAt.UTC().Truncate(time.Second)
		stored.ExpiresAt = &t
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	http.SetCookie(s.w, &http.Cookie{
		Name:     s.name(userID),
		Value:    base64.StdEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   int(s.opts.TTL.Seconds()),
		Expires:  time.Now().Add(s.opts.TTL).UTC(),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get returns the decoded record, or ErrNoToken when the cookie is
// missing, malformed, truncated or partially populated. Decode failures
// never surface as distinct errors.
func (s *CookieTokenStore) Get(userID string) (*TokenSet, error) {
	c, err := s.r.Cookie(s.name(userID))
	if err != nil || c.Value == "" {
		return nil, ErrNoToken
	}

	data, err := base64.StdEncoding.DecodeString(c.Value)
	if err != nil {
		return nil, ErrNoToken
	}

	var token TokenSet
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, ErrNoToken
	}
	if !token.Valid() {
		return nil, ErrNoToken
	}
	return &token, nil
}

// Delete expires the cookie. Idempotent: succeeds when nothing was stored.
func (s *CookieTokenStore) Delete(userID string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.name(userID),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
