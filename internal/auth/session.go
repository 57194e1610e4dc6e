// auth/session.go
package auth

import (
	"crypto/rand"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "qb-auth-session"

// NewSessionStore builds the cookie session store used to hold the
// short-lived OAuth state between /authorize and the callback. When no
// secret is configured (dev only) an ephemeral key is generated, which
// invalidates in-flight authorizations on restart.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600, // the state is only valid for 10 minutes anyway
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// getSession retrieves the auth session, ignoring decode errors on
// stale or tampered cookies (a fresh session is returned instead).
func getSession(store *sessions.CookieStore, r *http.Request) *sessions.Session {
	session, _ := store.Get(r, sessionName)
	return session
}
