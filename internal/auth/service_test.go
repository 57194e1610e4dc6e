package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory TokenStore for tests.
type memStore struct {
	mu     sync.Mutex
	tokens map[string]*TokenSet
	saves  int
}

func newMemStore() *memStore {
	return &memStore{tokens: make(map[string]*TokenSet)}
}

func (m *memStore) Save(userID string, token *TokenSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	m.saves++
	return nil
}

func (m *memStore) Get(userID string) (*TokenSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[userID]
	if !ok {
		return nil, ErrNoToken
	}
	return token, nil
}

func (m *memStore) Delete(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

// tokenEndpoint is a stub Intuit bearer-token endpoint.
type tokenEndpoint struct {
	mu       sync.Mutex
	calls    int
	lastForm url.Values
	respond  func(w http.ResponseWriter, form url.Values)
}

func (e *tokenEndpoint) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		e.mu.Lock()
		e.calls++
		e.lastForm = r.PostForm
		e.mu.Unlock()
		e.respond(w, r.PostForm)
	}
}

func (e *tokenEndpoint) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func okTokens(access, refresh string, expiresIn int) func(http.ResponseWriter, url.Values) {
	return func(w http.ResponseWriter, _ url.Values) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"` + access + `","refresh_token":"` + refresh +
			`","token_type":"bearer","expires_in":` + strconv.Itoa(expiresIn) + `}`))
	}
}

func newTestService(tokenURL string) *Service {
	return NewService(OAuthConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURI:  "https://example.com/oauth/callback",
		Scopes:       []string{"com.intuit.quickbooks.accounting", "openid"},
		AuthURL:      "https://appcenter.intuit.com/connect/oauth2",
		TokenURL:     tokenURL,
	})
}

func TestAuthorizeURL(t *testing.T) {
	svc := newTestService("http://unused")

	raw := svc.AuthorizeURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	require.Equal(t, "test-client-id", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "https://example.com/oauth/callback", q.Get("redirect_uri"))
	require.Equal(t, "com.intuit.quickbooks.accounting openid", q.Get("scope"))
	require.Equal(t, "state-123", q.Get("state"))
}

func TestExchange_ComputesAbsoluteExpiry(t *testing.T) {
	ep := &tokenEndpoint{respond: okTokens("A", "R", 3600)}
	srv := httptest.NewServer(ep.handler())
	defer srv.Close()

	svc := newTestService(srv.URL)

	before := time.Now()
	token, err := svc.Exchange(context.Background(), "abc123")
	require.NoError(t, err)

	require.Equal(t, "A", token.AccessToken)
	require.Equal(t, "R", token.RefreshToken)
	require.NotNil(t, token.ExpiresAt)
	require.WithinDuration(t, before.Add(3600*time.Second), *token.ExpiresAt, 5*time.Second)

	require.Equal(t, "authorization_code", ep.lastForm.Get("grant_type"))
	require.Equal(t, "abc123", ep.lastForm.Get("code"))
	require.Equal(t, "https://example.com/oauth/callback", ep.lastForm.Get("redirect_uri"))
}

func TestExchange_SendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		okTokens("A", "R", 3600)(w, nil)
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	_, err := svc.Exchange(context.Background(), "code")
	require.NoError(t, err)
	require.True(t, gotOK)
	require.Equal(t, "test-client-id", gotUser)
	require.Equal(t, "test-client-secret", gotPass)
}

func TestExchange_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	_, err := svc.Exchange(context.Background(), "bad-code")

	var exchErr *ExchangeError
	require.ErrorAs(t, err, &exchErr)
	require.Equal(t, http.StatusBadRequest, exchErr.StatusCode)
}

func TestRefresh_RotatesAndPreservesRealm(t *testing.T) {
	ep := &tokenEndpoint{respond: okTokens("new-access", "new-refresh", 3600)}
	srv := httptest.NewServer(ep.handler())
	defer srv.Close()

	svc := newTestService(srv.URL)
	token, err := svc.Refresh(context.Background(), "old-refresh", "realm-999")
	require.NoError(t, err)

	require.Equal(t, "new-access", token.AccessToken)
	require.Equal(t, "new-refresh", token.RefreshToken, "rotated refresh token must replace the input")
	require.Equal(t, "realm-999", token.RealmID)
	require.Equal(t, "refresh_token", ep.lastForm.Get("grant_type"))
	require.Equal(t, "old-refresh", ep.lastForm.Get("refresh_token"))
}

func TestRefresh_ReusesRefreshTokenWhenOmitted(t *testing.T) {
	ep := &tokenEndpoint{respond: okTokens("new-access", "", 3600)}
	srv := httptest.NewServer(ep.handler())
	defer srv.Close()

	svc := newTestService(srv.URL)
	token, err := svc.Refresh(context.Background(), "old-refresh", "realm-999")
	require.NoError(t, err)
	require.Equal(t, "old-refresh", token.RefreshToken)
}

func TestEnsureFresh_RefreshesExpiredExactlyOnce(t *testing.T) {
	ep := &tokenEndpoint{respond: okTokens("fresh-access", "fresh-refresh", 3600)}
	srv := httptest.NewServer(ep.handler())
	defer srv.Close()

	svc := newTestService(srv.URL)

	expired := time.Now().Add(-time.Minute)
	store := newMemStore()
	require.NoError(t, store.Save("u1", &TokenSet{
		AccessToken:  "stale-access",
		RefreshToken: "stale-refresh",
		RealmID:      "realm-7",
		ExpiresAt:    &expired,
	}))
	store.saves = 0

	token, err := svc.EnsureFresh(context.Background(), store, "u1")
	require.NoError(t, err)
	require.Equal(t, "fresh-access", token.AccessToken)
	require.Equal(t, "realm-7", token.RealmID)

	require.Equal(t, 1, ep.callCount(), "expired token must trigger exactly one refresh")
	require.Equal(t, 1, store.saves, "refreshed record must be persisted")

	stored, err := store.Get("u1")
	require.NoError(t, err)
	require.Equal(t, "fresh-access", stored.AccessToken)
}

func TestEnsureFresh_SkipsRefreshWhenNotExpired(t *testing.T) {
	ep := &tokenEndpoint{respond: func(w http.ResponseWriter, _ url.Values) {
		http.Error(w, "must not be called", http.StatusInternalServerError)
	}}
	srv := httptest.NewServer(ep.handler())
	defer srv.Close()

	svc := newTestService(srv.URL)

	future := time.Now().Add(time.Hour)
	store := newMemStore()
	require.NoError(t, store.Save("u1", &TokenSet{
		AccessToken:  "live-access",
		RefreshToken: "live-refresh",
		RealmID:      "realm-7",
		ExpiresAt:    &future,
	}))

	token, err := svc.EnsureFresh(context.Background(), store, "u1")
	require.NoError(t, err)
	require.Equal(t, "live-access", token.AccessToken)
	require.Zero(t, ep.callCount(), "unexpired token must not be refreshed")
}

func TestEnsureFresh_NoStoredToken(t *testing.T) {
	svc := newTestService("http://unused")
	_, err := svc.EnsureFresh(context.Background(), newMemStore(), "nobody")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestEnsureFresh_RefreshRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)

	expired := time.Now().Add(-time.Minute)
	store := newMemStore()
	require.NoError(t, store.Save("u1", &TokenSet{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		RealmID:      "realm-7",
		ExpiresAt:    &expired,
	}))

	_, err := svc.EnsureFresh(context.Background(), store, "u1")
	var exchErr *ExchangeError
	require.ErrorAs(t, err, &exchErr)
}
