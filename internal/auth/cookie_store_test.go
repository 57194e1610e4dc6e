package auth

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// carryCookies builds a new request carrying the cookies a previous
// response set, simulating the browser round trip.
func carryCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func TestCookieStore_RoundTrip(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	token := &TokenSet{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		RealmID:      "4620816365",
		ExpiresAt:    &expires,
	}

	rec := httptest.NewRecorder()
	store := NewCookieTokenStore(rec, httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{})
	require.NoError(t, store.Save("default_user", token))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, "qb_default_user", c.Name)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, int((100 * 24 * time.Hour).Seconds()), c.MaxAge)

	req := carryCookies(t, rec)
	loaded, err := NewCookieTokenStore(httptest.NewRecorder(), req, CookieOptions{}).Get("default_user")
	require.NoError(t, err)
	require.Equal(t, token.AccessToken, loaded.AccessToken)
	require.Equal(t, token.RefreshToken, loaded.RefreshToken)
	require.Equal(t, token.RealmID, loaded.RealmID)
	require.NotNil(t, loaded.ExpiresAt)
	require.True(t, loaded.ExpiresAt.Equal(expires))
}

func TestCookieStore_RoundTrip_NoExpiry(t *testing.T) {
	token := &TokenSet{AccessToken: "a", RefreshToken: "r", RealmID: "9"}

	rec := httptest.NewRecorder()
	store := NewCookieTokenStore(rec, httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{})
	require.NoError(t, store.Save("u1", token))

	loaded, err := NewCookieTokenStore(httptest.NewRecorder(), carryCookies(t, rec), CookieOptions{}).Get("u1")
	require.NoError(t, err)
	require.Nil(t, loaded.ExpiresAt)
	require.False(t, loaded.Expired(time.Now()), "unknown expiry must count as not expired")
}

func TestCookieStore_GetNeverSaved(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	store := NewCookieTokenStore(httptest.NewRecorder(), req, CookieOptions{})

	_, err := store.Get("default_user")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestCookieStore_GetCorrupted(t *testing.T) {
	cases := map[string]string{
		"not base64":       "%%%not-base64%%%",
		"not json":         base64.StdEncoding.EncodeToString([]byte("not json at all")),
		"truncated json":   base64.StdEncoding.EncodeToString([]byte(`{"access_token":"a","refresh`)),
		"partial record":   base64.StdEncoding.EncodeToString([]byte(`{"access_token":"a"}`)),
		"empty object":     base64.StdEncoding.EncodeToString([]byte(`{}`)),
		"wrong json shape": base64.StdEncoding.EncodeToString([]byte(`[1,2,3]`)),
	}

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "qb_default_user", Value: value})

			store := NewCookieTokenStore(httptest.NewRecorder(), req, CookieOptions{})
			_, err := store.Get("default_user")
			require.ErrorIs(t, err, ErrNoToken, "decode failure must degrade to absent")
		})
	}
}

func TestCookieStore_SaveRejectsPartialRecord(t *testing.T) {
	store := NewCookieTokenStore(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{})
	require.Error(t, store.Save("u1", &TokenSet{AccessToken: "only-access"}))
}

func TestCookieStore_Delete(t *testing.T) {
	rec := httptest.NewRecorder()
	store := NewCookieTokenStore(rec, httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{})

	// Deleting a value that was never stored still succeeds.
	require.NoError(t, store.Delete("default_user"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "qb_default_user", cookies[0].Name)
	require.Equal(t, -1, cookies[0].MaxAge)
	require.Empty(t, cookies[0].Value)
}
