// auth/service.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eGGnogSC/qbconnect/internal/logger"
)

// Service handles OAuth 2.0 operations against the Intuit endpoints:
// building the authorization URL, the code exchange, refresh and
// revocation, plus the load-refresh-save lifecycle around a TokenStore.
type Service struct {
	config OAuthConfig
	http   *http.Client

	// refreshGroup collapses concurrent refreshes for the same user into
	// one token-endpoint call, avoiding the last-write-wins race when
	// several requests see an expired token at once.
	refreshGroup singleflight.Group

	now func() time.Time
}

// NewService creates a new auth service.
func NewService(config OAuthConfig) *Service {
	return &Service{
		config: config,
		http:   &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// AuthorizeURL generates the QuickBooks authorization URL for the given
// anti-CSRF state value.
func (s *Service) AuthorizeURL(state string) string {
	u, _ := url.Parse(s.config.AuthURL)
	q := u.Query()

	q.Set("client_id", s.config.ClientID)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(s.config.Scopes, " "))
	q.Set("redirect_uri", s.config.RedirectURI)
	q.Set("state", state)

	u.RawQuery = q.Encode()
	return u.String()
}

// tokenResponse is the wire shape of the Intuit bearer token endpoint.
// expires_in is relative seconds; it is converted to an absolute instant
// immediately so expiry checks never re-derive it.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Exchange trades an authorization code for a TokenSet. RealmID is not
// part of the token response; the callback handler sets it from the
// realmId query parameter.
func (s *Service) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.config.RedirectURI)

	tr, err := s.executeTokenRequest(ctx, data)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return &TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    &expiresAt,
	}, nil
}

// Refresh performs a refresh-token exchange. The returned record always
// reflects the latest pair: a rotated refresh token replaces the input,
// and when the provider omits one the supplied token is reused. The
// realm is carried over since the token endpoint does not return it.
func (s *Service) Refresh(ctx context.Context, refreshToken, realmID string) (*TokenSet, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	tr, err := s.executeTokenRequest(ctx, data)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	token := &TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		RealmID:      realmID,
		ExpiresAt:    &expiresAt,
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}

// EnsureFresh loads the user's record, refreshes it when expired and
// persists the result before returning. Concurrent callers for the same
// user share a single refresh.
func (s *Service) EnsureFresh(ctx context.Context, store TokenStore, userID string) (*TokenSet, error) {
	token, err := store.Get(userID)
	if err != nil {
		return nil, err
	}

	if !token.Expired(s.now()) {
		return token, nil
	}

	v, err, _ := s.refreshGroup.Do(userID, func() (interface{}, error) {
		refreshed, err := s.Refresh(ctx, token.RefreshToken, token.RealmID)
		if err != nil {
			return nil, err
		}
		if err := store.Save(userID, refreshed); err != nil {
			return nil, fmt.Errorf("failed to save refreshed token: %w", err)
		}
		logger.Named("auth").Info("access token refreshed",
			logger.UserID(userID), logger.RealmID(refreshed.RealmID))
		return refreshed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TokenSet), nil
}

// executeTokenRequest performs the actual token request to QuickBooks.
func (s *Service) executeTokenRequest(ctx context.Context, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &ExchangeError{Err: err}
	}

	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("Accept", "application/json")
	req.SetBasicAuth(s.config.ClientID, s.config.ClientSecret)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &ExchangeError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("failed to parse token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return nil, &ExchangeError{Err: fmt.Errorf("no access_token in response")}
	}
	return &tr, nil
}

// Revoke revokes a single token (access or refresh) with QuickBooks.
func (s *Service) Revoke(ctx context.Context, token string) error {
	payload, _ := json.Marshal(map[string]string{"token": token})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.RevokeURL, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.SetBasicAuth(s.config.ClientID, s.config.ClientSecret)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("revoke request failed with status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Disconnect revokes both tokens and removes the stored record.
func (s *Service) Disconnect(ctx context.Context, store TokenStore, userID string) error {
	token, err := store.Get(userID)
	if err != nil {
		return err
	}

	if err := s.Revoke(ctx, token.RefreshToken); err != nil {
		return err
	}

	return store.Delete(userID)
}
