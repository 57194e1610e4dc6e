// auth/handlers.go
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/eGGnogSC/qbconnect/internal/httpx"
	"github.com/eGGnogSC/qbconnect/internal/logger"
)

const (
	successRedirect = "/connect?success=true"
	failureRedirect = "/connect?error=token_exchange_failed"
)

// Handler provides HTTP handlers for the OAuth connect flow.
type Handler struct {
	service  *Service
	sessions *sessions.CookieStore
	stores   StoreFactory
	log      *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service, sessionStore *sessions.CookieStore, stores StoreFactory) *Handler {
	return &Handler{
		service:  service,
		sessions: sessionStore,
		stores:   stores,
		log:      logger.Named("auth.handler"),
	}
}

// generateState creates a secure random state for OAuth
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// AuthorizeHandler builds the QuickBooks authorization URL. The state
// is generated per request and stashed in the auth session so the
// callback can verify it.
func (h *Handler) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		httpx.JSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate state"})
		return
	}

	session := getSession(h.sessions, r)
	session.Values["qb_state"] = state
	session.Values["qb_state_expiry"] = time.Now().Add(10 * time.Minute).Unix()
	if err := session.Save(r, w); err != nil {
		httpx.JSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save session"})
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{
		"authUri": h.service.AuthorizeURL(state),
	})
}

// CallbackHandler handles the OAuth callback from QuickBooks: verifies
// the state, exchanges the code and persists the token record. Exchange
// failures redirect to the failure page rather than expose provider
// internals.
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	realmID := query.Get("realmId")

	if code == "" || realmID == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "missing code or realmId"})
		return
	}

	session := getSession(h.sessions, r)
	savedState, ok := session.Values["qb_state"].(string)
	if !ok || state == "" || savedState != state {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid state parameter"})
		return
	}
	expiry, ok := session.Values["qb_state_expiry"].(int64)
	if !ok || time.Now().Unix() > expiry {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "state parameter expired"})
		return
	}

	// The state is single-use: consume it before the exchange.
	delete(session.Values, "qb_state")
	delete(session.Values, "qb_state_expiry")
	_ = session.Save(r, w)

	userID := UserID(r.Context())

	token, err := h.service.Exchange(r.Context(), code)
	if err != nil {
		h.log.Warn("code exchange failed", logger.UserID(userID), logger.Err(err))
		http.Redirect(w, r, failureRedirect, http.StatusFound)
		return
	}
	token.RealmID = realmID

	if err := h.stores(w, r).Save(userID, token); err != nil {
		h.log.Error("failed to save token", logger.UserID(userID), logger.Err(err))
		http.Redirect(w, r, failureRedirect, http.StatusFound)
		return
	}

	h.log.Info("quickbooks connected", logger.UserID(userID), logger.RealmID(realmID))
	http.Redirect(w, r, successRedirect, http.StatusFound)
}

// DisconnectHandler revokes the stored tokens and deletes the record.
func (h *Handler) DisconnectHandler(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	if err := h.service.Disconnect(r.Context(), h.stores(w, r), userID); err != nil {
		if errors.Is(err, ErrNoToken) {
			httpx.JSON(w, http.StatusOK, map[string]string{"status": "success"})
			return
		}
		httpx.JSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to disconnect: " + err.Error()})
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// StatusHandler returns the connection status for the caller.
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	token, err := h.stores(w, r).Get(userID)
	if err != nil {
		httpx.JSON(w, http.StatusOK, map[string]any{"connected": false})
		return
	}

	resp := map[string]any{
		"connected": true,
		"realm_id":  token.RealmID,
	}
	if token.ExpiresAt != nil {
		resp["expires_at"] = token.ExpiresAt
	}
	httpx.JSON(w, http.StatusOK, resp)
}
