// routes/auth.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eGGnogSC/qbconnect/infrastructure"
)

// RegisterAuthRoutes registers all authentication-related routes
func RegisterAuthRoutes(router *mux.Router, c *infrastructure.Container) {
	h := c.AuthHandler

	router.HandleFunc("/authorize", h.AuthorizeHandler).Methods(http.MethodGet)
	router.HandleFunc("/oauth/callback", h.CallbackHandler).Methods(http.MethodGet)

	router.HandleFunc("/auth/disconnect", h.DisconnectHandler).Methods(http.MethodPost)
	router.HandleFunc("/auth/status", h.StatusHandler).Methods(http.MethodGet)
}
