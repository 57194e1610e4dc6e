// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eGGnogSC/qbconnect/infrastructure"
	"github.com/eGGnogSC/qbconnect/internal/auth"
	"github.com/eGGnogSC/qbconnect/internal/httpx"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *mux.Router, c *infrastructure.Container) {
	router.Use(httpx.WithRequestID)
	router.Use(httpx.WithLogging)
	router.Use(auth.Identity(c.Cfg.Auth.DefaultUserID))

	RegisterAuthRoutes(router, c)
	RegisterCompanyRoutes(router, c)
	RegisterInvoiceRoutes(router, c)

	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}
