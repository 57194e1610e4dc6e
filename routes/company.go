// routes/company.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eGGnogSC/qbconnect/infrastructure"
)

// RegisterCompanyRoutes registers the company routes.
func RegisterCompanyRoutes(router *mux.Router, c *infrastructure.Container) {
	router.HandleFunc("/company", c.CompanyHandler.GetCompanyHandler).Methods(http.MethodGet)
}
