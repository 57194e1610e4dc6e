// routes/invoice.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eGGnogSC/qbconnect/infrastructure"
)

// RegisterInvoiceRoutes registers the invoice CRUD routes.
func RegisterInvoiceRoutes(router *mux.Router, c *infrastructure.Container) {
	h := c.InvoiceHandler

	router.HandleFunc("/invoice", h.GetHandler).Methods(http.MethodGet)
	router.HandleFunc("/invoice", h.CreateHandler).Methods(http.MethodPost)
	router.HandleFunc("/invoice", h.UpdateHandler).Methods(http.MethodPut)
	router.HandleFunc("/invoice", h.DeleteHandler).Methods(http.MethodDelete)
}
