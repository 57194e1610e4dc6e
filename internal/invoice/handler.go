// invoice/handler.go
package invoice

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/eGGnogSC/qbconnect/internal/auth"
	"github.com/eGGnogSC/qbconnect/internal/httpx"
	"github.com/eGGnogSC/qbconnect/internal/logger"
	"github.com/eGGnogSC/qbconnect/internal/qb"
	"github.com/eGGnogSC/qbconnect/pkg/qbclient"
)

const maxInvoiceBody = 256 << 10 // 256KB

// Handler serves the invoice CRUD endpoints. Each request builds its
// own facade; every error from the facade or the remote API is relayed
// in the {success:false, error} envelope without rewriting.
type Handler struct {
	facades *qb.Factory
	log     *zap.Logger
}

// NewHandler creates a new invoice handler.
func NewHandler(facades *qb.Factory) *Handler {
	return &Handler{
		facades: facades,
		log:     logger.Named("invoice.handler"),
	}
}

// initialize builds and initializes a facade for the request, writing
// the failure response itself when the user has no usable credentials.
func (h *Handler) initialize(w http.ResponseWriter, r *http.Request) (*qb.Facade, bool) {
	userID := auth.UserID(r.Context())

	facade := h.facades.New(w, r)
	if err := facade.Initialize(r.Context(), userID); err != nil {
		h.log.Warn("invoice request without usable credentials",
			logger.UserID(userID), logger.Err(err))
		httpx.Failure(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return facade, true
}

func (h *Handler) readInvoice(w http.ResponseWriter, r *http.Request) (*qbclient.Invoice, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxInvoiceBody)
	defer r.Body.Close()

	var inv qbclient.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		httpx.Failure(w, http.StatusBadRequest, "invalid invoice payload")
		return nil, false
	}
	return &inv, true
}

// GetHandler reads one invoice by id, or lists invoices matching the
// free-form criteria filter when no id is given.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	facade, ok := h.initialize(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	if id := query.Get("id"); id != "" {
		inv, err := facade.FindInvoice(r.Context(), id)
		if err != nil {
			httpx.Failure(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "invoice": inv})
		return
	}

	invoices, err := facade.QueryInvoices(r.Context(), query.Get("criteria"))
	if err != nil {
		httpx.Failure(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "invoices": invoices})
}

// CreateHandler creates an invoice from the request payload.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	facade, ok := h.initialize(w, r)
	if !ok {
		return
	}

	payload, ok := h.readInvoice(w, r)
	if !ok {
		return
	}

	inv, err := facade.CreateInvoice(r.Context(), payload)
	if err != nil {
		httpx.Failure(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "invoice": inv})
}

// UpdateHandler updates an invoice. SyncToken presence is not checked
// here; the remote API owns optimistic-concurrency enforcement and its
// rejection is relayed as-is.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	facade, ok := h.initialize(w, r)
	if !ok {
		return
	}

	payload, ok := h.readInvoice(w, r)
	if !ok {
		return
	}

	inv, err := facade.UpdateInvoice(r.Context(), payload)
	if err != nil {
		httpx.Failure(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "invoice": inv})
}

// DeleteHandler deletes the invoice named by the id query parameter.
// A missing id is a local validation error; no remote call is made.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.Failure(w, http.StatusBadRequest, "invoice ID is required for deletion")
		return
	}

	facade, ok := h.initialize(w, r)
	if !ok {
		return
	}

	result, err := facade.DeleteInvoice(r.Context(), id)
	if err != nil {
		httpx.Failure(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}
