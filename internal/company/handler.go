// company/handler.go
package company

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/eGGnogSC/qbconnect/internal/auth"
	"github.com/eGGnogSC/qbconnect/internal/httpx"
	"github.com/eGGnogSC/qbconnect/internal/logger"
	"github.com/eGGnogSC/qbconnect/internal/qb"
)

// Handler serves the company endpoints.
type Handler struct {
	facades *qb.Factory
	log     *zap.Logger
}

// NewHandler creates a new company handler.
func NewHandler(facades *qb.Factory) *Handler {
	return &Handler{
		facades: facades,
		log:     logger.Named("company.handler"),
	}
}

// GetCompanyHandler returns the connected company's display name.
func (h *Handler) GetCompanyHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	facade := h.facades.New(w, r)
	if err := facade.Initialize(r.Context(), userID); err != nil {
		h.log.Warn("get company name failed", logger.UserID(userID), logger.Err(err))
		httpx.Failure(w, http.StatusInternalServerError, err.Error())
		return
	}

	name, err := facade.CompanyName(r.Context())
	if err != nil {
		if !errors.Is(err, qb.ErrNotInitialized) {
			h.log.Warn("get company name failed", logger.UserID(userID), logger.Err(err))
		}
		httpx.Failure(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"companyName": name,
	})
}
