package handlers

import (
	"context"
	"net/http"

	"github.com/adampdxdotcom/subfloor-sub002/httpx"
	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/internal/services"
	"github.com/shopspring/decimal"
)

type QuoteHandler struct {
	Svc *services.QuoteService
}

func NewQuoteHandler(svc *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{Svc: svc}
}

type quoteRequest struct {
	InstallerID            *uint                   `json:"installer_id"`
	InstallationType       models.InstallationType `json:"installation_type"`
	MaterialsAmount        decimal.Decimal         `json:"materials_amount"`
	LaborAmount            decimal.Decimal         `json:"labor_amount"`
	LaborDepositPercentage decimal.Decimal         `json:"labor_deposit_percentage"`
	PONumber               string                  `json:"po_number"`
}

// Create: POST /projects/{id}/quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req quoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := h.Svc.Create(r.Context(), projectID, services.QuoteInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

// List: GET /projects/{id}/quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	quotes, err := h.Svc.List(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": quotes, "total": len(quotes)})
}

// Accept: POST /quotes/{id}/accept
func (h *QuoteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Svc.Accept)
}

// Reject: POST /quotes/{id}/reject
func (h *QuoteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Svc.Reject)
}

func (h *QuoteHandler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uint) (*models.Quote, error)) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}
