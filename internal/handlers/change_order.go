package handlers

import (
	"net/http"

	"github.com/adampdxdotcom/subfloor-sub002/httpx"
	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/internal/services"
	"github.com/shopspring/decimal"
)

type ChangeOrderHandler struct {
	Svc *services.ChangeOrderService
}

func NewChangeOrderHandler(svc *services.ChangeOrderService) *ChangeOrderHandler {
	return &ChangeOrderHandler{Svc: svc}
}

// Create: POST /projects/{id}/change-orders
func (h *ChangeOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		QuoteID     *uint                  `json:"quote_id"`
		Description string                 `json:"description"`
		Amount      decimal.Decimal        `json:"amount"`
		Type        models.ChangeOrderType `json:"type"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	co, err := h.Svc.Create(r.Context(), projectID, services.ChangeOrderInput{
		QuoteID:     req.QuoteID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, co)
}

// List: GET /projects/{id}/change-orders
func (h *ChangeOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	cos, err := h.Svc.List(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": cos, "total": len(cos)})
}
