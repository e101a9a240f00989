package handlers

import (
	"net/http"

	"github.com/adampdxdotcom/subfloor-sub002/httpx"
	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/internal/services"
)

type ProjectHandler struct {
	Svc *services.ProjectService
}

func NewProjectHandler(svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Svc: svc}
}

// Create: POST /projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		CustomerName string `json:"customer_name"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.Svc.Create(r.Context(), services.ProjectInput{Name: req.Name, CustomerName: req.CustomerName})
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Get: GET /projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// UpdateStatus: PUT /projects/{id}/status
func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Status models.ProjectStatus `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.Svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
