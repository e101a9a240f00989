package handlers

import (
	"net/http"

	"github.com/adampdxdotcom/subfloor-sub002/httpx"
	"github.com/adampdxdotcom/subfloor-sub002/internal/finance"
	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/internal/money"
	"github.com/adampdxdotcom/subfloor-sub002/internal/scheduling"
	"github.com/adampdxdotcom/subfloor-sub002/internal/services"
)

type JobHandler struct {
	Svc *services.JobService
}

func NewJobHandler(svc *services.JobService) *JobHandler {
	return &JobHandler{Svc: svc}
}

// jobRequest is the body of PUT /projects/{id}/job.
type jobRequest struct {
	scheduling.JobFields
	Appointments []scheduling.AppointmentDraft `json:"appointments"`
}

type jobResponse struct {
	ProjectID     uint                 `json:"project_id"`
	ProjectStatus models.ProjectStatus `json:"project_status"`
	JobID         uint                 `json:"job_id,omitempty"`
	Saved         bool                 `json:"saved"`
	scheduling.JobFields
	DepositAmount string                        `json:"deposit_amount"`
	Appointments  []scheduling.AppointmentDraft `json:"appointments"`
	Decision      scheduling.Decision           `json:"decision"`
	Locks         scheduling.Locks              `json:"locks"`
	Summary       finance.Display               `json:"summary"`
}

func newJobResponse(v *services.JobView) jobResponse {
	resp := jobResponse{
		ProjectID:     v.ProjectID,
		ProjectStatus: v.ProjectStatus,
		Saved:         v.Saved,
		JobFields:     v.Draft.Fields(),
		DepositAmount: money.FormatPlain(v.Summary.DepositAmount()),
		Appointments:  v.Draft.Appointments(),
		Decision:      v.Decision,
		Locks:         v.Locks,
		Summary:       v.Summary.Display(),
	}
	if v.Job != nil {
		resp.JobID = v.Job.ID
		resp.DepositAmount = money.FormatPlain(v.Job.DepositAmount)
	}
	return resp
}

// Get: GET /projects/{id}/job
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.Svc.GetJob(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newJobResponse(view))
}

// Save: PUT /projects/{id}/job
// A refused save answers 422 with the message to show and writes nothing.
func (h *JobHandler) Save(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req jobRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	draft := scheduling.NewJobDraft(0, req.JobFields, req.Appointments)
	res, err := h.Svc.SaveJobDetails(r.Context(), projectID, draft)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.Svc.GetJob(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, struct {
		jobResponse
		Scheduled bool `json:"scheduled"`
	}{newJobResponse(view), res.Decision.Transition})
}

// FinancialSummary: GET /projects/{id}/financial-summary
func (h *JobHandler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	sum, err := h.Svc.FinancialSummary(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, struct {
		finance.Summary
		Display finance.Display `json:"display"`
	}{sum, sum.Display()})
}

// FinalPayment: POST /projects/{id}/job/final-payment
func (h *JobHandler) FinalPayment(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Received bool `json:"received"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	job, err := h.Svc.MarkFinalPaymentReceived(r.Context(), projectID, req.Received)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

// Hold: POST /projects/{id}/job/hold
func (h *JobHandler) Hold(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		OnHold bool `json:"on_hold"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	job, err := h.Svc.SetOnHold(r.Context(), projectID, req.OnHold)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}
