package scheduling

import (
	"strings"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
)

// SchedulingApplicable is true when at least one accepted quote needs an installer
// on site. Material-only projects are never scheduled.
func SchedulingApplicable(quotes []models.Quote) bool {
	for i := range quotes {
		if quotes[i].IsAccepted() && quotes[i].NeedsInstallation() {
			return true
		}
	}
	return false
}

// ManagedJob is true when any accepted quote is a managed installation.
func ManagedJob(quotes []models.Quote) bool {
	for i := range quotes {
		if quotes[i].IsAccepted() && quotes[i].IsManaged() {
			return true
		}
	}
	return false
}

// GateInput is everything the scheduling gate looks at.
type GateInput struct {
	ProjectStatus  models.ProjectStatus
	AcceptedQuotes []models.Quote
	Draft          JobDraft
}

// Decision is the outcome of a gate evaluation that let the save through.
type Decision struct {
	// Transition is true when the project moves from Accepted to Scheduled.
	Transition           bool `json:"transition"`
	SchedulingApplicable bool `json:"scheduling_applicable"`
	ManagedJob           bool `json:"managed_job"`
}

// Evaluate runs the scheduling gate. The first failing check rejects the whole save
// with a *RejectionError; nothing should be written in that case.
//
// Checks, in order:
//  1. the transition is attempted only for Accepted projects that need scheduling;
//  2. a transition needs a start date on the first appointment;
//  3. when scheduling applies every appointment must be linked to an accepted quote;
//  4. a managed job needs deposit and contracts received before it is scheduled.
func Evaluate(in GateInput) (Decision, error) {
	dec := Decision{
		SchedulingApplicable: SchedulingApplicable(in.AcceptedQuotes),
		ManagedJob:           ManagedJob(in.AcceptedQuotes),
	}
	attempt := in.ProjectStatus == models.ProjectStatusAccepted && dec.SchedulingApplicable

	if attempt {
		first, ok := in.Draft.First()
		if !ok || strings.TrimSpace(first.StartDate) == "" {
			return Decision{}, reject(ErrMissingStartDate, MsgMissingStartDate)
		}
	}

	if dec.SchedulingApplicable {
		accepted := acceptedByID(in.AcceptedQuotes)
		for _, a := range in.Draft.appointments {
			if a.QuoteID == nil {
				return Decision{}, reject(ErrUnlinkedAppointment, MsgUnlinkedAppointment)
			}
			if _, ok := accepted[*a.QuoteID]; !ok {
				return Decision{}, reject(ErrUnlinkedAppointment, MsgUnlinkedAppointment)
			}
		}
	}

	if attempt && dec.ManagedJob {
		f := in.Draft.fields
		if !f.DepositReceived || !f.ContractsReceived {
			return Decision{}, reject(ErrDepositAndContracts, MsgDepositAndContracts)
		}
	}

	dec.Transition = attempt
	return dec, nil
}
