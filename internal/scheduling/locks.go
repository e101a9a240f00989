package scheduling

import (
	"time"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
)

// Locks describes which job checkboxes may currently be changed.
type Locks struct {
	// FlagsLocked makes deposit and contracts received read-only.
	FlagsLocked bool `json:"flags_locked"`
	// FinalPaymentVisible is true once the job is on the calendar.
	FinalPaymentVisible    bool       `json:"final_payment_visible"`
	FinalPaymentUnlockDate *time.Time `json:"final_payment_unlock_date,omitempty"`
	CanReceiveFinalPayment bool       `json:"can_receive_final_payment"`
}

// FinalPaymentUnlockDate is the latest appointment end date.
// ok is false if no appointment has an end date.
func FinalPaymentUnlockDate(appts []models.Appointment) (unlock time.Time, ok bool) {
	for _, a := range appts {
		if a.EndDate == nil {
			continue
		}
		if !ok || a.EndDate.After(unlock) {
			unlock = *a.EndDate
			ok = true
		}
	}
	return unlock, ok
}

// CanReceiveFinalPayment reports whether the last appointment has ended by now.
func CanReceiveFinalPayment(appts []models.Appointment, now time.Time) bool {
	unlock, ok := FinalPaymentUnlockDate(appts)
	if !ok {
		return false
	}
	return !now.Before(unlock)
}

// ComputeLocks derives the checkbox state of a saved job.
func ComputeLocks(status models.ProjectStatus, appts []models.Appointment, now time.Time) Locks {
	scheduled := status == models.ProjectStatusScheduled || status == models.ProjectStatusCompleted
	l := Locks{
		FlagsLocked:         scheduled,
		FinalPaymentVisible: scheduled,
	}
	if unlock, ok := FinalPaymentUnlockDate(appts); ok {
		l.FinalPaymentUnlockDate = &unlock
	}
	l.CanReceiveFinalPayment = scheduled && CanReceiveFinalPayment(appts, now)
	return l
}

// CheckFinalPayment rejects marking final payment received before it is allowed.
// Clearing the flag, or leaving an already received payment alone, always passes.
func CheckFinalPayment(status models.ProjectStatus, appts []models.Appointment, wasReceived, received bool, now time.Time) error {
	if !received || wasReceived {
		return nil
	}
	if !ComputeLocks(status, appts, now).CanReceiveFinalPayment {
		return reject(ErrFinalPaymentTooEarly, MsgFinalPaymentTooEarly)
	}
	return nil
}

// ApplyFlagLocks keeps deposit and contracts received from being cleared once the
// project is scheduled or completed.
func ApplyFlagLocks(status models.ProjectStatus, saved *models.Job, d JobDraft) JobDraft {
	if saved == nil {
		return d
	}
	if status != models.ProjectStatusScheduled && status != models.ProjectStatusCompleted {
		return d
	}
	f := d.Fields()
	f.DepositReceived = f.DepositReceived || saved.DepositReceived
	f.ContractsReceived = f.ContractsReceived || saved.ContractsReceived
	return d.WithFields(f)
}
