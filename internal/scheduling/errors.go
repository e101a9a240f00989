package scheduling

import (
	"errors"
	"fmt"
)

// Messages shown to the user when a save is refused.
const (
	MsgMissingStartDate     = "Please enter a Start Date for the first appointment to schedule the job."
	MsgUnlinkedAppointment  = "All appointments must be linked to an Accepted Quote (Scope of Work)."
	MsgDepositAndContracts  = "Deposit and Contracts must be marked as received before scheduling a Managed Job."
	MsgFinalPaymentTooEarly = "Final payment can only be marked as received after the last appointment has ended."
)

var (
	ErrMissingStartDate     = errors.New("missing_start_date")
	ErrUnlinkedAppointment  = errors.New("unlinked_appointment")
	ErrDepositAndContracts  = errors.New("deposit_and_contracts_required")
	ErrFinalPaymentTooEarly = errors.New("final_payment_too_early")

	ErrInvalidDate        = errors.New("invalid_date")
	ErrLastAppointment    = errors.New("last_appointment")
	ErrUnknownAppointment = errors.New("unknown_appointment")
	ErrUnknownField       = errors.New("unknown_field")
	ErrInvalidFieldValue  = errors.New("invalid_field_value")
	ErrEndBeforeStart     = errors.New("end_before_start")
)

// RejectionError is a validation rejection carrying a message for the user.
// It wraps one of the sentinel errors above.
type RejectionError struct {
	Err     error
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

func reject(err error, msg string) *RejectionError {
	return &RejectionError{Err: err, Message: msg}
}

// UserMessage returns the user facing message of a rejection, if err is one.
func UserMessage(err error) (string, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Message, true
	}
	return "", false
}
