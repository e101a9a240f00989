// Package scheduling holds the rules that decide when a job may be put on the calendar:
// the editable job draft, the scheduling gate and the final payment gate.
package scheduling

import (
	"fmt"
	"strconv"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/google/uuid"
)

// AppointmentDraft is an appointment as it is being edited.
// Key identifies it within its draft; ID is zero until it has been saved.
type AppointmentDraft struct {
	Key         uuid.UUID `json:"key"`
	ID          uint      `json:"id,omitempty"`
	Name        string    `json:"appointment_name"`
	QuoteID     *uint     `json:"quote_id,omitempty"`
	InstallerID *uint     `json:"installer_id,omitempty"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
}

// Linked reports whether the appointment points at a quote.
func (a AppointmentDraft) Linked() bool {
	return a.QuoteID != nil
}

// JobFields are the scalar fields of a job that can be edited.
type JobFields struct {
	PONumber             string `json:"po_number"`
	DepositReceived      bool   `json:"deposit_received"`
	ContractsReceived    bool   `json:"contracts_received"`
	FinalPaymentReceived bool   `json:"final_payment_received"`
	IsOnHold             bool   `json:"is_on_hold"`
}

// Field names a JobFields member for WithField.
type Field string

const (
	FieldPONumber             Field = "po_number"
	FieldDepositReceived      Field = "deposit_received"
	FieldContractsReceived    Field = "contracts_received"
	FieldFinalPaymentReceived Field = "final_payment_received"
	FieldIsOnHold             Field = "is_on_hold"
)

// JobDraft is an immutable snapshot of a job being edited.
// Every transformation returns a new draft and leaves the receiver untouched.
type JobDraft struct {
	jobID        uint
	fields       JobFields
	appointments []AppointmentDraft
}

// NewJobDraft builds a draft from edited fields and appointments.
// Appointments without a key are given one.
func NewJobDraft(jobID uint, fields JobFields, appts []AppointmentDraft) JobDraft {
	out := make([]AppointmentDraft, len(appts))
	for i, a := range appts {
		if a.Key == uuid.Nil {
			a.Key = uuid.New()
		}
		out[i] = copyAppointment(a)
	}
	return JobDraft{jobID: jobID, fields: fields, appointments: out}
}

// DraftFromJob opens a saved job for editing.
func DraftFromJob(job *models.Job, format func(a models.Appointment) (start, end string)) JobDraft {
	if job == nil {
		return JobDraft{}
	}
	appts := make([]AppointmentDraft, 0, len(job.Appointments))
	for _, a := range job.Appointments {
		start, end := format(a)
		appts = append(appts, AppointmentDraft{
			ID:          a.ID,
			Name:        a.Name,
			QuoteID:     a.QuoteID,
			InstallerID: a.InstallerID,
			StartDate:   start,
			EndDate:     end,
		})
	}
	return NewJobDraft(job.ID, JobFields{
		PONumber:             job.PONumber,
		DepositReceived:      job.DepositReceived,
		ContractsReceived:    job.ContractsReceived,
		FinalPaymentReceived: job.FinalPaymentReceived,
		IsOnHold:             job.IsOnHold,
	}, appts)
}

func (d JobDraft) JobID() uint       { return d.jobID }
func (d JobDraft) Fields() JobFields { return d.fields }
func (d JobDraft) Len() int          { return len(d.appointments) }

// Appointments returns a copy of the draft's appointments in order.
func (d JobDraft) Appointments() []AppointmentDraft {
	out := make([]AppointmentDraft, len(d.appointments))
	for i, a := range d.appointments {
		out[i] = copyAppointment(a)
	}
	return out
}

// First returns the first appointment, if any.
func (d JobDraft) First() (AppointmentDraft, bool) {
	if len(d.appointments) == 0 {
		return AppointmentDraft{}, false
	}
	return copyAppointment(d.appointments[0]), true
}

// WithFields replaces all scalar fields.
func (d JobDraft) WithFields(f JobFields) JobDraft {
	d.appointments = d.Appointments()
	d.fields = f
	return d
}

// WithField sets a single scalar field. Boolean fields accept bool or a
// strconv.ParseBool string; the PO number accepts a string.
func (d JobDraft) WithField(f Field, v any) (JobDraft, error) {
	fields := d.fields
	switch f {
	case FieldPONumber:
		s, ok := v.(string)
		if !ok {
			return d, fmt.Errorf("%w: %s", ErrInvalidFieldValue, f)
		}
		fields.PONumber = s
	case FieldDepositReceived, FieldContractsReceived, FieldFinalPaymentReceived, FieldIsOnHold:
		b, err := toBool(v)
		if err != nil {
			return d, fmt.Errorf("%w: %s", ErrInvalidFieldValue, f)
		}
		switch f {
		case FieldDepositReceived:
			fields.DepositReceived = b
		case FieldContractsReceived:
			fields.ContractsReceived = b
		case FieldFinalPaymentReceived:
			fields.FinalPaymentReceived = b
		case FieldIsOnHold:
			fields.IsOnHold = b
		}
	default:
		return d, fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	return d.WithFields(fields), nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	}
	return false, ErrInvalidFieldValue
}

// WithAppointment replaces the appointment that has the same key.
func (d JobDraft) WithAppointment(a AppointmentDraft) (JobDraft, error) {
	appts := d.Appointments()
	for i := range appts {
		if appts[i].Key == a.Key {
			appts[i] = copyAppointment(a)
			d.appointments = appts
			return d, nil
		}
	}
	return d, fmt.Errorf("%w: %s", ErrUnknownAppointment, a.Key)
}

// AddAppointment appends a new appointment named "Part N". If exactly one quote is
// accepted the appointment is linked to it.
func (d JobDraft) AddAppointment(accepted []models.Quote) JobDraft {
	a := AppointmentDraft{
		Key:  uuid.New(),
		Name: fmt.Sprintf("Part %d", len(d.appointments)+1),
	}
	if q, ok := soleQuote(accepted); ok {
		a.QuoteID = uintPtr(q.ID)
		a.InstallerID = copyUint(q.InstallerID)
	}
	d.appointments = append(d.Appointments(), a)
	return d
}

// RemoveAppointment drops an appointment. A job keeps at least one appointment
// once it has any.
func (d JobDraft) RemoveAppointment(key uuid.UUID) (JobDraft, error) {
	idx := -1
	for i, a := range d.appointments {
		if a.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return d, fmt.Errorf("%w: %s", ErrUnknownAppointment, key)
	}
	if len(d.appointments) <= 1 {
		return d, ErrLastAppointment
	}
	appts := d.Appointments()
	d.appointments = append(appts[:idx], appts[idx+1:]...)
	return d, nil
}

// LinkSoleQuote enforces appointment ownership. With exactly one accepted quote every
// appointment is pointed at it. Otherwise installers are re-derived from the linked
// quote, and cleared when the appointment is not linked to an accepted quote.
func (d JobDraft) LinkSoleQuote(accepted []models.Quote) JobDraft {
	appts := d.Appointments()
	if q, ok := soleQuote(accepted); ok {
		for i := range appts {
			appts[i].QuoteID = uintPtr(q.ID)
			appts[i].InstallerID = copyUint(q.InstallerID)
		}
		d.appointments = appts
		return d
	}
	byID := acceptedByID(accepted)
	for i := range appts {
		if appts[i].QuoteID == nil {
			appts[i].InstallerID = nil
			continue
		}
		q, ok := byID[*appts[i].QuoteID]
		if !ok {
			appts[i].InstallerID = nil
			continue
		}
		appts[i].InstallerID = copyUint(q.InstallerID)
	}
	d.appointments = appts
	return d
}

func soleQuote(quotes []models.Quote) (models.Quote, bool) {
	var found models.Quote
	n := 0
	for _, q := range quotes {
		if q.IsAccepted() {
			found = q
			n++
		}
	}
	return found, n == 1
}

func acceptedByID(quotes []models.Quote) map[uint]models.Quote {
	m := make(map[uint]models.Quote, len(quotes))
	for _, q := range quotes {
		if q.IsAccepted() {
			m[q.ID] = q
		}
	}
	return m
}

func copyAppointment(a AppointmentDraft) AppointmentDraft {
	a.QuoteID = copyUint(a.QuoteID)
	a.InstallerID = copyUint(a.InstallerID)
	return a
}

func copyUint(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func uintPtr(v uint) *uint { return &v }
