package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
)

const dateOnly = "2006-01-02"

// noon is the time of day given to date-only inputs so that a date never shifts
// across midnight when rendered in another timezone.
const noon = 12

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// NormalizeDate parses an appointment date. A bare date becomes noon local time in loc.
// An empty input returns nil.
func NormalizeDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if len(s) == len(dateOnly) {
		day, err := time.ParseInLocation(dateOnly, s, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		t := time.Date(day.Year(), day.Month(), day.Day(), noon, 0, 0, 0, loc)
		return &t, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDate renders a stored appointment date back into the draft form.
func FormatDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02T15:04:05")
}

// MsgEndBeforeStart is shown when an appointment ends before it starts.
const MsgEndBeforeStart = "An appointment cannot end before it starts."

// ToAppointments turns the draft's appointments into rows ready to save, with dates
// normalized and positions set from draft order.
func (d JobDraft) ToAppointments(loc *time.Location) ([]models.Appointment, error) {
	out := make([]models.Appointment, 0, len(d.appointments))
	for i, a := range d.appointments {
		start, err := NormalizeDate(a.StartDate, loc)
		if err != nil {
			return nil, err
		}
		end, err := NormalizeDate(a.EndDate, loc)
		if err != nil {
			return nil, err
		}
		if start != nil && end != nil && end.Before(*start) {
			return nil, reject(ErrEndBeforeStart, MsgEndBeforeStart)
		}
		out = append(out, models.Appointment{
			ID:          a.ID,
			JobID:       d.jobID,
			Position:    i,
			Name:        a.Name,
			QuoteID:     copyUint(a.QuoteID),
			InstallerID: copyUint(a.InstallerID),
			StartDate:   start,
			EndDate:     end,
		})
	}
	return out, nil
}
