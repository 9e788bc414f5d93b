package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/ameliadesk/internal/client"
)

// AppointmentPayload is the body sent to POST /appointments.
type AppointmentPayload struct {
	BookingStart       string    `json:"bookingStart"`
	ServiceID          int64     `json:"serviceId"`
	ProviderID         int64     `json:"providerId"`
	LocationID         *int64    `json:"locationId,omitempty"`
	NotifyParticipants bool      `json:"notifyParticipants"`
	InternalNotes      string    `json:"internalNotes"`
	Bookings           []Booking `json:"bookings"`
}

// Booking is one customer's participation in an appointment.
type Booking struct {
	CustomerID   int64          `json:"customerId"`
	Persons      int            `json:"persons"`
	Status       string         `json:"status"`
	Extras       []any          `json:"extras"`
	Duration     *int           `json:"duration,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`
}

// Submitter sends one payload to the remote API.
type Submitter func(ctx context.Context, p AppointmentPayload) client.Result

// OutcomeStatus is the per-row import result.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ImportOutcome records what happened to one row.
type ImportOutcome struct {
	RowNumber    int           `json:"rowNumber"`  // 1-based data row
	LineNumber   int           `json:"lineNumber"` // file line, header is line 1
	Status       OutcomeStatus `json:"status"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	CreatedID    string        `json:"createdId,omitempty"`
}

// ImportReport aggregates the outcomes of one bulk import.
// Succeeded + Failed + Skipped always equals Total.
type ImportReport struct {
	ID        string          `json:"id,omitempty"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	DryRun    bool            `json:"dryRun"`
	Halted    bool            `json:"halted"`
	Elapsed   time.Duration   `json:"elapsedNs"`
	Outcomes  []ImportOutcome `json:"outcomes"`
}

// Errors returns the error outcomes in row order.
func (r *ImportReport) Errors() []ImportOutcome {
	var out []ImportOutcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeError {
			out = append(out, o)
		}
	}
	return out
}

func (r *ImportReport) record(o ImportOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case OutcomeSuccess:
		r.Succeeded++
	case OutcomeError:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	}
}
