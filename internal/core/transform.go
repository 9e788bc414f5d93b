package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ToPayload converts one CSV row into the nested body the appointment
// endpoint accepts. It does not mutate the row, so repeated calls return
// equal payloads.
//
// A custom_fields cell that is not a JSON object is dropped rather than
// failing the row.
func ToPayload(row Row) (AppointmentPayload, error) {
	start, err := ParseDateTime(row.Cell(ColBookingStart.Name))
	if err != nil {
		return AppointmentPayload{}, errors.New("invalid date format in booking_start")
	}

	serviceID, err := requiredID(row, ColServiceID)
	if err != nil {
		return AppointmentPayload{}, err
	}
	providerID, err := requiredID(row, ColProviderID)
	if err != nil {
		return AppointmentPayload{}, err
	}
	customerID, err := requiredID(row, ColCustomerID)
	if err != nil {
		return AppointmentPayload{}, err
	}

	p := AppointmentPayload{
		BookingStart:  FormatBookingStart(start),
		ServiceID:     serviceID,
		ProviderID:    providerID,
		InternalNotes: row.Text(ColInternalNotes),
	}

	loc, set, err := row.Int(ColLocationID)
	if err != nil {
		return AppointmentPayload{}, err
	}
	if set && loc > 0 {
		p.LocationID = &loc
	}

	if p.NotifyParticipants, err = row.Bool(ColNotify); err != nil {
		return AppointmentPayload{}, err
	}

	booking, err := toBooking(row, customerID)
	if err != nil {
		return AppointmentPayload{}, err
	}
	p.Bookings = []Booking{booking}

	return p, nil
}

func toBooking(row Row, customerID int64) (Booking, error) {
	b := Booking{CustomerID: customerID, Extras: []any{}}

	persons, _, err := row.Int(ColPersons)
	if err != nil {
		return Booking{}, err
	}
	if persons < 1 {
		return Booking{}, fmt.Errorf("persons must be at least 1, got %d", persons)
	}
	b.Persons = int(persons)

	if b.Status, err = row.Enum(ColStatus); err != nil {
		return Booking{}, err
	}

	d, set, err := row.Int(ColDuration)
	if err != nil {
		return Booking{}, err
	}
	if set && d > 0 {
		secs := int(d)
		b.Duration = &secs
	}

	if raw := row.Text(ColCustomFields); raw != "" {
		var fields map[string]any
		if json.Unmarshal([]byte(raw), &fields) == nil && fields != nil {
			b.CustomFields = fields
		}
	}

	return b, nil
}

func requiredID(row Row, spec FieldSpec) (int64, error) {
	id, set, err := row.Int(spec)
	if err != nil {
		return 0, err
	}
	if !set {
		return 0, fmt.Errorf("required field %s is empty", spec.Name)
	}
	return id, nil
}
