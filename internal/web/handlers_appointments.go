package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ameliadesk/internal/core"
)

// AppointmentRequest is the JSON body for a single appointment create.
// Field names match the CSV columns.
type AppointmentRequest struct {
	BookingStart       string         `json:"booking_start" validate:"required"`
	ServiceID          int64          `json:"service_id" validate:"required,gt=0"`
	ProviderID         int64          `json:"provider_id" validate:"required,gt=0"`
	CustomerID         int64          `json:"customer_id" validate:"required,gt=0"`
	LocationID         int64          `json:"location_id" validate:"gte=0"`
	Persons            int            `json:"persons" validate:"gte=0"`
	Duration           int            `json:"duration" validate:"gte=0"`
	Status             string         `json:"status" validate:"omitempty,oneof=approved pending canceled rejected"`
	InternalNotes      string         `json:"internal_notes"`
	NotifyParticipants *bool          `json:"notify_participants"`
	CustomFields       map[string]any `json:"custom_fields"`
}

// Payload converts the request, applying the same defaults as a CSV row.
func (req AppointmentRequest) Payload() (core.AppointmentPayload, error) {
	start, err := core.ParseDateTime(req.BookingStart)
	if err != nil {
		return core.AppointmentPayload{}, &requestError{"invalid date format in booking_start"}
	}

	p := core.AppointmentPayload{
		BookingStart:       core.FormatBookingStart(start),
		ServiceID:          req.ServiceID,
		ProviderID:         req.ProviderID,
		NotifyParticipants: true,
		InternalNotes:      req.InternalNotes,
	}
	if req.LocationID > 0 {
		loc := req.LocationID
		p.LocationID = &loc
	}
	if req.NotifyParticipants != nil {
		p.NotifyParticipants = *req.NotifyParticipants
	}

	b := core.Booking{
		CustomerID:   req.CustomerID,
		Persons:      max(req.Persons, 1),
		Status:       req.Status,
		Extras:       []any{},
		CustomFields: req.CustomFields,
	}
	if b.Status == "" {
		b.Status = core.ColStatus.Default
	}
	if req.Duration > 0 {
		d := req.Duration
		b.Duration = &d
	}
	p.Bookings = []core.Booking{b}
	return p, nil
}

// CreatedResponse reports a created appointment.
type CreatedResponse struct {
	ID          string         `json:"id"`
	Appointment map[string]any `json:"appointment"`
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req AppointmentRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	payload, err := req.Payload()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.CreateAppointment(r.Context(), payload)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !result.OK() {
		s.respondError(w, r, result.Err)
		return
	}

	appointments, err := s.service.Resource("appointments")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	item, ok := appointments.Item(result)
	if !ok {
		s.respondError(w, r, core.ErrUnexpectedResponse)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: core.FormatValue(item["id"]), Appointment: item})
}

// StatusRequest changes an appointment's status.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved pending canceled rejected"`
}

func (s *Server) handleAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result := s.service.Client().UpdateAppointmentStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if !result.OK() {
		s.respondError(w, r, result.Err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": chi.URLParam(r, "id"), "status": req.Status})
}
