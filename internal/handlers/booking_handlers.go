package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bellamoda/salon-bookings/internal/domain"
)

// CreateBooking books an appointment for the authenticated customer.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	appt, err := h.bookings.Book(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// ListMyAppointments lists the authenticated customer's appointments.
func (h *Handlers) ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	appts, err := h.bookings.ListMine(r.Context(), actorFrom(r), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}

	writeJSON(w, http.StatusOK, appts)
}

func (h *Handlers) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid appointment ID")
		return
	}
	r = withAppointmentID(r, id)

	appt, err := h.bookings.GetAppointment(r.Context(), actorFrom(r), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

type rescheduleRequest struct {
	ScheduledAt string `json:"scheduled_at"`
}

// RescheduleAppointment moves an appointment to a new slot. Ownership is
// enforced by the engine; the appointment keeps its identity.
func (h *Handlers) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid appointment ID")
		return
	}
	r = withAppointmentID(r, id)

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	appt, err := h.bookings.Reschedule(r.Context(), actorFrom(r), id, req.ScheduledAt)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

func (h *Handlers) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid appointment ID")
		return
	}
	r = withAppointmentID(r, id)

	if err := h.bookings.Cancel(r.Context(), actorFrom(r), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSlots returns the booked times for one calendar day, used to gray out
// the day's slot grid. The rendering is advisory; the engine re-checks at
// commit time.
func (h *Handlers) ListSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Missing date parameter")
		return
	}

	day, err := h.bookings.BookedTimes(r.Context(), date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, day)
}
