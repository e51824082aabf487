package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bellamoda/salon-bookings/internal/domain"
)

// ListAppointments lists all appointments for admin, optionally filtered by
// status.
func (h *Handlers) ListAppointments(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var status *domain.AppointmentStatus
	if param := r.URL.Query().Get("status"); param != "" {
		st, ok := domain.ParseAppointmentStatus(param)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid status parameter")
			return
		}
		status = &st
	}

	appts, err := h.bookings.ListAll(r.Context(), limit, offset, status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}

	writeJSON(w, http.StatusOK, appts)
}

// CreateWalkIn books an appointment with walk-in customer fields; the row is
// owned by the acting admin.
func (h *Handlers) CreateWalkIn(w http.ResponseWriter, r *http.Request) {
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

type statusRequest struct {
	Status string `json:"status"`
}

// SetAppointmentStatus is the admin status edit; this is the only way an
// appointment reaches completed.
func (h *Handlers) SetAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid appointment ID")
		return
	}
	r = withAppointmentID(r, id)

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	status, ok := domain.ParseAppointmentStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	appt, err := h.bookings.SetStatus(r.Context(), id, status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// PurgeAppointment hard-deletes a row. Soft cancel is the normal path; this
// exists for data-removal requests.
func (h *Handlers) PurgeAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid appointment ID")
		return
	}
	r = withAppointmentID(r, id)

	if err := h.bookings.Purge(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkCancelRequest struct {
	IDs []int64 `json:"ids"`
}

// BulkCancelAppointments cancels each listed id best-effort and returns a
// per-id outcome list.
func (h *Handlers) BulkCancelAppointments(w http.ResponseWriter, r *http.Request) {
	var req bulkCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "No appointment IDs provided")
		return
	}

	results := h.bookings.BulkCancel(r.Context(), req.IDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

type bulkRescheduleRequest struct {
	IDs  []int64 `json:"ids"`
	Date string  `json:"date"`
}

// BulkRescheduleAppointments re-targets each appointment's date while
// preserving its time-of-day, best-effort per id.
func (h *Handlers) BulkRescheduleAppointments(w http.ResponseWriter, r *http.Request) {
	var req bulkRescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "No appointment IDs provided")
		return
	}

	results := h.bookings.BulkReschedule(r.Context(), req.IDs, req.Date)
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// ExportDay streams one calendar day's appointments as CSV.
func (h *Handlers) ExportDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Missing date parameter")
		return
	}

	appts, err := h.bookings.ListDay(r.Context(), date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="appointments-%s.csv"`, date))

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "user_id", "service_id", "scheduled_at", "status", "walk_in_name", "walk_in_phone", "notes"})
	for _, a := range appts {
		walkInName, walkInPhone := "", ""
		if a.WalkInName != nil {
			walkInName = *a.WalkInName
		}
		if a.WalkInPhone != nil {
			walkInPhone = *a.WalkInPhone
		}
		cw.Write([]string{
			strconv.FormatInt(a.ID, 10),
			strconv.FormatInt(a.UserID, 10),
			strconv.FormatInt(a.ServiceID, 10),
			a.ScheduledAt.Format("2006-01-02 15:04"),
			string(a.Status),
			walkInName,
			walkInPhone,
			a.Notes,
		})
	}
	cw.Flush()
}

type roleRequest struct {
	Role string `json:"role"`
}

// SetUserRole is the manual admin action that changes a user's role.
func (h *Handlers) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.auth.UpdateUserRole(r.Context(), id, req.Role); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers lists registered users for admin.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, err := h.auth.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	writeJSON(w, http.StatusOK, users)
}
