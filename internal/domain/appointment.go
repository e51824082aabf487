package domain

import "time"

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCanceled  AppointmentStatus = "canceled"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentScheduled, AppointmentPending, AppointmentCompleted, AppointmentCanceled:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

// Appointment occupies exactly one 30-minute slot. At most one non-canceled
// appointment may exist at any scheduled_at value; the partial unique index
// in the appointments table is the source of truth for that invariant.
type Appointment struct {
	ID           int64             `json:"id"`
	UserID       int64             `json:"user_id"`
	ServiceID    int64             `json:"service_id"`
	ScheduledAt  time.Time         `json:"scheduled_at"`
	Status       AppointmentStatus `json:"status"`
	Notes        string            `json:"notes"`
	WalkInName   *string           `json:"walk_in_name,omitempty"`
	WalkInPhone  *string           `json:"walk_in_phone,omitempty"`
	StaffID      *int64            `json:"staff_id,omitempty"`
	ReminderSent bool              `json:"reminder_sent"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Active reports whether the appointment still holds its slot.
func (a *Appointment) Active() bool {
	return a.Status != AppointmentCanceled
}

func (a *Appointment) IsOwnedBy(userID int64) bool {
	return a.UserID == userID
}

// BookingRequest carries the raw booking input. ScheduledAt stays a string
// until the engine parses it so the whole validation ladder lives in one
// place.
type BookingRequest struct {
	ScheduledAt string    `json:"scheduled_at"`
	Clientele   Clientele `json:"clientele"`
	Cut         bool      `json:"cut"`
	Wash        bool      `json:"wash"`
	Color       bool      `json:"color"`
	Notes       string    `json:"notes"`
	WalkInName  string    `json:"walk_in_name,omitempty"`
	WalkInPhone string    `json:"walk_in_phone,omitempty"`
	StaffID     *int64    `json:"staff_id,omitempty"`
}

// BulkResult is the per-id outcome of a bulk admin operation. Bulk ops are
// best-effort: one failing id never aborts the rest.
type BulkResult struct {
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// DaySchedule is the booked portion of one calendar day's slot grid.
type DaySchedule struct {
	Date   string   `json:"date"`
	Booked []string `json:"booked"`
}
