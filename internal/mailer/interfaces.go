package mailer

import "time"

// AppointmentSummary is the slice of an appointment that notifications need.
type AppointmentSummary struct {
	ID          int64
	ServiceName string
	ScheduledAt time.Time
	Notes       string
}

// Service sends transactional mail. Callers treat every send as
// fire-and-forget: a failed notification is logged, never surfaced as a
// booking or reminder-job failure.
type Service interface {
	SendBookingConfirmation(toEmail, toName string, appt AppointmentSummary) error
	SendAppointmentReminder(toEmail, toName string, appt AppointmentSummary) error
}
