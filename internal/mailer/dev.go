package mailer

import (
	"github.com/bellamoda/salon-bookings/pkg/logger"
)

// DevMailer prints mail to the log instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendBookingConfirmation(toEmail, toName string, appt AppointmentSummary) error {
	logger.Info("[DEV MAIL] booking confirmation",
		"to", toEmail,
		"name", toName,
		"appointment_id", appt.ID,
		"service", appt.ServiceName,
		"scheduled_at", appt.ScheduledAt,
	)
	return nil
}

func (d *DevMailer) SendAppointmentReminder(toEmail, toName string, appt AppointmentSummary) error {
	logger.Info("[DEV MAIL] appointment reminder",
		"to", toEmail,
		"name", toName,
		"appointment_id", appt.ID,
		"service", appt.ServiceName,
		"scheduled_at", appt.ScheduledAt,
	)
	return nil
}
