package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendBookingConfirmation(toEmail, toName string, appt AppointmentSummary) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	when := appt.ScheduledAt.Format("Monday, January 2 at 15:04")
	subject := "Your appointment is booked"
	html := fmt.Sprintf(`
		<h2>See you soon, %s!</h2>
		<p>Your <strong>%s</strong> appointment is confirmed for <strong>%s</strong>.</p>
		<p>Booking reference: #%d</p>
		<p>Need to change it? You can reschedule or cancel from your account.</p>
	`, toName, appt.ServiceName, when, appt.ID)

	text := fmt.Sprintf("Your %s appointment is confirmed for %s. Booking reference: #%d",
		appt.ServiceName, when, appt.ID)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendAppointmentReminder(toEmail, toName string, appt AppointmentSummary) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	when := appt.ScheduledAt.Format("15:04")
	subject := "Reminder: your appointment today"
	html := fmt.Sprintf(`
		<h2>See you today at %s</h2>
		<p>Hi %s, this is a reminder for your <strong>%s</strong> appointment today at <strong>%s</strong>.</p>
		<p>Booking reference: #%d</p>
	`, when, toName, appt.ServiceName, when, appt.ID)

	text := fmt.Sprintf("Reminder: your %s appointment is today at %s. Booking reference: #%d",
		appt.ServiceName, when, appt.ID)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailersend send failed: %w", err)
	}
	return nil
}
