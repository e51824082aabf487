package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPMailer struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPMailer(host string, port int, from, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		Host: strings.TrimSpace(host),
		Port: port,
		From: strings.TrimSpace(from),
		User: strings.TrimSpace(user),
		Pass: strings.TrimSpace(pass),
	}
}

func (s *SMTPMailer) SendBookingConfirmation(toEmail, toName string, appt AppointmentSummary) error {
	when := appt.ScheduledAt.Format("Monday, January 2 at 15:04")
	subject := "Your appointment is booked"
	text := fmt.Sprintf("Your %s appointment is confirmed for %s. Booking reference: #%d",
		appt.ServiceName, when, appt.ID)
	html := fmt.Sprintf(`
		<h2>See you soon, %s!</h2>
		<p>Your <strong>%s</strong> appointment is confirmed for <strong>%s</strong>.</p>
		<p>Booking reference: #%d</p>
	`, toName, appt.ServiceName, when, appt.ID)

	return s.sendEmail(toEmail, subject, text, html)
}

func (s *SMTPMailer) SendAppointmentReminder(toEmail, toName string, appt AppointmentSummary) error {
	when := appt.ScheduledAt.Format("15:04")
	subject := "Reminder: your appointment today"
	text := fmt.Sprintf("Reminder: your %s appointment is today at %s. Booking reference: #%d",
		appt.ServiceName, when, appt.ID)
	html := fmt.Sprintf(`
		<h2>See you today at %s</h2>
		<p>Hi %s, this is a reminder for your <strong>%s</strong> appointment today at <strong>%s</strong>.</p>
		<p>Booking reference: #%d</p>
	`, when, toName, appt.ServiceName, when, appt.ID)

	return s.sendEmail(toEmail, subject, text, html)
}

func (s *SMTPMailer) sendEmail(toEmail, subject, text, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	var buf bytes.Buffer
	boundary := "mixed-boundary"

	fmt.Fprintf(&buf, "From: %s\r\n", s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	// Mailpit or development SMTP (no auth)
	if s.User == "" {
		return smtp.SendMail(addr, nil, s.From, []string{toEmail}, buf.Bytes())
	}

	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)
	return smtp.SendMail(addr, auth, s.From, []string{toEmail}, buf.Bytes())
}
