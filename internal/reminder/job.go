// Package reminder implements the periodic sweep that notifies customers of
// same-day appointments exactly once.
package reminder

import (
	"context"
	"time"

	"github.com/bellamoda/salon-bookings/internal/domain"
	"github.com/bellamoda/salon-bookings/internal/mailer"
	"github.com/bellamoda/salon-bookings/internal/repository"
	"github.com/bellamoda/salon-bookings/internal/schedule"
	"github.com/bellamoda/salon-bookings/pkg/events"
	"github.com/bellamoda/salon-bookings/pkg/logger"
)

type Job struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	services     repository.ServiceRepository
	mailer       mailer.Service
	eventBus     events.Publisher
	loc          *time.Location
	now          func() time.Time
}

// Summary is one run's outcome. A run that considered nothing is a normal
// no-op.
type Summary struct {
	Considered int
	Sent       int
	Failed     int
}

func NewJob(
	appointments repository.AppointmentRepository,
	users repository.UserRepository,
	services repository.ServiceRepository,
	mail mailer.Service,
	eventBus events.Publisher,
	loc *time.Location,
) *Job {
	return &Job{
		appointments: appointments,
		users:        users,
		services:     services,
		mailer:       mail,
		eventBus:     eventBus,
		loc:          loc,
		now:          time.Now,
	}
}

// Run sweeps the current business-local calendar day for active
// appointments whose reminder flag is unset, sends each reminder, and flips
// the flag with a conditional update so a concurrent run can never
// double-flag. Failures are counted and skipped; nothing is retried within
// the run.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	start, end := schedule.DayWindow(j.now(), j.loc)

	due, err := j.appointments.ListDueReminders(ctx, start, end)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Considered: len(due)}
	for i := range due {
		appt := &due[i]
		if j.remind(ctx, appt) {
			summary.Sent++
		} else {
			summary.Failed++
		}
	}

	logger.InfoContext(ctx, "Reminder sweep finished",
		"considered", summary.Considered,
		"sent", summary.Sent,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (j *Job) remind(ctx context.Context, appt *domain.Appointment) bool {
	user, err := j.users.FindByID(ctx, appt.UserID)
	if err != nil {
		logger.ErrorContext(ctx, "Reminder: failed to load user",
			"error", err, "appointment_id", appt.ID)
		return false
	}
	if user == nil || user.Email == "" {
		logger.WarnContext(ctx, "Reminder: no notification address, skipping",
			"appointment_id", appt.ID)
		return false
	}

	serviceName := "appointment"
	if svc, err := j.services.GetByID(ctx, appt.ServiceID); err == nil && svc != nil {
		serviceName = svc.Name
	}

	if err := j.mailer.SendAppointmentReminder(user.Email, user.Name, mailer.AppointmentSummary{
		ID:          appt.ID,
		ServiceName: serviceName,
		ScheduledAt: schedule.Normalize(appt.ScheduledAt, j.loc),
		Notes:       appt.Notes,
	}); err != nil {
		// Flag stays unset; the next run retries.
		logger.ErrorContext(ctx, "Reminder: send failed",
			"error", err, "appointment_id", appt.ID)
		return false
	}

	flipped, err := j.appointments.MarkReminderSent(ctx, appt.ID)
	if err != nil {
		logger.ErrorContext(ctx, "Reminder: failed to mark sent",
			"error", err, "appointment_id", appt.ID)
		return false
	}
	if !flipped {
		// A concurrent instance won the flag; count it sent, do nothing.
		return true
	}

	if err := j.eventBus.Publish(ctx, events.AppointmentReminded, events.AppointmentRemindedEvent{
		AppointmentID: appt.ID,
		ScheduledAt:   appt.ScheduledAt,
		RemindedAt:    j.now(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reminder event",
			"error", err, "appointment_id", appt.ID)
	}
	return true
}

// Start runs the sweep on a fixed interval until ctx is canceled. One run
// executes immediately so a restart never waits a full interval.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if _, err := j.Run(ctx); err != nil {
		logger.ErrorContext(ctx, "Reminder sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "Reminder sweep failed", "error", err)
			}
		}
	}
}
