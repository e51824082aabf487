package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bellamoda/salon-bookings/internal/domain"
	"github.com/bellamoda/salon-bookings/internal/mailer"
	"github.com/bellamoda/salon-bookings/internal/repository"
	"github.com/bellamoda/salon-bookings/internal/schedule"
	"github.com/bellamoda/salon-bookings/pkg/events"
	"github.com/bellamoda/salon-bookings/pkg/logger"
)

type BookingService interface {
	Book(ctx context.Context, actor domain.Actor, req *domain.BookingRequest) (*domain.Appointment, error)
	Reschedule(ctx context.Context, actor domain.Actor, id int64, newTime string) (*domain.Appointment, error)
	Cancel(ctx context.Context, actor domain.Actor, id int64) error
	Purge(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error)
	BulkCancel(ctx context.Context, ids []int64) []domain.BulkResult
	BulkReschedule(ctx context.Context, ids []int64, newDate string) []domain.BulkResult
	GetAppointment(ctx context.Context, actor domain.Actor, id int64) (*domain.Appointment, error)
	ListMine(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Appointment, error)
	ListAll(ctx context.Context, limit, offset int, status *domain.AppointmentStatus) ([]domain.Appointment, error)
	ListDay(ctx context.Context, date string) ([]domain.Appointment, error)
	BookedTimes(ctx context.Context, date string) (*domain.DaySchedule, error)
	IsSlotFree(ctx context.Context, ts time.Time) (bool, error)
}

// bookingService is the sole writer of appointment rows. Every mutation --
// customer or admin -- funnels through here so the validation ladder and
// conflict handling stay uniform.
type bookingService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	matcher      *ServiceMatcher
	mailer       mailer.Service
	eventBus     events.Publisher
	loc          *time.Location
	now          func() time.Time
}

func NewBookingService(
	appointments repository.AppointmentRepository,
	users repository.UserRepository,
	services repository.ServiceRepository,
	mail mailer.Service,
	eventBus events.Publisher,
	loc *time.Location,
) BookingService {
	return &bookingService{
		appointments: appointments,
		users:        users,
		matcher:      NewServiceMatcher(services),
		mailer:       mail,
		eventBus:     eventBus,
		loc:          loc,
		now:          time.Now,
	}
}

// Book validates and commits a new appointment. The ladder is fixed and
// fail-fast: parse (incl. grid), past check, business hours, slot conflict,
// flags present, service match, commit. The commit re-checks the slot in a
// transaction and maps a unique-index violation to the same ErrSlotConflict
// the pre-check produces.
func (s *bookingService) Book(ctx context.Context, actor domain.Actor, req *domain.BookingRequest) (*domain.Appointment, error) {
	ts, err := schedule.Parse(req.ScheduledAt, s.loc)
	if err != nil {
		return nil, err
	}
	if ts.Before(schedule.Normalize(s.now(), s.loc)) {
		return nil, domain.ErrPastDate
	}
	if !schedule.IsBusinessOpen(ts, s.loc) {
		return nil, domain.ErrOutsideBusinessHours
	}

	free, err := s.IsSlotFree(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("slot check failed: %w", err)
	}
	if !free {
		return nil, domain.ErrSlotConflict
	}

	svc, err := s.matcher.Match(ctx, req.Clientele, req.Cut, req.Wash, req.Color)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	appt := &domain.Appointment{
		UserID:      actor.ID,
		ServiceID:   svc.ID,
		ScheduledAt: ts,
		Status:      domain.AppointmentScheduled,
		Notes:       req.Notes,
		StaffID:     req.StaffID,
	}
	// Walk-in fields are admin-entered only; a customer cannot book on
	// behalf of someone else.
	if actor.IsAdmin() {
		if req.WalkInName != "" {
			appt.WalkInName = &req.WalkInName
		}
		if req.WalkInPhone != "" {
			appt.WalkInPhone = &req.WalkInPhone
		}
	}

	created, err := s.appointments.Create(ctx, appt)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.AppointmentBooked, events.AppointmentBookedEvent{
		AppointmentID: created.ID,
		UserID:        created.UserID,
		ServiceID:     created.ServiceID,
		ScheduledAt:   created.ScheduledAt,
		WalkIn:        created.WalkInName != nil,
		CreatedAt:     created.CreatedAt,
	})

	// Confirmation is fire-and-forget: a mail failure never fails the
	// booking.
	if err := s.mailer.SendBookingConfirmation(user.Email, user.Name, mailer.AppointmentSummary{
		ID:          created.ID,
		ServiceName: svc.Name,
		ScheduledAt: created.ScheduledAt,
		Notes:       created.Notes,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to send booking confirmation",
			"error", err, "appointment_id", created.ID)
	}

	return created, nil
}

// Reschedule moves an owned (or, for admins, any) appointment to a new
// slot. The appointment being moved is excluded from its own conflict set.
func (s *bookingService) Reschedule(ctx context.Context, actor domain.Actor, id int64, newTime string) (*domain.Appointment, error) {
	appt, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	ts, err := schedule.Parse(newTime, s.loc)
	if err != nil {
		return nil, err
	}
	if ts.Equal(appt.ScheduledAt) {
		return nil, domain.ErrNoChange
	}
	if ts.Before(schedule.Normalize(s.now(), s.loc)) {
		return nil, domain.ErrPastDate
	}
	if !schedule.IsBusinessOpen(ts, s.loc) {
		return nil, domain.ErrOutsideBusinessHours
	}

	taken, err := s.appointments.ActiveAt(ctx, ts, id)
	if err != nil {
		return nil, fmt.Errorf("slot check failed: %w", err)
	}
	if taken {
		return nil, domain.ErrSlotConflict
	}

	oldTime := appt.ScheduledAt
	updated, err := s.appointments.UpdateSchedule(ctx, id, ts)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}

	s.publish(ctx, events.AppointmentRescheduled, events.AppointmentRescheduledEvent{
		AppointmentID: updated.ID,
		OldTime:       oldTime,
		NewTime:       updated.ScheduledAt,
		UpdatedAt:     updated.UpdatedAt,
	})

	return updated, nil
}

// Cancel soft-cancels, freeing the slot immediately. The row survives for
// history; Purge is the hard-delete path.
func (s *bookingService) Cancel(ctx context.Context, actor domain.Actor, id int64) error {
	appt, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	ok, err := s.appointments.Cancel(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}

	reason := "customer_canceled"
	if actor.IsAdmin() && !appt.IsOwnedBy(actor.ID) {
		reason = "admin_canceled"
	}
	s.publish(ctx, events.AppointmentCanceled, events.AppointmentCanceledEvent{
		AppointmentID: id,
		Reason:        reason,
		CanceledAt:    s.now(),
	})

	return nil
}

func (s *bookingService) Purge(ctx context.Context, id int64) error {
	ok, err := s.appointments.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}

	s.publish(ctx, events.AppointmentCanceled, events.AppointmentCanceledEvent{
		AppointmentID: id,
		Reason:        "purged",
		CanceledAt:    s.now(),
	})
	return nil
}

// SetStatus is the admin status edit; completed is only reachable here.
func (s *bookingService) SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	updated, err := s.appointments.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	return updated, nil
}

// BulkCancel applies Cancel per id, best-effort. One failing id never
// aborts the rest; the caller gets a per-id outcome list.
func (s *bookingService) BulkCancel(ctx context.Context, ids []int64) []domain.BulkResult {
	results := make([]domain.BulkResult, 0, len(ids))
	for _, id := range ids {
		ok, err := s.appointments.Cancel(ctx, id)
		switch {
		case err != nil:
			results = append(results, domain.BulkResult{ID: id, Error: err.Error()})
		case !ok:
			results = append(results, domain.BulkResult{ID: id, Error: domain.ErrNotFound.Error()})
		default:
			results = append(results, domain.BulkResult{ID: id, OK: true})
			s.publish(ctx, events.AppointmentCanceled, events.AppointmentCanceledEvent{
				AppointmentID: id,
				Reason:        "admin_bulk_canceled",
				CanceledAt:    s.now(),
			})
		}
	}
	return results
}

// BulkReschedule moves each appointment to newDate keeping its original
// time-of-day, validating hours and conflicts independently per id.
func (s *bookingService) BulkReschedule(ctx context.Context, ids []int64, newDate string) []domain.BulkResult {
	results := make([]domain.BulkResult, 0, len(ids))

	day, err := schedule.ParseDate(newDate, s.loc)
	if err != nil {
		for _, id := range ids {
			results = append(results, domain.BulkResult{ID: id, Error: err.Error()})
		}
		return results
	}

	for _, id := range ids {
		if err := s.rescheduleToDay(ctx, id, day); err != nil {
			results = append(results, domain.BulkResult{ID: id, Error: err.Error()})
			continue
		}
		results = append(results, domain.BulkResult{ID: id, OK: true})
	}
	return results
}

func (s *bookingService) rescheduleToDay(ctx context.Context, id int64, day time.Time) error {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}
	if appt == nil {
		return domain.ErrNotFound
	}

	old := schedule.Normalize(appt.ScheduledAt, s.loc)
	ts := time.Date(day.Year(), day.Month(), day.Day(), old.Hour(), old.Minute(), 0, 0, s.loc)

	if ts.Equal(old) {
		return domain.ErrNoChange
	}
	if ts.Before(schedule.Normalize(s.now(), s.loc)) {
		return domain.ErrPastDate
	}
	if !schedule.IsBusinessOpen(ts, s.loc) {
		return domain.ErrOutsideBusinessHours
	}

	taken, err := s.appointments.ActiveAt(ctx, ts, id)
	if err != nil {
		return fmt.Errorf("slot check failed: %w", err)
	}
	if taken {
		return domain.ErrSlotConflict
	}

	updated, err := s.appointments.UpdateSchedule(ctx, id, ts)
	if err != nil {
		return err
	}
	if updated == nil {
		return domain.ErrNotFound
	}

	s.publish(ctx, events.AppointmentRescheduled, events.AppointmentRescheduledEvent{
		AppointmentID: id,
		OldTime:       old,
		NewTime:       ts,
		UpdatedAt:     updated.UpdatedAt,
	})
	return nil
}

func (s *bookingService) GetAppointment(ctx context.Context, actor domain.Actor, id int64) (*domain.Appointment, error) {
	return s.loadOwned(ctx, actor, id)
}

func (s *bookingService) ListMine(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Appointment, error) {
	return s.appointments.ListByUser(ctx, actor.ID, limit, offset)
}

func (s *bookingService) ListAll(ctx context.Context, limit, offset int, status *domain.AppointmentStatus) ([]domain.Appointment, error) {
	return s.appointments.List(ctx, limit, offset, status)
}

func (s *bookingService) ListDay(ctx context.Context, date string) ([]domain.Appointment, error) {
	day, err := schedule.ParseDate(date, s.loc)
	if err != nil {
		return nil, err
	}
	start, end := schedule.DayWindow(day, s.loc)
	return s.appointments.ListDay(ctx, start, end)
}

// BookedTimes answers "what is taken on date" for the day's slot grid. The
// result is advisory; IsSlotFree at commit time is authoritative.
func (s *bookingService) BookedTimes(ctx context.Context, date string) (*domain.DaySchedule, error) {
	day, err := schedule.ParseDate(date, s.loc)
	if err != nil {
		return nil, err
	}

	start, end := schedule.DayWindow(day, s.loc)
	times, err := s.appointments.BookedTimes(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked times: %w", err)
	}

	booked := make([]string, 0, len(times))
	for _, ts := range times {
		booked = append(booked, schedule.Normalize(ts, s.loc).Format("15:04"))
	}
	return &domain.DaySchedule{Date: date, Booked: booked}, nil
}

func (s *bookingService) IsSlotFree(ctx context.Context, ts time.Time) (bool, error) {
	taken, err := s.appointments.ActiveAt(ctx, schedule.Normalize(ts, s.loc), 0)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// loadOwned fetches an appointment and applies the ownership rule: a user
// sees only their own rows, an admin sees all. A foreign row reads as not
// found rather than forbidden so ids cannot be probed.
func (s *bookingService) loadOwned(ctx context.Context, actor domain.Actor, id int64) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	if appt == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.IsAdmin() && !appt.IsOwnedBy(actor.ID) {
		return nil, domain.ErrNotFound
	}
	return appt, nil
}

func (s *bookingService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
