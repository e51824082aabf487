package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/bellamoda/salon-bookings/internal/domain"
)

func newMockRepo(t *testing.T) (*appointmentRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return newAppointmentRepositoryWithQuerier(mock), mock
}

func testAppointment() *domain.Appointment {
	return &domain.Appointment{
		UserID:      1,
		ServiceID:   2,
		ScheduledAt: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Status:      domain.AppointmentScheduled,
	}
}

func appointmentRows(a *domain.Appointment) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "user_id", "service_id", "scheduled_at", "status", "notes",
		"walk_in_name", "walk_in_phone", "staff_id", "reminder_sent",
		"created_at", "updated_at",
	}).AddRow(
		int64(7), a.UserID, a.ServiceID, a.ScheduledAt, a.Status, a.Notes,
		a.WalkInName, a.WalkInPhone, a.StaffID, false, now, now,
	)
}

func TestCreateCommitsOnFreeSlot(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := testAppointment()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnRows(appointmentRows(a))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != 7 {
		t.Errorf("created ID = %d, want 7", created.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreatePreCheckReportsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), testAppointment())
	if !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("Create() error = %v, want ErrSlotConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// Two transactions can both pass the EXISTS pre-check; the partial unique
// index then rejects the loser at insert, and that violation must surface
// as the same ErrSlotConflict the pre-check produces.
func TestCreateUniqueViolationMapsToSlotConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointments_active_slot_key"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), testAppointment())
	if !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("Create() error = %v, want ErrSlotConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: "23505"}), true},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"plain error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkReminderSentLosesRace(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE appointments SET reminder_sent=true").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	flipped, err := repo.MarkReminderSent(context.Background(), 7)
	if err != nil {
		t.Fatalf("MarkReminderSent() error = %v", err)
	}
	if flipped {
		t.Error("expected no flip when the flag was already set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
