package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bellamoda/salon-bookings/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Appointment, error)
	List(ctx context.Context, limit, offset int, status *domain.AppointmentStatus) ([]domain.Appointment, error)
	ListDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error)
	BookedTimes(ctx context.Context, dayStart, dayEnd time.Time) ([]time.Time, error)
	ActiveAt(ctx context.Context, ts time.Time, excludeID int64) (bool, error)
	UpdateSchedule(ctx context.Context, id int64, ts time.Time) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error)
	Cancel(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListDueReminders(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64) (bool, error)
}

// querier is the slice of pgxpool.Pool the repository calls, split out so
// tests can substitute a mock pool.
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type appointmentRepository struct {
	pool querier
}

func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

func newAppointmentRepositoryWithQuerier(q querier) *appointmentRepository {
	return &appointmentRepository{pool: q}
}

const appointmentCols = `id, user_id, service_id, scheduled_at, status, notes,
walk_in_name, walk_in_phone, staff_id, reminder_sent, created_at, updated_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID, &a.UserID, &a.ServiceID, &a.ScheduledAt, &a.Status, &a.Notes,
		&a.WalkInName, &a.WalkInPhone, &a.StaffID, &a.ReminderSent,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	defer rows.Close()

	var appts []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ServiceID, &a.ScheduledAt, &a.Status, &a.Notes,
			&a.WalkInName, &a.WalkInPhone, &a.StaffID, &a.ReminderSent,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// isUniqueViolation matches the partial unique index on
// (scheduled_at) WHERE status <> 'canceled'.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts the appointment inside a transaction that re-checks the
// slot right before the write. The pre-check gives a clean error for the
// common race; the unique index remains the guarantee, and a violation that
// slips past the re-check still maps to ErrSlotConflict.
func (r *appointmentRepository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var taken bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments WHERE scheduled_at=$1 AND status <> 'canceled')`,
		a.ScheduledAt,
	).Scan(&taken)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlotConflict
	}

	const q = `INSERT INTO appointments (
		user_id, service_id, scheduled_at, status, notes,
		walk_in_name, walk_in_phone, staff_id, reminder_sent
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false)
	RETURNING ` + appointmentCols

	created, err := scanAppointment(tx.QueryRow(ctx, q,
		a.UserID, a.ServiceID, a.ScheduledAt, a.Status, a.Notes,
		a.WalkInName, a.WalkInPhone, a.StaffID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	const q = `SELECT ` + appointmentCols + ` FROM appointments WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Appointment, error) {
	limit, offset = clampPage(limit, offset)

	const q = `SELECT ` + appointmentCols + ` FROM appointments
		WHERE user_id=$1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *appointmentRepository) List(ctx context.Context, limit, offset int, status *domain.AppointmentStatus) ([]domain.Appointment, error) {
	limit, offset = clampPage(limit, offset)

	q := `SELECT ` + appointmentCols + ` FROM appointments`
	args := []any{}
	if status != nil {
		q += ` WHERE status=$1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`
		args = append(args, *status, limit, offset)
	} else {
		q += ` ORDER BY scheduled_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *appointmentRepository) ListDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	const q = `SELECT ` + appointmentCols + ` FROM appointments
		WHERE scheduled_at >= $1 AND scheduled_at < $2 AND status <> 'canceled'
		ORDER BY scheduled_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *appointmentRepository) BookedTimes(ctx context.Context, dayStart, dayEnd time.Time) ([]time.Time, error) {
	const q = `SELECT scheduled_at FROM appointments
		WHERE scheduled_at >= $1 AND scheduled_at < $2 AND status <> 'canceled'
		ORDER BY scheduled_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		times = append(times, ts)
	}
	return times, rows.Err()
}

// ActiveAt reports whether a non-canceled appointment holds ts. excludeID
// lets a reschedule ignore the appointment being moved; pass 0 to exclude
// nothing.
func (r *appointmentRepository) ActiveAt(ctx context.Context, ts time.Time, excludeID int64) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM appointments
		WHERE scheduled_at=$1 AND status <> 'canceled' AND id <> $2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, ts, excludeID).Scan(&exists)
	return exists, err
}

// UpdateSchedule moves the appointment to ts in place; identity and history
// are preserved, no new row. The unique index fires if another active
// appointment already holds ts.
func (r *appointmentRepository) UpdateSchedule(ctx context.Context, id int64, ts time.Time) (*domain.Appointment, error) {
	const q = `UPDATE appointments SET scheduled_at=$2, updated_at=now()
		WHERE id=$1
		RETURNING ` + appointmentCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id, ts))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil && isUniqueViolation(err) {
		return nil, domain.ErrSlotConflict
	}
	return a, err
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	const q = `UPDATE appointments SET status=$2, updated_at=now()
		WHERE id=$1
		RETURNING ` + appointmentCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id, status))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// Cancel soft-cancels: the row stays for history but stops holding its slot,
// because the unique index only covers non-canceled rows.
func (r *appointmentRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE appointments SET status='canceled', updated_at=now()
		WHERE id=$1 AND status <> 'canceled'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// Delete hard-deletes the row. Admin purge path only.
func (r *appointmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM appointments WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *appointmentRepository) ListDueReminders(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	const q = `SELECT ` + appointmentCols + ` FROM appointments
		WHERE scheduled_at >= $1 AND scheduled_at < $2
		  AND status <> 'canceled' AND reminder_sent = false
		ORDER BY scheduled_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// MarkReminderSent flips the reminder flag only if it is still unset, so two
// overlapping job instances cannot both claim the same appointment.
func (r *appointmentRepository) MarkReminderSent(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE appointments SET reminder_sent=true, updated_at=now()
		WHERE id=$1 AND reminder_sent=false`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
