package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bellamoda/salon-bookings/internal/domain"
	"github.com/bellamoda/salon-bookings/internal/mailer"
)

// mockAppointmentRepo is an in-memory stand-in for the Postgres repository.
// Create enforces the one-active-appointment-per-slot rule the same way the
// partial unique index does.
type mockAppointmentRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Appointment

	createErr error
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{nextID: 1, rows: make(map[int64]*domain.Appointment)}
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, row := range m.rows {
		if row.Active() && row.ScheduledAt.Equal(a.ScheduledAt) {
			return nil, domain.ErrSlotConflict
		}
	}

	stored := *a
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.nextID++
	m.rows[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	out := *row
	return &out, nil
}

func (m *mockAppointmentRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Appointment
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) List(ctx context.Context, limit, offset int, status *domain.AppointmentStatus) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Appointment
	for _, row := range m.rows {
		if status != nil && row.Status != *status {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (m *mockAppointmentRepo) ListDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Appointment
	for _, row := range m.rows {
		if !row.ScheduledAt.Before(dayStart) && row.ScheduledAt.Before(dayEnd) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) BookedTimes(ctx context.Context, dayStart, dayEnd time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Time
	for _, row := range m.rows {
		if row.Active() && !row.ScheduledAt.Before(dayStart) && row.ScheduledAt.Before(dayEnd) {
			out = append(out, row.ScheduledAt)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) ActiveAt(ctx context.Context, ts time.Time, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID != excludeID && row.Active() && row.ScheduledAt.Equal(ts) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) UpdateSchedule(ctx context.Context, id int64, ts time.Time) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	row.ScheduledAt = ts
	row.UpdatedAt = time.Now()
	out := *row
	return &out, nil
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	row.Status = status
	row.UpdatedAt = time.Now()
	out := *row
	return &out, nil
}

func (m *mockAppointmentRepo) Cancel(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Status == domain.AppointmentCanceled {
		return false, nil
	}
	row.Status = domain.AppointmentCanceled
	row.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *mockAppointmentRepo) ListDueReminders(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Appointment
	for _, row := range m.rows {
		if row.Active() && !row.ReminderSent &&
			!row.ScheduledAt.Before(dayStart) && row.ScheduledAt.Before(dayEnd) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) MarkReminderSent(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.ReminderSent {
		return false, nil
	}
	row.ReminderSent = true
	return true, nil
}

// mockServiceRepo serves a fixed catalog.
type mockServiceRepo struct {
	services []domain.Service
}

func (m *mockServiceRepo) FindExact(ctx context.Context, clientele domain.Clientele, cut, wash, color bool) (*domain.Service, error) {
	for i := range m.services {
		s := m.services[i]
		if s.Clientele == clientele && s.Cutting == cut && s.Washing == wash && s.Coloring == color {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *mockServiceRepo) ListByClientele(ctx context.Context, clientele domain.Clientele) ([]domain.Service, error) {
	var out []domain.Service
	for _, s := range m.services {
		if s.Clientele == clientele {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockServiceRepo) ListAll(ctx context.Context) ([]domain.Service, error) {
	return append([]domain.Service(nil), m.services...), nil
}

func (m *mockServiceRepo) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	for i := range m.services {
		if m.services[i].ID == id {
			s := m.services[i]
			return &s, nil
		}
	}
	return nil, nil
}

// mockUserRepo holds a fixed user set.
type mockUserRepo struct {
	users map[int64]*domain.User
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, email, passwordHash, name, phone, role string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	u := &domain.User{ID: int64(len(m.users) + 1), Email: email, PasswordHash: passwordHash, Name: name, Phone: phone, Role: role}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Role = role
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

// mockMailer records sends and optionally fails them.
type mockMailer struct {
	mu            sync.Mutex
	confirmations []string
	reminders     []string
	sendErr       error
}

func (m *mockMailer) SendBookingConfirmation(toEmail, toName string, appt mailer.AppointmentSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.confirmations = append(m.confirmations, toEmail)
	return nil
}

func (m *mockMailer) SendAppointmentReminder(toEmail, toName string, appt mailer.AppointmentSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.reminders = append(m.reminders, toEmail)
	return nil
}

// mockEventBus captures published subjects.
type mockEventBus struct {
	mu       sync.Mutex
	subjects []string
	pubErr   error
}

func (m *mockEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pubErr != nil {
		return m.pubErr
	}
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockEventBus) Close() error { return nil }
