package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/bellamoda/salon-bookings/pkg/logger"
)

// Publisher is the only event surface this service needs; consumers live in
// separate processes and subscribe with their own NATS clients.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

var _ Publisher = (*NATSEventBus)(nil)

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	AppointmentBooked      = "appointment.booked"
	AppointmentRescheduled = "appointment.rescheduled"
	AppointmentCanceled    = "appointment.canceled"
	AppointmentReminded    = "appointment.reminded"
	UserRegistered         = "user.registered"
)

// Event payloads
type AppointmentBookedEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	UserID        int64     `json:"user_id"`
	ServiceID     int64     `json:"service_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	WalkIn        bool      `json:"walk_in"`
	CreatedAt     time.Time `json:"created_at"`
}

type AppointmentRescheduledEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	OldTime       time.Time `json:"old_time"`
	NewTime       time.Time `json:"new_time"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AppointmentCanceledEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	Reason        string    `json:"reason"`
	CanceledAt    time.Time `json:"canceled_at"`
}

type AppointmentRemindedEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	RemindedAt    time.Time `json:"reminded_at"`
}

type UserRegisteredEvent struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
