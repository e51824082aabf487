package domain

import "errors"

// Validation and conflict errors returned by the booking engine. Handlers
// translate these into HTTP statuses; anything else surfaces as a 500.
var (
	ErrInvalidTimestamp     = errors.New("invalid timestamp")
	ErrOutsideBusinessHours = errors.New("requested time is outside business hours")
	ErrNoServiceSelected    = errors.New("select at least one of cutting, washing or coloring")
	ErrServiceNotFound      = errors.New("no service matches the requested options")
	ErrSlotConflict         = errors.New("that time slot is already booked")
	ErrNotFound             = errors.New("appointment not found")
	ErrNoChange             = errors.New("appointment is already scheduled at that time")
	ErrPastDate             = errors.New("cannot schedule an appointment in the past")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
