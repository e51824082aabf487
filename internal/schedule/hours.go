// Package schedule holds the salon's opening-hours table and the timestamp
// normalization every conflict check depends on.
package schedule

import (
	"fmt"
	"time"

	"github.com/bellamoda/salon-bookings/internal/domain"
)

// SlotInterval is the booking grid. Every appointment occupies exactly one
// grid point.
const SlotInterval = 30 * time.Minute

// Location builds the canonical business timezone from a fixed UTC offset.
// The reference deployment runs at UTC+2.
func Location(utcOffsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", utcOffsetHours), utcOffsetHours*3600)
}

// Normalize converts t to the canonical business offset. All comparisons and
// persisted values go through this first; comparing un-normalized timestamps
// is how cross-timezone double bookings happen.
func Normalize(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// Parse reads an RFC 3339 timestamp and normalizes it. Malformed input and
// off-grid times both fail with domain.ErrInvalidTimestamp; nothing is ever
// silently defaulted.
func Parse(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimestamp, raw)
	}
	t = Normalize(t, loc)
	if !OnGrid(t) {
		return time.Time{}, fmt.Errorf("%w: %q is not on the %s grid", domain.ErrInvalidTimestamp, raw, SlotInterval)
	}
	return t, nil
}

// OnGrid reports whether t sits exactly on the 30-minute booking grid.
func OnGrid(t time.Time) bool {
	return (t.Minute() == 0 || t.Minute() == 30) && t.Second() == 0 && t.Nanosecond() == 0
}

// IsBusinessOpen applies the salon's opening-hours table to t, evaluated in
// the business timezone:
//
//	Sunday, Monday    closed
//	Tuesday - Friday  09:00 - 19:00
//	Saturday          08:00 - 17:00
//
// Opening bounds are inclusive, closing bounds exclusive. Only hour-of-day
// is consulted; grid alignment is validated separately by Parse.
func IsBusinessOpen(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	hour := local.Hour()

	switch local.Weekday() {
	case time.Sunday, time.Monday:
		return false
	case time.Saturday:
		return hour >= 8 && hour < 17
	default: // Tuesday through Friday
		return hour >= 9 && hour < 19
	}
}

// DayWindow returns the [start, end) bounds of t's calendar day in the
// business timezone.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDate reads a YYYY-MM-DD calendar date in the business timezone.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimestamp, raw)
	}
	return d, nil
}
