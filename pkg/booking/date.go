package booking

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day with no time-of-day or zone component.
type Date struct {
	value time.Time
}

// NewDate validates the components and returns the calendar day.
func NewDate(year int, month time.Month, day int) (Date, error) {
	value := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if value.Year() != year || value.Month() != month || value.Day() != day {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d is not a calendar date", ErrInvalidInput, year, int(month), day)
	}
	return Date{value: value}, nil
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{value: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "2006-01-02" date.
func ParseDate(raw string) (Date, error) {
	return parseDateLayout(raw, isoDateLayout)
}

// ParseDayFirstDate parses a "02/01/2006" (dd/MM/yyyy) date.
func ParseDayFirstDate(raw string) (Date, error) {
	return parseDateLayout(raw, dayFirstDateLayout)
}

func parseDateLayout(raw string, layout string) (Date, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Date{}, fmt.Errorf("%w: empty date", ErrInvalidInput)
	}
	parsed, err := time.ParseInLocation(layout, trimmed, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q does not match %s", ErrInvalidInput, trimmed, layout)
	}
	return DateOf(parsed), nil
}

// IsZero reports whether the date is unset.
func (date Date) IsZero() bool {
	return date.value.IsZero()
}

// Before reports whether date falls strictly before other.
func (date Date) Before(other Date) bool {
	return date.value.Before(other.value)
}

// After reports whether date falls strictly after other.
func (date Date) After(other Date) bool {
	return date.value.After(other.value)
}

// Equal reports whether both values name the same day.
func (date Date) Equal(other Date) bool {
	return date.value.Equal(other.value)
}

// DaysUntil counts whole days from date to other; negative when other is earlier.
func (date Date) DaysUntil(other Date) int64 {
	return (other.value.Unix() - date.value.Unix()) / secondsPerDay
}

// AddDays returns the date shifted by the given number of days.
func (date Date) AddDays(days int) Date {
	return Date{value: date.value.AddDate(0, 0, days)}
}

// Time returns midnight UTC of the day.
func (date Date) Time() time.Time {
	return date.value
}

// String returns the ISO form, or an empty string for an unset date.
func (date Date) String() string {
	if date.IsZero() {
		return ""
	}
	return date.value.Format(isoDateLayout)
}

// MarshalText encodes the date in ISO form.
func (date Date) MarshalText() ([]byte, error) {
	return []byte(date.String()), nil
}

// UnmarshalText decodes an ISO date; an empty value leaves the date unset.
func (date *Date) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*date = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*date = parsed
	return nil
}

// Stay is a half-open [CheckIn, CheckOut) range of nights.
type Stay struct {
	checkIn  Date
	checkOut Date
}

// NewStay validates that both dates are set and that check-out follows check-in.
func NewStay(checkIn Date, checkOut Date) (Stay, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return Stay{}, fmt.Errorf("%w: check-in and check-out dates are required", ErrInvalidInput)
	}
	if !checkOut.After(checkIn) {
		return Stay{}, fmt.Errorf("%w: check-out %s must be after check-in %s", ErrInvalidDateRange, checkOut, checkIn)
	}
	return Stay{checkIn: checkIn, checkOut: checkOut}, nil
}

// CheckIn returns the first occupied night.
func (stay Stay) CheckIn() Date {
	return stay.checkIn
}

// CheckOut returns the departure day, which is not occupied.
func (stay Stay) CheckOut() Date {
	return stay.checkOut
}

// Nights returns the number of occupied nights.
func (stay Stay) Nights() int64 {
	return stay.checkIn.DaysUntil(stay.checkOut)
}

// Overlaps reports whether the two stays share at least one night.
// Stays that touch (one ends the day the other begins) do not overlap.
func (stay Stay) Overlaps(other Stay) bool {
	return stay.checkIn.Before(other.checkOut) && stay.checkOut.After(other.checkIn)
}

// String renders the stay as "checkIn..checkOut".
func (stay Stay) String() string {
	return stay.checkIn.String() + ".." + stay.checkOut.String()
}
