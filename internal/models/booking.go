package models

import (
	"time"

	"github.com/bloomcove/booking-api/internal/scheduling"
)

// BookingStatus tracks a booking through its lifecycle.
type BookingStatus string

const (
	BookingPending     BookingStatus = "PENDING"
	BookingConfirmed   BookingStatus = "CONFIRMED"
	BookingRescheduled BookingStatus = "RESCHEDULED"
	BookingCancelled   BookingStatus = "CANCELLED"
)

// Booking represents a client's reservation of a staff member's time.
// BufferMinutes is copied from the slot at creation so later slot edits do
// not change the turnover window of bookings already on the calendar.
type Booking struct {
	ID              string        `db:"id" json:"id"`
	SlotID          string        `db:"slot_id" json:"slot_id"`
	StaffID         string        `db:"staff_id" json:"staff_id"`
	OfferingID      string        `db:"offering_id" json:"offering_id"`
	ClientName      string        `db:"client_name" json:"client_name"`
	ClientEmail     string        `db:"client_email" json:"client_email"`
	ClientPhone     *string       `db:"client_phone" json:"client_phone,omitempty"`
	Date            time.Time     `db:"date" json:"date"`
	StartMinute     int           `db:"start_minute" json:"start_minute"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	BufferMinutes   int           `db:"buffer_minutes" json:"buffer_minutes"`
	Status          BookingStatus `db:"status" json:"status"`
	Notes           *string       `db:"notes" json:"notes,omitempty"`
	CancelledAt     *time.Time    `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// Record converts the booking into the engine's conflict-check shape.
func (b Booking) Record() scheduling.BookingRecord {
	return scheduling.BookingRecord{
		StaffID:         b.StaffID,
		Date:            b.Date,
		StartMinute:     b.StartMinute,
		DurationMinutes: b.DurationMinutes,
		BufferMinutes:   b.BufferMinutes,
		Cancelled:       b.Status == BookingCancelled,
	}
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	StaffID   string
	ClientRef string
	Status    *BookingStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// BookingConflictDetail describes the existing booking that blocked a
// candidate.
type BookingConflictDetail struct {
	BookingID     string `json:"booking_id"`
	StartMinute   int    `json:"start_minute"`
	EndMinute     int    `json:"end_minute"`
	BufferMinutes int    `json:"buffer_minutes"`
}

// BookingConflictError is returned when a requested time collides with an
// existing booking's occupied interval.
type BookingConflictError struct {
	Message  string                  `json:"message"`
	StaffID  string                  `json:"staff_id"`
	Date     string                  `json:"date"`
	Conflict []BookingConflictDetail `json:"conflicts,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
