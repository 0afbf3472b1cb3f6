package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasConflictBlocksDuringBuffer(t *testing.T) {
	// Existing booking 09:00 to 10:00 with a 15 minute buffer occupies
	// [540, 615).
	existing := []BookingRecord{{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     9 * 60,
		DurationMinutes: 60,
		BufferMinutes:   15,
	}}

	during := Candidate{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     10*60 + 10,
		DurationMinutes: 30,
	}
	assert.True(t, HasConflict(during, existing), "start inside the buffer must conflict")

	atBufferEnd := during
	atBufferEnd.StartMinute = 10*60 + 15
	assert.False(t, HasConflict(atBufferEnd, existing), "start exactly at buffer end must not conflict")
}

func TestHasConflictUsesCandidateBufferToo(t *testing.T) {
	existing := []BookingRecord{{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     11 * 60,
		DurationMinutes: 60,
	}}

	// Candidate 10:00 to 10:45 with a 20 minute buffer occupies [600, 665),
	// crossing into the 11:00 booking.
	c := Candidate{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     10 * 60,
		DurationMinutes: 45,
		BufferMinutes:   20,
	}
	assert.True(t, HasConflict(c, existing))

	c.BufferMinutes = 15
	assert.False(t, HasConflict(c, existing))
}

func TestHasConflictIgnoresCancelledBookings(t *testing.T) {
	existing := []BookingRecord{{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     9 * 60,
		DurationMinutes: 60,
		BufferMinutes:   15,
		Cancelled:       true,
	}}

	c := Candidate{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     9 * 60,
		DurationMinutes: 60,
	}
	assert.False(t, HasConflict(c, existing))
}

func TestHasConflictScopesToStaffAndDate(t *testing.T) {
	existing := []BookingRecord{
		{StaffID: "staff-2", Date: date(2024, time.April, 10), StartMinute: 9 * 60, DurationMinutes: 60},
		{StaffID: "staff-1", Date: date(2024, time.April, 11), StartMinute: 9 * 60, DurationMinutes: 60},
	}

	c := Candidate{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     9 * 60,
		DurationMinutes: 60,
	}
	assert.False(t, HasConflict(c, existing), "other staff and other dates never conflict")
}

func TestHasConflictNormalizesDateTimes(t *testing.T) {
	existing := []BookingRecord{{
		StaffID:         "staff-1",
		Date:            time.Date(2024, time.April, 10, 14, 30, 0, 0, time.UTC),
		StartMinute:     9 * 60,
		DurationMinutes: 60,
	}}

	c := Candidate{
		StaffID:         "staff-1",
		Date:            time.Date(2024, time.April, 10, 8, 0, 0, 0, time.UTC),
		StartMinute:     9 * 60,
		DurationMinutes: 30,
	}
	assert.True(t, HasConflict(c, existing), "time-of-day components must not affect the date comparison")
}

func TestHasConflictBackToBackWithoutBuffers(t *testing.T) {
	existing := []BookingRecord{{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     9 * 60,
		DurationMinutes: 60,
	}}

	c := Candidate{
		StaffID:         "staff-1",
		Date:            date(2024, time.April, 10),
		StartMinute:     10 * 60,
		DurationMinutes: 60,
	}
	assert.False(t, HasConflict(c, existing), "half-open intervals allow back to back bookings")
}
