package scheduling

import "time"

// Candidate is a booking attempt to be checked against a staff member's
// existing commitments. BufferMinutes comes from the slot the candidate
// would book into.
type Candidate struct {
	StaffID         string
	Date            time.Time
	StartMinute     int
	DurationMinutes int
	BufferMinutes   int
}

// BookingRecord is the engine's view of an existing booking. Each record
// carries the buffer of the slot that produced it, so turnover time is
// blocked per booking rather than per candidate.
type BookingRecord struct {
	StaffID         string
	Date            time.Time
	StartMinute     int
	DurationMinutes int
	BufferMinutes   int
	Cancelled       bool
}

// occupiedEnd is the exclusive end of the interval a booking blocks: service
// duration plus the turnover buffer after it.
func occupiedEnd(startMinute, durationMinutes, bufferMinutes int) int {
	return startMinute + durationMinutes + bufferMinutes
}

// HasConflict reports whether the candidate's occupied interval overlaps any
// existing non-cancelled booking for the same staff member on the same date.
// Intervals are half-open, so a booking that starts exactly when another's
// buffer ends does not conflict.
//
// This is a pure predicate: it neither reserves nor mutates anything.
// Callers that act on a clear result must serialize the check-and-commit
// sequence per staff member and date themselves, or two concurrent bookings
// can both pass the check.
func HasConflict(c Candidate, existing []BookingRecord) bool {
	cDate := dateOnly(c.Date)
	cStart := c.StartMinute
	cEnd := occupiedEnd(c.StartMinute, c.DurationMinutes, c.BufferMinutes)

	for _, b := range existing {
		if b.Cancelled || b.StaffID != c.StaffID || !dateOnly(b.Date).Equal(cDate) {
			continue
		}
		bEnd := occupiedEnd(b.StartMinute, b.DurationMinutes, b.BufferMinutes)
		if cStart < bEnd && b.StartMinute < cEnd {
			return true
		}
	}
	return false
}
