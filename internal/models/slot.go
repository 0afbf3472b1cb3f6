package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/bloomcove/booking-api/internal/scheduling"
)

// AvailabilitySlot represents a stored window of availability for a staff
// member. Recurrence fields mirror the scheduling pattern: one_time slots
// carry SpecificDate, recurring slots carry Weekday plus their type-specific
// selectors.
type AvailabilitySlot struct {
	ID                string         `db:"id" json:"id"`
	StaffID           string         `db:"staff_id" json:"staff_id"`
	ScheduleType      string         `db:"schedule_type" json:"schedule_type"`
	Weekday           *int           `db:"weekday" json:"weekday,omitempty"`
	BiweeklyGroup     *string        `db:"biweekly_group" json:"biweekly_group,omitempty"`
	SkipFifthWeek     bool           `db:"skip_fifth_week" json:"skip_fifth_week"`
	MonthlyOccurrence *string        `db:"monthly_occurrence" json:"monthly_occurrence,omitempty"`
	SpecificDate      *time.Time     `db:"specific_date" json:"specific_date,omitempty"`
	RecurrenceEndDate *time.Time     `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	StartMinute       int            `db:"start_minute" json:"start_minute"`
	EndMinute         int            `db:"end_minute" json:"end_minute"`
	BufferMinutes     int            `db:"buffer_minutes" json:"buffer_minutes"`
	AppointmentOnly   bool           `db:"appointment_only" json:"appointment_only"`
	OfferingIDs       pq.StringArray `db:"offering_ids" json:"offering_ids"`
	Active            bool           `db:"active" json:"active"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// Pattern converts the stored recurrence columns into an engine pattern.
func (s AvailabilitySlot) Pattern() scheduling.Pattern {
	p := scheduling.Pattern{
		Type:          scheduling.ScheduleType(s.ScheduleType),
		SkipFifthWeek: s.SkipFifthWeek,
		EndsOn:        s.RecurrenceEndDate,
	}
	if s.Weekday != nil {
		wd := time.Weekday(*s.Weekday)
		p.Weekday = &wd
	}
	if s.BiweeklyGroup != nil {
		p.Group = scheduling.BiweeklyGroup(*s.BiweeklyGroup)
	}
	if s.MonthlyOccurrence != nil {
		p.Occurrence = scheduling.MonthlyOccurrence(*s.MonthlyOccurrence)
	}
	if s.SpecificDate != nil {
		p.Date = *s.SpecificDate
	}
	return p
}

// SchedulingSlot converts the record into the engine's slot shape.
func (s AvailabilitySlot) SchedulingSlot() scheduling.Slot {
	return scheduling.Slot{
		ID:              s.ID,
		StaffID:         s.StaffID,
		Pattern:         s.Pattern(),
		StartMinute:     s.StartMinute,
		EndMinute:       s.EndMinute,
		BufferMinutes:   s.BufferMinutes,
		AppointmentOnly: s.AppointmentOnly,
		OfferingIDs:     s.OfferingIDs,
	}
}

// SlotFilter captures filtering options for listing availability slots.
type SlotFilter struct {
	StaffID      string
	ScheduleType string
	Active       *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
