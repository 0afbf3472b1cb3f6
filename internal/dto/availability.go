package dto

import "time"

// CalendarQuery captures query parameters for the public availability calendar.
type CalendarQuery struct {
	StaffID    string
	OfferingID string
	From       time.Time
	To         time.Time
}

// SlotView is the public projection of an availability slot on a given date.
type SlotView struct {
	SlotID          string   `json:"slotId"`
	StaffID         string   `json:"staffId"`
	StaffName       string   `json:"staffName,omitempty"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	BufferMinutes   int      `json:"bufferMinutes"`
	AppointmentOnly bool     `json:"appointmentOnly"`
	OfferingIDs     []string `json:"offeringIds,omitempty"`
}

// CalendarDay groups the slots projected onto a single date.
type CalendarDay struct {
	Date  string     `json:"date"`
	Slots []SlotView `json:"slots"`
}

// CalendarResponse returns the projected calendar for the requested window,
// ordered by date.
type CalendarResponse struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Days []CalendarDay `json:"days"`
}

// DayViewQuery captures parameters for a single-date availability lookup.
type DayViewQuery struct {
	Date       time.Time
	StaffID    string
	OfferingID string
}

// BusyInterval is an occupied stretch of a staff member's day, buffer
// included.
type BusyInterval struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// DayViewResponse lists the slots active on one date plus, when scoped to a
// staff member, that day's occupied intervals.
type DayViewResponse struct {
	Date  string         `json:"date"`
	Slots []SlotView     `json:"slots"`
	Busy  []BusyInterval `json:"busy,omitempty"`
}

// NextOccurrenceResponse reports the earliest date a slot is active within
// the search horizon. Found is false when the horizon holds no occurrence.
type NextOccurrenceResponse struct {
	SlotID string `json:"slotId"`
	Found  bool   `json:"found"`
	Date   string `json:"date,omitempty"`
}
