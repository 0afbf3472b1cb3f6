package dto

// CreateSlotRequest creates an availability slot for a staff member.
type CreateSlotRequest struct {
	StaffID           string   `json:"staffId" validate:"required,uuid4"`
	ScheduleType      string   `json:"scheduleType" validate:"required,oneof=one_time weekly biweekly monthly"`
	Weekday           *int     `json:"weekday" validate:"omitempty,min=0,max=6"`
	BiweeklyGroup     *string  `json:"biweeklyGroup" validate:"omitempty,oneof=first_third second_fourth"`
	SkipFifthWeek     bool     `json:"skipFifthWeek"`
	MonthlyOccurrence *string  `json:"monthlyOccurrence" validate:"omitempty,oneof=first second third fourth last"`
	SpecificDate      *string  `json:"specificDate" validate:"omitempty,datetime=2006-01-02"`
	RecurrenceEndDate *string  `json:"recurrenceEndDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime         string   `json:"startTime" validate:"required,datetime=15:04"`
	EndTime           string   `json:"endTime" validate:"required,datetime=15:04"`
	BufferMinutes     int      `json:"bufferMinutes" validate:"min=0,max=240"`
	AppointmentOnly   bool     `json:"appointmentOnly"`
	OfferingIDs       []string `json:"offeringIds" validate:"omitempty,dive,uuid4"`
}

// UpdateSlotRequest partially updates an availability slot. Recurrence
// fields travel together: changing the schedule shape means resubmitting the
// full recurrence block.
type UpdateSlotRequest struct {
	ScheduleType      *string  `json:"scheduleType" validate:"omitempty,oneof=one_time weekly biweekly monthly"`
	Weekday           *int     `json:"weekday" validate:"omitempty,min=0,max=6"`
	BiweeklyGroup     *string  `json:"biweeklyGroup" validate:"omitempty,oneof=first_third second_fourth"`
	SkipFifthWeek     *bool    `json:"skipFifthWeek"`
	MonthlyOccurrence *string  `json:"monthlyOccurrence" validate:"omitempty,oneof=first second third fourth last"`
	SpecificDate      *string  `json:"specificDate" validate:"omitempty,datetime=2006-01-02"`
	RecurrenceEndDate *string  `json:"recurrenceEndDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime         *string  `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime           *string  `json:"endTime" validate:"omitempty,datetime=15:04"`
	BufferMinutes     *int     `json:"bufferMinutes" validate:"omitempty,min=0,max=240"`
	AppointmentOnly   *bool    `json:"appointmentOnly"`
	OfferingIDs       []string `json:"offeringIds" validate:"omitempty,dive,uuid4"`
	Active            *bool    `json:"active"`
}

// SlotResponse is the admin-facing projection of a stored slot.
type SlotResponse struct {
	ID                string   `json:"id"`
	StaffID           string   `json:"staffId"`
	ScheduleType      string   `json:"scheduleType"`
	Weekday           *int     `json:"weekday,omitempty"`
	BiweeklyGroup     *string  `json:"biweeklyGroup,omitempty"`
	SkipFifthWeek     bool     `json:"skipFifthWeek"`
	MonthlyOccurrence *string  `json:"monthlyOccurrence,omitempty"`
	SpecificDate      *string  `json:"specificDate,omitempty"`
	RecurrenceEndDate *string  `json:"recurrenceEndDate,omitempty"`
	StartTime         string   `json:"startTime"`
	EndTime           string   `json:"endTime"`
	BufferMinutes     int      `json:"bufferMinutes"`
	AppointmentOnly   bool     `json:"appointmentOnly"`
	OfferingIDs       []string `json:"offeringIds,omitempty"`
	Active            bool     `json:"active"`
}
