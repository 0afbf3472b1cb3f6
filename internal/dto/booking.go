package dto

// CreateBookingRequest reserves a staff member's time within a slot.
type CreateBookingRequest struct {
	SlotID      string  `json:"slotId" validate:"required,uuid4"`
	OfferingID  string  `json:"offeringId" validate:"required,uuid4"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string  `json:"startTime" validate:"required,datetime=15:04"`
	ClientName  string  `json:"clientName" validate:"required,min=2,max=120"`
	ClientEmail string  `json:"clientEmail" validate:"required,email"`
	ClientPhone *string `json:"clientPhone" validate:"omitempty,min=6,max=32"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

// RescheduleBookingRequest moves an existing booking to a new date and time.
type RescheduleBookingRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
}

// BookingResponse is the wire projection of a booking.
type BookingResponse struct {
	ID              string  `json:"id"`
	SlotID          string  `json:"slotId"`
	StaffID         string  `json:"staffId"`
	OfferingID      string  `json:"offeringId"`
	ClientName      string  `json:"clientName"`
	ClientEmail     string  `json:"clientEmail"`
	ClientPhone     *string `json:"clientPhone,omitempty"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	BufferMinutes   int     `json:"bufferMinutes"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes,omitempty"`
}
