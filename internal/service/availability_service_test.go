package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomcove/booking-api/internal/dto"
	"github.com/bloomcove/booking-api/internal/models"
	appErrors "github.com/bloomcove/booking-api/pkg/errors"
)

type slotReaderStub struct {
	slots     []models.AvailabilitySlot
	byID      map[string]*models.AvailabilitySlot
	listErr   error
	listCalls int
}

func (s *slotReaderStub) ListActive(ctx context.Context, staffID, offeringID string, windowStart time.Time) ([]models.AvailabilitySlot, error) {
	s.listCalls++
	return s.slots, s.listErr
}

func (s *slotReaderStub) FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	if slot, ok := s.byID[id]; ok {
		return slot, nil
	}
	return nil, sql.ErrNoRows
}

type bookingReaderStub struct {
	bookings []models.Booking
	err      error
}

func (s *bookingReaderStub) ListByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]models.Booking, error) {
	return s.bookings, s.err
}

type staffReaderStub struct {
	staff map[string]*models.Staff
}

func (s staffReaderStub) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if staff, ok := s.staff[id]; ok {
		return staff, nil
	}
	return nil, sql.ErrNoRows
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func weeklySlot(id, staffID string, weekday, start, end int) models.AvailabilitySlot {
	return models.AvailabilitySlot{
		ID:           id,
		StaffID:      staffID,
		ScheduleType: "weekly",
		Weekday:      intPtr(weekday),
		StartMinute:  start,
		EndMinute:    end,
		Active:       true,
	}
}

func TestAvailabilityServiceCalendarProjectsWeeklySlots(t *testing.T) {
	slots := &slotReaderStub{slots: []models.AvailabilitySlot{
		weeklySlot("slot-1", "staff-1", int(time.Wednesday), 540, 720),
	}}
	staff := staffReaderStub{staff: map[string]*models.Staff{
		"staff-1": {ID: "staff-1", FullName: "June Park"},
	}}
	svc := NewAvailabilityService(slots, &bookingReaderStub{}, staff, nil, nil)

	resp, err := svc.Calendar(context.Background(), dto.CalendarQuery{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, resp.Days, 5)
	assert.Equal(t, "2024-01-03", resp.Days[0].Date)
	assert.Equal(t, "2024-01-31", resp.Days[4].Date)
	require.Len(t, resp.Days[0].Slots, 1)
	assert.Equal(t, "09:00", resp.Days[0].Slots[0].StartTime)
	assert.Equal(t, "12:00", resp.Days[0].Slots[0].EndTime)
	assert.Equal(t, "June Park", resp.Days[0].Slots[0].StaffName)
}

func TestAvailabilityServiceCalendarRejectsInvertedWindow(t *testing.T) {
	svc := NewAvailabilityService(&slotReaderStub{}, &bookingReaderStub{}, staffReaderStub{}, nil, nil)

	_, err := svc.Calendar(context.Background(), dto.CalendarQuery{
		From: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidWindow.Code, appErr.Code)
}

func TestAvailabilityServiceCalendarRejectsOversizedWindow(t *testing.T) {
	svc := NewAvailabilityService(&slotReaderStub{}, &bookingReaderStub{}, staffReaderStub{}, nil, nil)

	_, err := svc.Calendar(context.Background(), dto.CalendarQuery{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidWindow.Code, appErr.Code)
}

func TestAvailabilityServiceCalendarEmptyWindowIsNotAnError(t *testing.T) {
	slots := &slotReaderStub{slots: []models.AvailabilitySlot{
		weeklySlot("slot-1", "staff-1", int(time.Sunday), 540, 720),
	}}
	svc := NewAvailabilityService(slots, &bookingReaderStub{}, staffReaderStub{}, nil, nil)

	// Monday through Friday: the Sunday slot never fires.
	resp, err := svc.Calendar(context.Background(), dto.CalendarQuery{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Days)
}

func TestAvailabilityServiceDayIncludesBusyIntervals(t *testing.T) {
	slots := &slotReaderStub{slots: []models.AvailabilitySlot{
		weeklySlot("slot-1", "staff-1", int(time.Monday), 540, 720),
	}}
	bookings := &bookingReaderStub{bookings: []models.Booking{
		{StaffID: "staff-1", StartMinute: 600, DurationMinutes: 60, BufferMinutes: 15, Status: models.BookingConfirmed},
	}}
	svc := NewAvailabilityService(slots, bookings, staffReaderStub{}, nil, nil)

	resp, err := svc.Day(context.Background(), dto.DayViewQuery{
		Date:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		StaffID: "staff-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", resp.Date)
	require.Len(t, resp.Slots, 1)
	require.Len(t, resp.Busy, 1)
	assert.Equal(t, "10:00", resp.Busy[0].StartTime)
	assert.Equal(t, "11:15", resp.Busy[0].EndTime)
}

func TestAvailabilityServiceNextOccurrence(t *testing.T) {
	slot := weeklySlot("slot-1", "staff-1", int(time.Friday), 540, 720)
	slots := &slotReaderStub{byID: map[string]*models.AvailabilitySlot{"slot-1": &slot}}
	svc := NewAvailabilityService(slots, &bookingReaderStub{}, staffReaderStub{}, nil, nil)

	resp, err := svc.NextOccurrence(context.Background(), "slot-1", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "2024-01-05", resp.Date)
}

func TestAvailabilityServiceNextOccurrenceUnknownSlot(t *testing.T) {
	svc := NewAvailabilityService(&slotReaderStub{}, &bookingReaderStub{}, staffReaderStub{}, nil, nil)

	_, err := svc.NextOccurrence(context.Background(), "missing", time.Now())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAvailabilityServiceNextOccurrenceEndedRecurrence(t *testing.T) {
	end := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	slot := weeklySlot("slot-1", "staff-1", int(time.Friday), 540, 720)
	slot.RecurrenceEndDate = &end
	slots := &slotReaderStub{byID: map[string]*models.AvailabilitySlot{"slot-1": &slot}}
	svc := NewAvailabilityService(slots, &bookingReaderStub{}, staffReaderStub{}, nil, nil)

	resp, err := svc.NextOccurrence(context.Background(), "slot-1", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Date)
}
