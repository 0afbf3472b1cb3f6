package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bloomcove/booking-api/internal/dto"
	"github.com/bloomcove/booking-api/internal/models"
	"github.com/bloomcove/booking-api/internal/scheduling"
	appErrors "github.com/bloomcove/booking-api/pkg/errors"
)

// maxCalendarWindowDays caps how far a single calendar request can project.
const maxCalendarWindowDays = 92

// nextOccurrenceHorizonDays is how far ahead the next-occurrence lookup
// searches before reporting no match.
const nextOccurrenceHorizonDays = 366

type availabilitySlotReader interface {
	ListActive(ctx context.Context, staffID, offeringID string, windowStart time.Time) ([]models.AvailabilitySlot, error)
	FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error)
}

type availabilityBookingReader interface {
	ListByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]models.Booking, error)
}

type availabilityStaffReader interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
}

// AvailabilityService projects stored slots onto calendar dates for the
// public browsing endpoints. All reads are cache-backed; writes elsewhere
// invalidate the availability namespace.
type AvailabilityService struct {
	slots    availabilitySlotReader
	bookings availabilityBookingReader
	staff    availabilityStaffReader
	cache    *CacheService
	logger   *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(slots availabilitySlotReader, bookings availabilityBookingReader, staff availabilityStaffReader, cache *CacheService, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{slots: slots, bookings: bookings, staff: staff, cache: cache, logger: logger}
}

// Calendar projects every matching slot onto the dates of the requested
// window. Dates with no active slot are omitted; an empty window is a valid,
// empty calendar.
func (s *AvailabilityService) Calendar(ctx context.Context, query dto.CalendarQuery) (*dto.CalendarResponse, error) {
	window, err := scheduling.NewWindow(query.From, query.To)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidWindow, "from must not be after to")
	}
	if window.To.Sub(window.From) > maxCalendarWindowDays*24*time.Hour {
		return nil, appErrors.Clone(appErrors.ErrInvalidWindow, fmt.Sprintf("window exceeds %d days", maxCalendarWindowDays))
	}

	cacheKey := fmt.Sprintf("availability:calendar:%s:%s:%s:%s",
		query.StaffID, query.OfferingID, scheduling.DateKey(window.From), scheduling.DateKey(window.To))
	var cached dto.CalendarResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	stored, err := s.slots.ListActive(ctx, query.StaffID, query.OfferingID, window.From)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability slots")
	}

	engineSlots := make([]scheduling.Slot, 0, len(stored))
	staffNames := make(map[string]string)
	for _, slot := range stored {
		engineSlots = append(engineSlots, slot.SchedulingSlot())
		staffNames[slot.StaffID] = ""
	}
	s.resolveStaffNames(ctx, staffNames)

	buckets, err := scheduling.Project(engineSlots, window)
	if err != nil {
		var invalid *scheduling.InvalidPatternError
		if errors.As(err, &invalid) {
			// A stored slot failing pattern validation is a data problem,
			// not a caller problem.
			s.logger.Error("stored slot has invalid recurrence", zap.Error(invalid))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "availability data is inconsistent")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to project availability")
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	response := &dto.CalendarResponse{
		From: scheduling.DateKey(window.From),
		To:   scheduling.DateKey(window.To),
		Days: make([]dto.CalendarDay, 0, len(keys)),
	}
	for _, key := range keys {
		day := dto.CalendarDay{Date: key, Slots: make([]dto.SlotView, 0, len(buckets[key]))}
		for _, slot := range buckets[key] {
			day.Slots = append(day.Slots, slotView(slot, staffNames[slot.StaffID]))
		}
		response.Days = append(response.Days, day)
	}

	if err := s.cache.Set(ctx, cacheKey, response, 0); err != nil {
		s.logger.Warn("failed to cache calendar", zap.Error(err))
	}
	return response, nil
}

// Day returns the slots active on a single date. When the query names a
// staff member, the response also carries that day's occupied intervals so
// clients can offer only free times.
func (s *AvailabilityService) Day(ctx context.Context, query dto.DayViewQuery) (*dto.DayViewResponse, error) {
	calendar, err := s.Calendar(ctx, dto.CalendarQuery{
		StaffID:    query.StaffID,
		OfferingID: query.OfferingID,
		From:       query.Date,
		To:         query.Date,
	})
	if err != nil {
		return nil, err
	}

	response := &dto.DayViewResponse{Date: scheduling.DateKey(query.Date), Slots: []dto.SlotView{}}
	for _, day := range calendar.Days {
		if day.Date == response.Date {
			response.Slots = day.Slots
		}
	}

	if query.StaffID != "" {
		bookings, err := s.bookings.ListByStaffAndDate(ctx, query.StaffID, scheduling.Midnight(query.Date))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
		}
		for _, b := range bookings {
			response.Busy = append(response.Busy, dto.BusyInterval{
				StartTime: dto.FormatTimeOfDay(b.StartMinute),
				EndTime:   dto.FormatTimeOfDay(b.StartMinute + b.DurationMinutes + b.BufferMinutes),
			})
		}
	}
	return response, nil
}

// NextOccurrence reports the earliest date on or after the given start on
// which the slot is active. A slot with no occurrence inside the search
// horizon yields Found=false, not an error.
func (s *AvailabilityService) NextOccurrence(ctx context.Context, slotID string, from time.Time) (*dto.NextOccurrenceResponse, error) {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	window, err := scheduling.NewWindow(from, from.AddDate(0, 0, nextOccurrenceHorizonDays))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidWindow, "invalid search start")
	}

	next, found, err := scheduling.NextOccurrence(slot.Pattern(), window)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate recurrence")
	}

	response := &dto.NextOccurrenceResponse{SlotID: slotID, Found: found}
	if found {
		response.Date = scheduling.DateKey(next)
	}
	return response, nil
}

func (s *AvailabilityService) resolveStaffNames(ctx context.Context, names map[string]string) {
	if s.staff == nil {
		return
	}
	for id := range names {
		staff, err := s.staff.FindByID(ctx, id)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("failed to resolve staff name", zap.String("staff_id", id), zap.Error(err))
			}
			continue
		}
		names[id] = staff.FullName
	}
}

func slotView(slot scheduling.Slot, staffName string) dto.SlotView {
	return dto.SlotView{
		SlotID:          slot.ID,
		StaffID:         slot.StaffID,
		StaffName:       staffName,
		StartTime:       dto.FormatTimeOfDay(slot.StartMinute),
		EndTime:         dto.FormatTimeOfDay(slot.EndMinute),
		BufferMinutes:   slot.BufferMinutes,
		AppointmentOnly: slot.AppointmentOnly,
		OfferingIDs:     slot.OfferingIDs,
	}
}
