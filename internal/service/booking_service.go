package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bloomcove/booking-api/internal/dto"
	"github.com/bloomcove/booking-api/internal/models"
	"github.com/bloomcove/booking-api/internal/scheduling"
	appErrors "github.com/bloomcove/booking-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	CreateIfFree(ctx context.Context, booking *models.Booking) error
	RescheduleIfFree(ctx context.Context, booking *models.Booking) error
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type bookingSlotReader interface {
	FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error)
}

type bookingOfferingReader interface {
	FindByID(ctx context.Context, id string) (*models.Offering, error)
}

// BookingService coordinates booking lifecycle operations. The conflict
// check itself runs inside the repository's locked transaction; this layer
// validates the request against the slot's recurrence and bounds first.
type BookingService struct {
	repo      bookingRepository
	slots     bookingSlotReader
	offerings bookingOfferingReader
	audit     auditWriter
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(repo bookingRepository, slots bookingSlotReader, offerings bookingOfferingReader, audit auditWriter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:      repo,
		slots:     slots,
		offerings: offerings,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Create books a client into a slot. The requested date must be one the
// slot's recurrence actually produces, the offering must be allowed in the
// slot, and the service must fit inside the slot's daily window. The slot's
// buffer is copied onto the booking so later slot edits cannot change
// intervals already on the calendar.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	slot, err := s.loadActiveSlot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	offering, err := s.loadOffering(ctx, req.OfferingID)
	if err != nil {
		return nil, err
	}
	if len(slot.OfferingIDs) > 0 && !contains(slot.OfferingIDs, offering.ID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "offering is not available in this slot")
	}

	date, startMinute, err := s.resolveBookingTime(slot, req.Date, req.StartTime, offering.DurationMinutes)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		SlotID:          slot.ID,
		StaffID:         slot.StaffID,
		OfferingID:      offering.ID,
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		ClientPhone:     req.ClientPhone,
		Date:            date,
		StartMinute:     startMinute,
		DurationMinutes: offering.DurationMinutes,
		BufferMinutes:   slot.BufferMinutes,
		Status:          models.BookingPending,
		Notes:           req.Notes,
	}

	if err := s.repo.CreateIfFree(ctx, booking); err != nil {
		return nil, s.conflictOrInternal(err, "failed to create booking")
	}

	s.metrics.RecordBookingOutcome(BookingOutcomeCreated)
	s.invalidateAvailability(ctx)

	resp := bookingResponse(*booking)
	return &resp, nil
}

// Get fetches a booking by ID.
func (s *BookingService) Get(ctx context.Context, id string) (*dto.BookingResponse, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := bookingResponse(*booking)
	return &resp, nil
}

// List returns bookings matching the filter. Staff users are confined to
// their own calendar by the handler before the filter reaches here.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]dto.BookingResponse, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}

	items := make([]dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, bookingResponse(b))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Confirm transitions a pending booking to confirmed.
func (s *BookingService) Confirm(ctx context.Context, id string, claims *models.JWTClaims) (*dto.BookingResponse, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureStaffScope(claims, booking.StaffID); err != nil {
		return nil, err
	}
	if booking.Status == models.BookingCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cancelled bookings cannot be confirmed")
	}

	if err := s.repo.UpdateStatus(ctx, id, models.BookingConfirmed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm booking")
	}
	booking.Status = models.BookingConfirmed
	s.recordAudit(ctx, claims, models.AuditActionBookingConfirm, id)

	resp := bookingResponse(*booking)
	return &resp, nil
}

// Cancel releases the booking's interval. Cancelling is idempotent: a
// booking already cancelled stays cancelled.
func (s *BookingService) Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*dto.BookingResponse, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureStaffScope(claims, booking.StaffID); err != nil {
		return nil, err
	}

	if booking.Status != models.BookingCancelled {
		if err := s.repo.UpdateStatus(ctx, id, models.BookingCancelled); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
		}
		booking.Status = models.BookingCancelled
		s.metrics.RecordBookingOutcome(BookingOutcomeCancelled)
		s.invalidateAvailability(ctx)
		s.recordAudit(ctx, claims, models.AuditActionBookingCancel, id)
	}

	resp := bookingResponse(*booking)
	return &resp, nil
}

// Reschedule moves a booking to a new date and time within its slot's
// recurrence. The original interval is released and the new one claimed in
// a single locked transaction.
func (s *BookingService) Reschedule(ctx context.Context, id string, req dto.RescheduleBookingRequest, claims *models.JWTClaims) (*dto.BookingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureStaffScope(claims, booking.StaffID); err != nil {
		return nil, err
	}
	if booking.Status == models.BookingCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cancelled bookings cannot be rescheduled")
	}

	slot, err := s.loadActiveSlot(ctx, booking.SlotID)
	if err != nil {
		return nil, err
	}

	date, startMinute, err := s.resolveBookingTime(slot, req.Date, req.StartTime, booking.DurationMinutes)
	if err != nil {
		return nil, err
	}

	booking.Date = date
	booking.StartMinute = startMinute
	booking.Status = models.BookingRescheduled

	if err := s.repo.RescheduleIfFree(ctx, booking); err != nil {
		return nil, s.conflictOrInternal(err, "failed to reschedule booking")
	}

	s.metrics.RecordBookingOutcome(BookingOutcomeRescheduled)
	s.invalidateAvailability(ctx)

	resp := bookingResponse(*booking)
	return &resp, nil
}

func (s *BookingService) findBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

func (s *BookingService) loadActiveSlot(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if !slot.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot is no longer available")
	}
	return slot, nil
}

func (s *BookingService) loadOffering(ctx context.Context, id string) (*models.Offering, error) {
	offering, err := s.offerings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	if !offering.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "offering is no longer available")
	}
	return offering, nil
}

// resolveBookingTime parses the wire date and time and checks the candidate
// against the slot's recurrence and daily bounds.
func (s *BookingService) resolveBookingTime(slot *models.AvailabilitySlot, dateStr, timeStr string, durationMinutes int) (time.Time, int, error) {
	date, err := dto.ParseDate(dateStr)
	if err != nil {
		return time.Time{}, 0, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}
	startMinute, err := dto.ParseTimeOfDay(timeStr)
	if err != nil {
		return time.Time{}, 0, appErrors.Clone(appErrors.ErrValidation, "invalid startTime")
	}

	window, err := scheduling.NewWindow(date, date)
	if err != nil {
		return time.Time{}, 0, appErrors.Clone(appErrors.ErrInvalidWindow, "invalid date")
	}
	_, active, err := scheduling.NextOccurrence(slot.Pattern(), window)
	if err != nil {
		return time.Time{}, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate recurrence")
	}
	if !active {
		return time.Time{}, 0, appErrors.Clone(appErrors.ErrValidation, "slot is not active on the requested date")
	}

	if startMinute < slot.StartMinute || startMinute+durationMinutes > slot.EndMinute {
		return time.Time{}, 0, appErrors.Clone(appErrors.ErrValidation, "requested time falls outside the slot window")
	}

	return scheduling.Midnight(date), startMinute, nil
}

// conflictOrInternal maps the repository's typed conflict error onto the
// API error taxonomy and counts it; anything else is an internal failure.
func (s *BookingService) conflictOrInternal(err error, message string) error {
	var conflict *models.BookingConflictError
	if errors.As(err, &conflict) {
		s.metrics.RecordBookingOutcome(BookingOutcomeConflict)
		return appErrors.Wrap(conflict, appErrors.ErrBookingConflict.Code, appErrors.ErrBookingConflict.Status, conflict.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// ensureStaffScope confines staff users to bookings on their own calendar.
// Admins pass through; unauthenticated public cancels are handled upstream.
func (s *BookingService) ensureStaffScope(claims *models.JWTClaims, staffID string) error {
	if claims == nil || claims.Role == models.RoleAdmin {
		return nil
	}
	if claims.StaffID == nil || *claims.StaffID != staffID {
		return appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another staff member")
	}
	return nil
}

func (s *BookingService) invalidateAvailability(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "availability:*"); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.Error(err))
	}
}

func (s *BookingService) recordAudit(ctx context.Context, claims *models.JWTClaims, action, bookingID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{Action: action, Resource: "booking", ResourceID: &bookingID}
	if claims != nil {
		log.UserID = &claims.UserID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record booking audit log", zap.Error(err))
	}
}

func bookingResponse(b models.Booking) dto.BookingResponse {
	return dto.BookingResponse{
		ID:              b.ID,
		SlotID:          b.SlotID,
		StaffID:         b.StaffID,
		OfferingID:      b.OfferingID,
		ClientName:      b.ClientName,
		ClientEmail:     b.ClientEmail,
		ClientPhone:     b.ClientPhone,
		Date:            b.Date.Format(dto.DateLayout),
		StartTime:       dto.FormatTimeOfDay(b.StartMinute),
		EndTime:         dto.FormatTimeOfDay(b.StartMinute + b.DurationMinutes),
		DurationMinutes: b.DurationMinutes,
		BufferMinutes:   b.BufferMinutes,
		Status:          string(b.Status),
		Notes:           b.Notes,
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
