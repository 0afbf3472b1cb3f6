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

type slotRepository interface {
	List(ctx context.Context, filter models.SlotFilter) ([]models.AvailabilitySlot, int, error)
	FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error)
	Create(ctx context.Context, slot *models.AvailabilitySlot) error
	Update(ctx context.Context, slot *models.AvailabilitySlot) error
	Deactivate(ctx context.Context, id string) error
}

type slotStaffReader interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SlotService manages availability slots for the admin API. Every write
// invalidates the projected availability cache.
type SlotService struct {
	repo      slotRepository
	staff     slotStaffReader
	audit     auditWriter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSlotService constructs a SlotService.
func NewSlotService(repo slotRepository, staff slotStaffReader, audit auditWriter, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{repo: repo, staff: staff, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns slots matching the filter.
func (s *SlotService) List(ctx context.Context, filter models.SlotFilter) ([]dto.SlotResponse, *models.Pagination, error) {
	slots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}

	items := make([]dto.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		items = append(items, slotResponse(slot))
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

// Get fetches one slot.
func (s *SlotService) Get(ctx context.Context, id string) (*dto.SlotResponse, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	resp := slotResponse(*slot)
	return &resp, nil
}

// Create validates and stores a new availability slot.
func (s *SlotService) Create(ctx context.Context, req dto.CreateSlotRequest, claims *models.JWTClaims) (*dto.SlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	staff, err := s.staff.FindByID(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	if !staff.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "staff member is inactive")
	}

	slot := models.AvailabilitySlot{
		StaffID:           req.StaffID,
		ScheduleType:      req.ScheduleType,
		Weekday:           req.Weekday,
		BiweeklyGroup:     req.BiweeklyGroup,
		SkipFifthWeek:     req.SkipFifthWeek,
		MonthlyOccurrence: req.MonthlyOccurrence,
		BufferMinutes:     req.BufferMinutes,
		AppointmentOnly:   req.AppointmentOnly,
		OfferingIDs:       req.OfferingIDs,
		Active:            true,
	}
	if err := applySlotTimes(&slot, req.StartTime, req.EndTime, req.SpecificDate, req.RecurrenceEndDate); err != nil {
		return nil, err
	}
	if err := validateSlotPattern(slot); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}

	s.invalidateAvailability(ctx)
	s.recordAudit(ctx, claims, models.AuditActionSlotCreate, slot.ID)

	resp := slotResponse(slot)
	return &resp, nil
}

// Update applies a partial update to an existing slot and revalidates the
// resulting recurrence.
func (s *SlotService) Update(ctx context.Context, id string, req dto.UpdateSlotRequest, claims *models.JWTClaims) (*dto.SlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	if req.ScheduleType != nil {
		// A schedule shape change replaces the whole recurrence block so
		// stale selectors from the previous type cannot linger.
		slot.ScheduleType = *req.ScheduleType
		slot.Weekday = req.Weekday
		slot.BiweeklyGroup = req.BiweeklyGroup
		slot.MonthlyOccurrence = req.MonthlyOccurrence
		slot.SpecificDate = nil
		slot.SkipFifthWeek = false
	} else {
		if req.Weekday != nil {
			slot.Weekday = req.Weekday
		}
		if req.BiweeklyGroup != nil {
			slot.BiweeklyGroup = req.BiweeklyGroup
		}
		if req.MonthlyOccurrence != nil {
			slot.MonthlyOccurrence = req.MonthlyOccurrence
		}
	}
	if req.SkipFifthWeek != nil {
		slot.SkipFifthWeek = *req.SkipFifthWeek
	}
	if req.BufferMinutes != nil {
		slot.BufferMinutes = *req.BufferMinutes
	}
	if req.AppointmentOnly != nil {
		slot.AppointmentOnly = *req.AppointmentOnly
	}
	if req.OfferingIDs != nil {
		slot.OfferingIDs = req.OfferingIDs
	}
	if req.Active != nil {
		slot.Active = *req.Active
	}

	startTime := dto.FormatTimeOfDay(slot.StartMinute)
	endTime := dto.FormatTimeOfDay(slot.EndMinute)
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	specificDate := formatDatePtr(slot.SpecificDate)
	if req.SpecificDate != nil {
		specificDate = req.SpecificDate
	}
	endDate := formatDatePtr(slot.RecurrenceEndDate)
	if req.RecurrenceEndDate != nil {
		endDate = req.RecurrenceEndDate
	}
	if err := applySlotTimes(slot, startTime, endTime, specificDate, endDate); err != nil {
		return nil, err
	}
	if err := validateSlotPattern(*slot); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot")
	}

	s.invalidateAvailability(ctx)
	s.recordAudit(ctx, claims, models.AuditActionSlotUpdate, slot.ID)

	resp := slotResponse(*slot)
	return &resp, nil
}

// Deactivate retires a slot from future projections. Existing bookings are
// untouched; they carry their own copy of the buffer.
func (s *SlotService) Deactivate(ctx context.Context, id string, claims *models.JWTClaims) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate slot")
	}

	s.invalidateAvailability(ctx)
	s.recordAudit(ctx, claims, models.AuditActionSlotDeactivate, id)
	return nil
}

func (s *SlotService) invalidateAvailability(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "availability:*"); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.Error(err))
	}
}

func (s *SlotService) recordAudit(ctx context.Context, claims *models.JWTClaims, action, slotID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{Action: action, Resource: "availability_slot", ResourceID: &slotID}
	if claims != nil {
		log.UserID = &claims.UserID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record slot audit log", zap.Error(err))
	}
}

// applySlotTimes parses the wire time and date strings onto the record.
func applySlotTimes(slot *models.AvailabilitySlot, startTime, endTime string, specificDate, endDate *string) error {
	start, err := dto.ParseTimeOfDay(startTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid startTime")
	}
	end, err := dto.ParseTimeOfDay(endTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid endTime")
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "startTime must be before endTime")
	}
	slot.StartMinute = start
	slot.EndMinute = end

	slot.SpecificDate = nil
	if specificDate != nil && *specificDate != "" {
		d, err := dto.ParseDate(*specificDate)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid specificDate")
		}
		slot.SpecificDate = &d
	}
	slot.RecurrenceEndDate = nil
	if endDate != nil && *endDate != "" {
		d, err := dto.ParseDate(*endDate)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid recurrenceEndDate")
		}
		slot.RecurrenceEndDate = &d
	}
	return nil
}

// validateSlotPattern runs the engine's pattern validation so malformed
// recurrences never reach storage.
func validateSlotPattern(slot models.AvailabilitySlot) error {
	if err := slot.Pattern().Validate(); err != nil {
		var invalid *scheduling.InvalidPatternError
		if errors.As(err, &invalid) {
			return appErrors.Wrap(err, appErrors.ErrInvalidPattern.Code, appErrors.ErrInvalidPattern.Status, invalid.Error())
		}
		return appErrors.Wrap(err, appErrors.ErrInvalidPattern.Code, appErrors.ErrInvalidPattern.Status, "invalid recurrence pattern")
	}
	return nil
}

func slotResponse(slot models.AvailabilitySlot) dto.SlotResponse {
	return dto.SlotResponse{
		ID:                slot.ID,
		StaffID:           slot.StaffID,
		ScheduleType:      slot.ScheduleType,
		Weekday:           slot.Weekday,
		BiweeklyGroup:     slot.BiweeklyGroup,
		SkipFifthWeek:     slot.SkipFifthWeek,
		MonthlyOccurrence: slot.MonthlyOccurrence,
		SpecificDate:      formatDatePtr(slot.SpecificDate),
		RecurrenceEndDate: formatDatePtr(slot.RecurrenceEndDate),
		StartTime:         dto.FormatTimeOfDay(slot.StartMinute),
		EndTime:           dto.FormatTimeOfDay(slot.EndMinute),
		BufferMinutes:     slot.BufferMinutes,
		AppointmentOnly:   slot.AppointmentOnly,
		OfferingIDs:       slot.OfferingIDs,
		Active:            slot.Active,
	}
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dto.DateLayout)
	return &s
}
