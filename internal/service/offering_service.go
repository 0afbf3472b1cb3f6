package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bloomcove/booking-api/internal/models"
	appErrors "github.com/bloomcove/booking-api/pkg/errors"
)

type offeringRepository interface {
	List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, int, error)
	FindByID(ctx context.Context, id string) (*models.Offering, error)
	Create(ctx context.Context, offering *models.Offering) error
	Update(ctx context.Context, offering *models.Offering) error
	Deactivate(ctx context.Context, id string) error
}

// CreateOfferingRequest holds payload for creating offerings.
type CreateOfferingRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=120"`
	Description     string `json:"description" validate:"max=2000"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=5,max=480"`
	PriceCents      int    `json:"priceCents" validate:"min=0"`
}

// UpdateOfferingRequest holds payload for updating offerings.
type UpdateOfferingRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=120"`
	Description     string `json:"description" validate:"max=2000"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=5,max=480"`
	PriceCents      int    `json:"priceCents" validate:"min=0"`
	Active          bool   `json:"active"`
}

// OfferingService handles offering use-cases. Changing an offering's
// duration affects future bookings only; existing bookings keep the duration
// they were created with.
type OfferingService struct {
	repo      offeringRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOfferingService constructs the offering service.
func NewOfferingService(repo offeringRepository, validate *validator.Validate, logger *zap.Logger) *OfferingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{repo: repo, validator: validate, logger: logger}
}

// List returns offerings and pagination metadata.
func (s *OfferingService) List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, *models.Pagination, error) {
	offerings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return offerings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one offering.
func (s *OfferingService) Get(ctx context.Context, id string) (*models.Offering, error) {
	offering, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	return offering, nil
}

// Create registers a new offering.
func (s *OfferingService) Create(ctx context.Context, req CreateOfferingRequest) (*models.Offering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	offering := &models.Offering{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		Active:          true,
	}
	if err := s.repo.Create(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create offering")
	}
	return offering, nil
}

// Update modifies an existing offering.
func (s *OfferingService) Update(ctx context.Context, id string, req UpdateOfferingRequest) (*models.Offering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	offering, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	offering.Name = req.Name
	offering.Description = req.Description
	offering.DurationMinutes = req.DurationMinutes
	offering.PriceCents = req.PriceCents
	offering.Active = req.Active
	if err := s.repo.Update(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update offering")
	}
	return offering, nil
}

// Deactivate retires an offering from new bookings.
func (s *OfferingService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate offering")
	}
	return nil
}
