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

const (
	testSlotUUID     = "a60b64a9-2c8e-4b34-8f1e-3a7d9c2b5e10"
	testOfferingUUID = "c4f1d8e2-7b3a-4c5d-9e6f-1a2b3c4d5e6f"
)

type bookingRepoStub struct {
	byID        map[string]*models.Booking
	created     []*models.Booking
	resched     []*models.Booking
	statuses    map[string]models.BookingStatus
	conflictErr error
}

func (s *bookingRepoStub) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	var out []models.Booking
	for _, b := range s.byID {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (s *bookingRepoStub) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := s.byID[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *bookingRepoStub) CreateIfFree(ctx context.Context, booking *models.Booking) error {
	if s.conflictErr != nil {
		return s.conflictErr
	}
	booking.ID = "booking-new"
	s.created = append(s.created, booking)
	return nil
}

func (s *bookingRepoStub) RescheduleIfFree(ctx context.Context, booking *models.Booking) error {
	if s.conflictErr != nil {
		return s.conflictErr
	}
	s.resched = append(s.resched, booking)
	return nil
}

func (s *bookingRepoStub) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if s.statuses == nil {
		s.statuses = map[string]models.BookingStatus{}
	}
	s.statuses[id] = status
	return nil
}

type offeringReaderStub struct {
	offerings map[string]*models.Offering
}

func (s offeringReaderStub) FindByID(ctx context.Context, id string) (*models.Offering, error) {
	if o, ok := s.offerings[id]; ok {
		return o, nil
	}
	return nil, sql.ErrNoRows
}

func bookableSlot() *models.AvailabilitySlot {
	slot := weeklySlot(testSlotUUID, testStaffUUID, int(time.Monday), 540, 720)
	slot.BufferMinutes = 15
	return &slot
}

func massageOffering() offeringReaderStub {
	return offeringReaderStub{offerings: map[string]*models.Offering{
		testOfferingUUID: {ID: testOfferingUUID, Name: "Deep Tissue Massage", DurationMinutes: 60, Active: true},
	}}
}

func newBookingService(repo *bookingRepoStub, slot *models.AvailabilitySlot) *BookingService {
	slots := &slotReaderStub{byID: map[string]*models.AvailabilitySlot{}}
	if slot != nil {
		slots.byID[slot.ID] = slot
	}
	return NewBookingService(repo, slots, massageOffering(), nil, nil, nil, nil, nil)
}

func validCreateRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		SlotID:      testSlotUUID,
		OfferingID:  testOfferingUUID,
		Date:        "2024-01-01", // a Monday
		StartTime:   "10:00",
		ClientName:  "Ada Lovelace",
		ClientEmail: "ada@example.com",
	}
}

func TestBookingServiceCreate(t *testing.T) {
	repo := &bookingRepoStub{byID: map[string]*models.Booking{}}
	svc := newBookingService(repo, bookableSlot())

	resp, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "booking-new", resp.ID)
	assert.Equal(t, string(models.BookingPending), resp.Status)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "11:00", resp.EndTime)
	require.Len(t, repo.created, 1)
	// The slot's buffer is copied onto the booking at creation.
	assert.Equal(t, 15, repo.created[0].BufferMinutes)
	assert.Equal(t, testStaffUUID, repo.created[0].StaffID)
}

func TestBookingServiceCreateRejectsOffPatternDate(t *testing.T) {
	svc := newBookingService(&bookingRepoStub{}, bookableSlot())

	req := validCreateRequest()
	req.Date = "2024-01-02" // a Tuesday; the slot runs on Mondays
	_, err := svc.Create(context.Background(), req)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "not active")
}

func TestBookingServiceCreateRejectsTimeOutsideSlotWindow(t *testing.T) {
	svc := newBookingService(&bookingRepoStub{}, bookableSlot())

	req := validCreateRequest()
	req.StartTime = "11:30" // 60 minute service would end at 12:30, past the 12:00 close
	_, err := svc.Create(context.Background(), req)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestBookingServiceCreateMapsConflict(t *testing.T) {
	repo := &bookingRepoStub{conflictErr: &models.BookingConflictError{
		Message: "requested time overlaps an existing booking",
		StaffID: testStaffUUID,
		Date:    "2024-01-01",
	}}
	svc := newBookingService(repo, bookableSlot())

	_, err := svc.Create(context.Background(), validCreateRequest())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBookingConflict.Code, appErr.Code)

	var conflict *models.BookingConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestBookingServiceCreateRejectsOfferingNotInSlot(t *testing.T) {
	slot := bookableSlot()
	slot.OfferingIDs = []string{"other-offering"}
	svc := newBookingService(&bookingRepoStub{}, slot)

	_, err := svc.Create(context.Background(), validCreateRequest())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestBookingServiceCreateRejectsInactiveSlot(t *testing.T) {
	slot := bookableSlot()
	slot.Active = false
	svc := newBookingService(&bookingRepoStub{}, slot)

	_, err := svc.Create(context.Background(), validCreateRequest())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestBookingServiceCancelIsIdempotent(t *testing.T) {
	booking := &models.Booking{
		ID: "booking-1", StaffID: testStaffUUID, SlotID: testSlotUUID,
		Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), Status: models.BookingConfirmed,
	}
	repo := &bookingRepoStub{byID: map[string]*models.Booking{"booking-1": booking}}
	svc := newBookingService(repo, bookableSlot())

	resp, err := svc.Cancel(context.Background(), "booking-1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingCancelled), resp.Status)
	assert.Equal(t, models.BookingCancelled, repo.statuses["booking-1"])

	booking.Status = models.BookingCancelled
	repo.statuses = nil
	resp, err = svc.Cancel(context.Background(), "booking-1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingCancelled), resp.Status)
	assert.Empty(t, repo.statuses, "second cancel must not write again")
}

func TestBookingServiceStaffCannotTouchOthersBookings(t *testing.T) {
	booking := &models.Booking{ID: "booking-1", StaffID: testStaffUUID, Status: models.BookingPending}
	repo := &bookingRepoStub{byID: map[string]*models.Booking{"booking-1": booking}}
	svc := newBookingService(repo, bookableSlot())

	other := "someone-else"
	claims := &models.JWTClaims{UserID: "user-2", Role: models.RoleStaff, StaffID: &other}
	_, err := svc.Cancel(context.Background(), "booking-1", claims)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestBookingServiceConfirmRejectsCancelled(t *testing.T) {
	booking := &models.Booking{ID: "booking-1", StaffID: testStaffUUID, Status: models.BookingCancelled}
	repo := &bookingRepoStub{byID: map[string]*models.Booking{"booking-1": booking}}
	svc := newBookingService(repo, bookableSlot())

	_, err := svc.Confirm(context.Background(), "booking-1", adminClaims())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestBookingServiceReschedule(t *testing.T) {
	booking := &models.Booking{
		ID: "booking-1", SlotID: testSlotUUID, StaffID: testStaffUUID,
		OfferingID: testOfferingUUID, DurationMinutes: 60, BufferMinutes: 15,
		Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), StartMinute: 600,
		Status: models.BookingConfirmed,
	}
	repo := &bookingRepoStub{byID: map[string]*models.Booking{"booking-1": booking}}
	svc := newBookingService(repo, bookableSlot())

	resp, err := svc.Reschedule(context.Background(), "booking-1", dto.RescheduleBookingRequest{
		Date:      "2024-01-08", // the following Monday
		StartTime: "09:30",
	}, adminClaims())
	require.NoError(t, err)

	assert.Equal(t, string(models.BookingRescheduled), resp.Status)
	assert.Equal(t, "2024-01-08", resp.Date)
	assert.Equal(t, "09:30", resp.StartTime)
	require.Len(t, repo.resched, 1)
}

func TestBookingServiceRescheduleRejectsOffPatternDate(t *testing.T) {
	booking := &models.Booking{
		ID: "booking-1", SlotID: testSlotUUID, StaffID: testStaffUUID,
		DurationMinutes: 60, Status: models.BookingConfirmed,
		Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), StartMinute: 600,
	}
	repo := &bookingRepoStub{byID: map[string]*models.Booking{"booking-1": booking}}
	svc := newBookingService(repo, bookableSlot())

	_, err := svc.Reschedule(context.Background(), "booking-1", dto.RescheduleBookingRequest{
		Date:      "2024-01-09", // a Tuesday
		StartTime: "09:30",
	}, adminClaims())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.resched)
}
