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

type slotRepoStub struct {
	byID      map[string]*models.AvailabilitySlot
	created   []*models.AvailabilitySlot
	updated   []*models.AvailabilitySlot
	disabled  []string
	createErr error
}

func (s *slotRepoStub) List(ctx context.Context, filter models.SlotFilter) ([]models.AvailabilitySlot, int, error) {
	var out []models.AvailabilitySlot
	for _, slot := range s.byID {
		out = append(out, *slot)
	}
	return out, len(out), nil
}

func (s *slotRepoStub) FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	if slot, ok := s.byID[id]; ok {
		copied := *slot
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *slotRepoStub) Create(ctx context.Context, slot *models.AvailabilitySlot) error {
	if s.createErr != nil {
		return s.createErr
	}
	slot.ID = "slot-new"
	s.created = append(s.created, slot)
	return nil
}

func (s *slotRepoStub) Update(ctx context.Context, slot *models.AvailabilitySlot) error {
	s.updated = append(s.updated, slot)
	return nil
}

func (s *slotRepoStub) Deactivate(ctx context.Context, id string) error {
	s.disabled = append(s.disabled, id)
	return nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (s *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

const testStaffUUID = "7f0f5a3e-5a64-4f34-9d55-0a3f7b1a9c01"

func activeStaff() staffReaderStub {
	return staffReaderStub{staff: map[string]*models.Staff{
		testStaffUUID: {ID: testStaffUUID, FullName: "June Park", Active: true},
	}}
}

func TestSlotServiceCreateWeeklySlot(t *testing.T) {
	repo := &slotRepoStub{byID: map[string]*models.AvailabilitySlot{}}
	audit := &auditStub{}
	svc := NewSlotService(repo, activeStaff(), audit, nil, nil, nil)

	resp, err := svc.Create(context.Background(), dto.CreateSlotRequest{
		StaffID:      testStaffUUID,
		ScheduleType: "weekly",
		Weekday:      intPtr(int(time.Wednesday)),
		StartTime:    "09:00",
		EndTime:      "12:00",
	}, adminClaims())
	require.NoError(t, err)

	assert.Equal(t, "slot-new", resp.ID)
	assert.Equal(t, "09:00", resp.StartTime)
	assert.True(t, resp.Active)
	require.Len(t, repo.created, 1)
	assert.Equal(t, 540, repo.created[0].StartMinute)
	assert.Equal(t, 720, repo.created[0].EndMinute)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSlotCreate, audit.logs[0].Action)
}

func TestSlotServiceCreateRejectsInvalidRecurrence(t *testing.T) {
	repo := &slotRepoStub{byID: map[string]*models.AvailabilitySlot{}}
	svc := NewSlotService(repo, activeStaff(), nil, nil, nil, nil)

	// Biweekly without a group fails pattern validation.
	_, err := svc.Create(context.Background(), dto.CreateSlotRequest{
		StaffID:      testStaffUUID,
		ScheduleType: "biweekly",
		Weekday:      intPtr(int(time.Monday)),
		StartTime:    "09:00",
		EndTime:      "10:00",
	}, adminClaims())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidPattern.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestSlotServiceCreateRejectsInvertedTimes(t *testing.T) {
	svc := NewSlotService(&slotRepoStub{}, activeStaff(), nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateSlotRequest{
		StaffID:      testStaffUUID,
		ScheduleType: "weekly",
		Weekday:      intPtr(int(time.Monday)),
		StartTime:    "12:00",
		EndTime:      "09:00",
	}, adminClaims())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSlotServiceCreateUnknownStaff(t *testing.T) {
	svc := NewSlotService(&slotRepoStub{}, staffReaderStub{}, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateSlotRequest{
		StaffID:      testStaffUUID,
		ScheduleType: "weekly",
		Weekday:      intPtr(int(time.Monday)),
		StartTime:    "09:00",
		EndTime:      "10:00",
	}, adminClaims())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSlotServiceUpdateScheduleTypeReplacesRecurrenceBlock(t *testing.T) {
	existing := weeklySlot("slot-1", testStaffUUID, int(time.Monday), 540, 720)
	repo := &slotRepoStub{byID: map[string]*models.AvailabilitySlot{"slot-1": &existing}}
	svc := NewSlotService(repo, activeStaff(), nil, nil, nil, nil)

	resp, err := svc.Update(context.Background(), "slot-1", dto.UpdateSlotRequest{
		ScheduleType:      strPtr("monthly"),
		Weekday:           intPtr(int(time.Friday)),
		MonthlyOccurrence: strPtr("last"),
	}, adminClaims())
	require.NoError(t, err)

	assert.Equal(t, "monthly", resp.ScheduleType)
	require.NotNil(t, resp.MonthlyOccurrence)
	assert.Equal(t, "last", *resp.MonthlyOccurrence)
	require.Len(t, repo.updated, 1)
}

func TestSlotServiceUpdateRejectsInconsistentRecurrence(t *testing.T) {
	existing := weeklySlot("slot-1", testStaffUUID, int(time.Monday), 540, 720)
	repo := &slotRepoStub{byID: map[string]*models.AvailabilitySlot{"slot-1": &existing}}
	svc := NewSlotService(repo, activeStaff(), nil, nil, nil, nil)

	// A weekly slot cannot carry a biweekly group.
	_, err := svc.Update(context.Background(), "slot-1", dto.UpdateSlotRequest{
		BiweeklyGroup: strPtr("first_third"),
	}, adminClaims())

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidPattern.Code, appErr.Code)
	assert.Empty(t, repo.updated)
}

func TestSlotServiceDeactivate(t *testing.T) {
	existing := weeklySlot("slot-1", testStaffUUID, int(time.Monday), 540, 720)
	repo := &slotRepoStub{byID: map[string]*models.AvailabilitySlot{"slot-1": &existing}}
	audit := &auditStub{}
	svc := NewSlotService(repo, activeStaff(), audit, nil, nil, nil)

	require.NoError(t, svc.Deactivate(context.Background(), "slot-1", adminClaims()))
	assert.Equal(t, []string{"slot-1"}, repo.disabled)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSlotDeactivate, audit.logs[0].Action)

	err := svc.Deactivate(context.Background(), "missing", adminClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
