package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bloomcove/booking-api/internal/models"
	appErrors "github.com/bloomcove/booking-api/pkg/errors"
)

type mockStaffRepo struct {
	staff       map[string]*models.Staff
	emailExists bool
}

func (m *mockStaffRepo) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	var out []models.Staff
	for _, s := range m.staff {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStaffRepo) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if s, ok := m.staff[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStaffRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	return m.emailExists, nil
}

func (m *mockStaffRepo) Create(ctx context.Context, staff *models.Staff) error {
	if m.staff == nil {
		m.staff = make(map[string]*models.Staff)
	}
	copy := *staff
	m.staff[staff.ID] = &copy
	return nil
}

func (m *mockStaffRepo) Update(ctx context.Context, staff *models.Staff) error {
	copy := *staff
	m.staff[staff.ID] = &copy
	return nil
}

func (m *mockStaffRepo) Deactivate(ctx context.Context, id string) error {
	if s, ok := m.staff[id]; ok {
		s.Active = false
		return nil
	}
	return sql.ErrNoRows
}

func TestStaffServiceCreateMapsOptionalFields(t *testing.T) {
	repo := &mockStaffRepo{}
	svc := NewStaffService(repo, validator.New(), zap.NewNop())

	staff, err := svc.Create(context.Background(), CreateStaffRequest{
		FullName: "June Park",
		Email:    "june@example.com",
		Phone:    "+1-555-0100",
		Bio:      "Deep tissue specialist",
	})
	require.NoError(t, err)
	require.NotNil(t, staff.Phone)
	assert.Equal(t, "+1-555-0100", *staff.Phone)
	require.NotNil(t, staff.Bio)
	assert.Equal(t, "Deep tissue specialist", *staff.Bio)
	assert.True(t, staff.Active)
}

func TestStaffServiceCreateEmptyOptionalFieldsStayNull(t *testing.T) {
	repo := &mockStaffRepo{}
	svc := NewStaffService(repo, validator.New(), zap.NewNop())

	staff, err := svc.Create(context.Background(), CreateStaffRequest{
		FullName: "June Park",
		Email:    "june@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, staff.Phone)
	assert.Nil(t, staff.Bio)
}

func TestStaffServiceCreateRejectsDuplicateEmail(t *testing.T) {
	repo := &mockStaffRepo{emailExists: true}
	svc := NewStaffService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStaffRequest{FullName: "June Park", Email: "june@example.com"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestStaffServiceUpdateOverwritesOptionalFields(t *testing.T) {
	phone := "+1-555-0100"
	repo := &mockStaffRepo{staff: map[string]*models.Staff{
		"staff-1": {ID: "staff-1", FullName: "June Park", Email: "june@example.com", Phone: &phone, Active: true},
	}}
	svc := NewStaffService(repo, validator.New(), zap.NewNop())

	staff, err := svc.Update(context.Background(), "staff-1", UpdateStaffRequest{
		FullName: "June Park",
		Email:    "june@example.com",
		Bio:      "Now teaching yoga",
		Active:   true,
	})
	require.NoError(t, err)
	assert.Nil(t, staff.Phone)
	require.NotNil(t, staff.Bio)
	assert.Equal(t, "Now teaching yoga", *staff.Bio)
}

func TestStaffServiceDeactivateUnknownStaff(t *testing.T) {
	svc := NewStaffService(&mockStaffRepo{}, validator.New(), zap.NewNop())

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
